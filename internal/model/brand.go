package model

// Brand carries the caller's brand presets, folded into every generation
// prompt so outputs stay on-voice.
type Brand struct {
	Name            string   `json:"name" validate:"required,min=1"`
	Colors          []string `json:"colors" validate:"omitempty,dive,min=1"`
	Tone            string   `json:"tone" validate:"required,min=1"`
	DefaultHashtags []string `json:"defaultHashtags" validate:"omitempty,dive,min=1"`
}
