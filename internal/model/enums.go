package model

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Social platforms the publish provider can post to
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformX         Platform = "x"
	PlatformTiktok    Platform = "tiktok"
	PlatformLinkedin  Platform = "linkedin"
	PlatformYoutube   Platform = "youtube"
)

var SupportedPlatforms = map[Platform]struct{}{
	PlatformInstagram: {},
	PlatformFacebook:  {},
	PlatformX:         {},
	PlatformTiktok:    {},
	PlatformLinkedin:  {},
	PlatformYoutube:   {},
}

// IsSupportedPlatform reports whether the publish provider can post to p.
func IsSupportedPlatform(p Platform) bool {
	_, ok := SupportedPlatforms[p]
	return ok
}

// Schedule status
type ScheduleStatus string

const (
	ScheduleStatusQueued ScheduleStatus = "queued"
	ScheduleStatusDone   ScheduleStatus = "done"
	ScheduleStatusFailed ScheduleStatus = "failed"
)
