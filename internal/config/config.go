package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Groq      GroqConfig
	Horde     HordeConfig
	Pixabay   PixabayConfig
	Publish   PublishConfig
	Storage   StorageConfig
	Render    RenderConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	CaptionsPerMin int
	ImagesPerHour  int
	VideosPerHour  int
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// HordeConfig configures the generative-image provider (Stable Horde).
type HordeConfig struct {
	APIKey  string
	BaseURL string
}

// PixabayConfig configures the stock video and music provider.
type PixabayConfig struct {
	APIKey   string
	VideoURL string
	MusicURL string
}

// PublishConfig configures the cross-platform social publish provider.
type PublishConfig struct {
	APIKey  string
	BaseURL string
}

// StorageConfig configures the S3-compatible object store (MinIO in
// development, any S3 endpoint in production).
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// RenderConfig holds video assembly policy knobs.
type RenderConfig struct {
	// AllowMissingShots drops storyboard shots whose stock-video search
	// returns no hits instead of failing the whole render.
	AllowMissingShots bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("GROQ_API_KEY")
	readSecret("STABLE_HORDE_API_KEY")
	readSecret("PIXABAY_API_KEY")
	readSecret("PUBLISH_API_KEY")
	readSecret("STORAGE_ACCESS_KEY_ID")
	readSecret("STORAGE_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = viper.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = viper.BindEnv("groq.model", "GROQ_MODEL")
	_ = viper.BindEnv("horde.api_key", "STABLE_HORDE_API_KEY")
	_ = viper.BindEnv("horde.base_url", "STABLE_HORDE_BASE_URL")
	_ = viper.BindEnv("pixabay.api_key", "PIXABAY_API_KEY")
	_ = viper.BindEnv("pixabay.video_url", "PIXABAY_VIDEO_URL")
	_ = viper.BindEnv("pixabay.music_url", "PIXABAY_MUSIC_URL")
	_ = viper.BindEnv("publish.api_key", "PUBLISH_API_KEY")
	_ = viper.BindEnv("publish.base_url", "PUBLISH_BASE_URL")
	_ = viper.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	_ = viper.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	_ = viper.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("storage.bucket", "STORAGE_BUCKET")
	_ = viper.BindEnv("render.allow_missing_shots", "RENDER_ALLOW_MISSING_SHOTS")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("ratelimit.captions_per_min", 30)
	viper.SetDefault("ratelimit.images_per_hour", 10)
	viper.SetDefault("ratelimit.videos_per_hour", 5)

	// Groq defaults
	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.model", "llama-3.3-70b-versatile")

	// Stable Horde defaults. The anonymous key works but queues last.
	viper.SetDefault("horde.base_url", "https://stablehorde.net/api/v2")
	viper.SetDefault("horde.api_key", "0000000000")

	// Pixabay defaults
	viper.SetDefault("pixabay.video_url", "https://pixabay.com/api/videos/")
	viper.SetDefault("pixabay.music_url", "https://pixabay.com/api/audio/")

	// Storage defaults (local MinIO)
	viper.SetDefault("storage.endpoint", "http://localhost:9000")
	viper.SetDefault("storage.bucket", "videos")

	// Render defaults keep the original drop-missing-shot behavior
	viper.SetDefault("render.allow_missing_shots", true)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			CaptionsPerMin: viper.GetInt("ratelimit.captions_per_min"),
			ImagesPerHour:  viper.GetInt("ratelimit.images_per_hour"),
			VideosPerHour:  viper.GetInt("ratelimit.videos_per_hour"),
		},
		Groq: GroqConfig{
			APIKey:  viper.GetString("groq.api_key"),
			BaseURL: viper.GetString("groq.base_url"),
			Model:   viper.GetString("groq.model"),
		},
		Horde: HordeConfig{
			APIKey:  viper.GetString("horde.api_key"),
			BaseURL: viper.GetString("horde.base_url"),
		},
		Pixabay: PixabayConfig{
			APIKey:   viper.GetString("pixabay.api_key"),
			VideoURL: viper.GetString("pixabay.video_url"),
			MusicURL: viper.GetString("pixabay.music_url"),
		},
		Publish: PublishConfig{
			APIKey:  viper.GetString("publish.api_key"),
			BaseURL: viper.GetString("publish.base_url"),
		},
		Storage: StorageConfig{
			Endpoint:        viper.GetString("storage.endpoint"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			Bucket:          viper.GetString("storage.bucket"),
		},
		Render: RenderConfig{
			AllowMissingShots: viper.GetBool("render.allow_missing_shots"),
		},
	}

	return cfg, nil
}
