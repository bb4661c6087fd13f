package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	StoragePath        string
	ArtworkPath        string
	SunoAPIKey         string
	SunoBaseURL        string
	SunoModel          string
	FFmpegPath         string
	FFprobePath        string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	WorkerPollInterval time.Duration
	TaskPollInterval   time.Duration
	TaskPollTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		ArtworkPath:        os.Getenv("DEFAULT_ARTWORK_PATH"),
		SunoAPIKey:         os.Getenv("SUNO_API_KEY"),
		SunoBaseURL:        getEnv("SUNO_BASE_URL", "https://api.sunoapi.org/api/v1"),
		SunoModel:          getEnv("SUNO_MODEL", "V4_5"),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:        getEnv("FFPROBE_PATH", "ffprobe"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),
		TaskPollInterval:   time.Second * time.Duration(getEnvInt("TASK_POLL_INTERVAL_SECONDS", 10)),
		TaskPollTimeout:    time.Minute * time.Duration(getEnvInt("TASK_POLL_TIMEOUT_MINUTES", 15)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
