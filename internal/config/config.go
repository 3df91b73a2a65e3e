package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	APIBaseURL  string `validate:"required,url"`
	CSRFPath    string
	AuthToken   string
	PageSize    int           `validate:"gte=1,lte=100"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	Debug       bool
}

// Load reads configuration from the environment. A .env file, when
// present, is loaded by the caller (main) before this runs, matching
// how the server side boots.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:  getEnv("COURSE_API_URL", "http://localhost:8000/api"),
		CSRFPath:    getEnv("COURSE_CSRF_PATH", "/sanctum/csrf-cookie"),
		AuthToken:   os.Getenv("COURSE_AUTH_TOKEN"),
		PageSize:    getEnvInt("COURSE_PAGE_SIZE", 12),
		HTTPTimeout: getEnvDuration("COURSE_HTTP_TIMEOUT", 30*time.Second),
		Debug:       os.Getenv("COURSE_DEBUG") == "true",
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
