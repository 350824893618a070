package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	GinMode       string
	ModelsDir     string
	StaticRoot    string
	EnableReports bool
	DatabaseURL   string
	EnableDB      bool
	LogLevel      string
	LogFile       string
}

// Load reads the environment, after applying envFiles (or .env when none are
// given). Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "release"),
		ModelsDir:     getEnv("MODELS_DIR", "models"),
		StaticRoot:    os.Getenv("STATIC_ROOT"),
		EnableReports: getBool("ENABLE_REPORTS", true),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		EnableDB:      getBool("ENABLE_DB", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getBool accepts strconv.ParseBool forms plus yes/no and on/off. Anything
// else falls back.
func getBool(key string, fallback bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
