package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             string `yaml:"port"`
	JWTSecret        string `yaml:"jwt_secret"`
	JWTExpiry        int    `yaml:"jwt_expiry"` // in hours
	LogLevel         string `yaml:"log_level"`
	MaxMessageLength int    `yaml:"max_message_length"`
	Storage          string `yaml:"storage"` // "sqlite" or "memory"
	DatabasePath     string `yaml:"database_path"`
	AllowedOrigin    string `yaml:"allowed_origin"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables. Env always wins over the file.
func Load() Config {
	cfg := Config{
		Port:             "8081",
		JWTSecret:        "dev-super-secret-change-me",
		JWTExpiry:        24,
		LogLevel:         "info",
		MaxMessageLength: 2000,
		Storage:          "sqlite",
		DatabasePath:     "data/buildlink.db",
		AllowedOrigin:    "*",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			// a broken file falls back to defaults rather than aborting startup
			_ = yaml.Unmarshal(data, &cfg)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiry = getEnvAsInt("JWT_EXPIRY", cfg.JWTExpiry)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MaxMessageLength = getEnvAsInt("MAX_MESSAGE_LENGTH", cfg.MaxMessageLength)
	cfg.Storage = getEnv("STORAGE", cfg.Storage)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.AllowedOrigin = getEnv("ALLOWED_ORIGIN", cfg.AllowedOrigin)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
