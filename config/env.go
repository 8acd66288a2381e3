package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env when present. Variables already set in the process win.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetEnv returns the variable or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
