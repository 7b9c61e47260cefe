package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func LoadEnv() {
	// If .env is missing, ignore error (env vars can be set by other means)
	_ = godotenv.Load()
	logrus.Debug("Environment variables loaded (if .env present)")
}

// GetEnv returns the value of key or def when unset.
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// GetEnvInt parses key as an int, falling back to def on absence or bad input.
func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid integer %q, using %d", v, def)
		return def
	}
	return n
}
