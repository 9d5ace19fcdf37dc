package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	// TrackingPrefix is the prefix of public report tracking codes.
	TrackingPrefix string

	// Object store for attachment binaries.
	MediaEndpoint  string
	MediaBucket    string
	MediaAccessKey string
	MediaSecretKey string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceName:    getEnv("SERVICE_NAME", "sentinel-api"),
		TrackingPrefix: getEnv("TRACKING_PREFIX", "INH"),
		MediaEndpoint:  getEnv("MEDIA_S3_ENDPOINT", ""),
		MediaBucket:    getEnv("MEDIA_S3_BUCKET", "inehss-media"),
		MediaAccessKey: getEnv("MEDIA_S3_ACCESS_KEY", ""),
		MediaSecretKey: getEnv("MEDIA_S3_SECRET_KEY", ""),
	}

	return cfg, nil
}

// Validate checks the fields the API server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
