package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// envConfig mirrors Config for LEADS_* variables. Zero values mean unset.
type envConfig struct {
	BaseURL             string        `env:"LEADS_BASE_URL"`
	DatabasePath        string        `env:"LEADS_DATABASE_PATH"`
	KeyPath             string        `env:"LEADS_KEY_PATH"`
	PageSize            int           `env:"LEADS_PAGE_SIZE"`
	RequestTimeout      time.Duration `env:"LEADS_REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"LEADS_ONLINE_CHECK_INTERVAL"`
	LogLevel            string        `env:"LEADS_LOG_LEVEL"`
	LogFormat           string        `env:"LEADS_LOG_FORMAT"`
	LogFile             string        `env:"LEADS_LOG_FILE"`
	S3Endpoint          string        `env:"LEADS_S3_ENDPOINT"`
	S3Region            string        `env:"LEADS_S3_REGION"`
	S3Bucket            string        `env:"LEADS_S3_BUCKET"`
	S3AccessKey         string        `env:"LEADS_S3_ACCESS_KEY"`
	S3SecretKey         string        `env:"LEADS_S3_SECRET_KEY"`
}

// parseEnv loads .env from the working directory, if any, then overlays
// cfg with the LEADS_* variables that are set. Variables already present in
// the environment win over .env.
func parseEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var ec envConfig
	if err := env.Load(&ec, nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	ec.apply(cfg)
	return nil
}

func (ec *envConfig) apply(cfg *Config) {
	overlay(&cfg.BaseURL, ec.BaseURL)
	overlay(&cfg.DatabasePath, ec.DatabasePath)
	overlay(&cfg.KeyPath, ec.KeyPath)
	overlay(&cfg.PageSize, ec.PageSize)
	overlay(&cfg.RequestTimeout, ec.RequestTimeout)
	overlay(&cfg.OnlineCheckInterval, ec.OnlineCheckInterval)
	overlay(&cfg.LogLevel, ec.LogLevel)
	overlay(&cfg.LogFormat, ec.LogFormat)
	overlay(&cfg.LogFile, ec.LogFile)
	overlay(&cfg.S3Endpoint, ec.S3Endpoint)
	overlay(&cfg.S3Region, ec.S3Region)
	overlay(&cfg.S3Bucket, ec.S3Bucket)
	overlay(&cfg.S3AccessKey, ec.S3AccessKey)
	overlay(&cfg.S3SecretKey, ec.S3SecretKey)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
