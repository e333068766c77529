package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/leadgrid/internal/flagx"
	"github.com/dmitrijs2005/leadgrid/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" from "zero" so a partial file only overrides what it names.
type fileConfig struct {
	BaseURL             *string         `json:"base_url" yaml:"base_url"`
	DatabasePath        *string         `json:"database_path" yaml:"database_path"`
	KeyPath             *string         `json:"key_path" yaml:"key_path"`
	PageSize            *int            `json:"page_size" yaml:"page_size"`
	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	LogLevel            *string         `json:"log_level" yaml:"log_level"`
	LogFormat           *string         `json:"log_format" yaml:"log_format"`
	LogFile             *string         `json:"log_file" yaml:"log_file"`
	S3                  *fileS3         `json:"s3" yaml:"s3"`
}

type fileS3 struct {
	Endpoint  *string `json:"endpoint" yaml:"endpoint"`
	Region    *string `json:"region" yaml:"region"`
	Bucket    *string `json:"bucket" yaml:"bucket"`
	AccessKey *string `json:"access_key" yaml:"access_key"`
	SecretKey *string `json:"secret_key" yaml:"secret_key"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.KeyPath, fc.KeyPath)
	if fc.PageSize != nil {
		cfg.PageSize = *fc.PageSize
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogFile, fc.LogFile)
	if fc.S3 != nil {
		setString(&cfg.S3Endpoint, fc.S3.Endpoint)
		setString(&cfg.S3Region, fc.S3.Region)
		setString(&cfg.S3Bucket, fc.S3.Bucket)
		setString(&cfg.S3AccessKey, fc.S3.AccessKey)
		setString(&cfg.S3SecretKey, fc.S3.SecretKey)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
