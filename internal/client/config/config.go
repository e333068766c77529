package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/export"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the lead grid CLI.
//
// Fields:
//   - BaseURL: root of the leads REST API, e.g. http://localhost:5000.
//   - DatabasePath: SQLite file holding cookies, identity and block snapshots.
//   - KeyPath: device secret used to seal persisted cookies.
//   - PageSize: rows per grid page and per cache block.
//   - RequestTimeout: per-request HTTP timeout; zero disables it.
//   - OnlineCheckInterval: how often the client checks backend reachability.
//   - LogLevel / LogFormat / LogFile: slog settings; an empty LogFile means stderr.
//   - S3*: bucket used by "export s3".
type Config struct {
	BaseURL             string
	DatabasePath        string
	KeyPath             string
	PageSize            int
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFormat           string
	LogFile             string
	S3Endpoint          string
	S3Region            string
	S3Bucket            string
	S3AccessKey         string
	S3SecretKey         string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:5000"
	c.DatabasePath = "leadgrid.db"
	c.KeyPath = "leadgrid.key"
	c.PageSize = 20
	c.RequestTimeout = 0
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.S3Bucket = "leads"
	c.S3Endpoint = "http://127.0.0.1:9000"
}

// Load builds a Config from defaults, then an optional JSON or YAML file
// (-c/-config), then .env and LEADS_* environment variables, then flags.
// Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base url %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidConfig, c.PageSize)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("%w: online check interval must be positive", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// S3 returns the export bucket settings.
func (c *Config) S3() export.S3Config {
	return export.S3Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}
}
