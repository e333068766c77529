package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:5000", c.BaseURL)
	assert.Equal(t, 20, c.PageSize)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Zero(t, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"base_url":"http://file:1","page_size":30,"log_level":"debug"}`)
	t.Setenv("LEADS_PAGE_SIZE", "40")
	t.Setenv("LEADS_BASE_URL", "http://env:2")

	cfg, err := Load([]string{"-c", path, "-a", "http://flag:3"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag:3", cfg.BaseURL)
	assert.Equal(t, 40, cfg.PageSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.BaseURL = "/api" }},
		{"garbage base url", func(c *Config) { c.BaseURL = "::" }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"negative page size", func(c *Config) { c.PageSize = -5 }},
		{"zero interval", func(c *Config) { c.OnlineCheckInterval = 0 }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	_, err := Load([]string{"-p", "0"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestS3(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.S3AccessKey = "key"
	c.S3SecretKey = "secret"

	s3 := c.S3()
	assert.Equal(t, "leads", s3.Bucket)
	assert.Equal(t, "us-east-1", s3.Region)
	assert.Equal(t, "key", s3.AccessKey)
	assert.Equal(t, "secret", s3.SecretKey)
	assert.Equal(t, "http://127.0.0.1:9000", s3.Endpoint)
}
