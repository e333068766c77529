package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeTemp(t, "cfg.json", `{
			"base_url": "http://api.example:8080",
			"page_size": 25,
			"online_check_interval": "10s",
			"request_timeout": 2000000000,
			"s3": {"bucket": "exports", "access_key": "ak"}
		}`)

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg, []string{"-config", path}))

		assert.Equal(t, "http://api.example:8080", cfg.BaseURL)
		assert.Equal(t, 25, cfg.PageSize)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "exports", cfg.S3Bucket)
		assert.Equal(t, "ak", cfg.S3AccessKey)
		assert.Equal(t, "us-east-1", cfg.S3Region, "unnamed fields keep their value")
		assert.Equal(t, "leadgrid.db", cfg.DatabasePath)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeTemp(t, "cfg.yml", "base_url: http://yaml:1\nlog_format: json\nonline_check_interval: 1m\n")

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg, []string{"-c", path}))

		assert.Equal(t, "http://yaml:1", cfg.BaseURL)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, time.Minute, cfg.OnlineCheckInterval)
		assert.Equal(t, 20, cfg.PageSize)
	})

	t.Run("no flag leaves config alone", func(t *testing.T) {
		cfg := &Config{BaseURL: "http://keep"}
		require.NoError(t, parseFile(cfg, []string{"-a", "x"}))
		assert.Equal(t, "http://keep", cfg.BaseURL)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseFile(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeTemp(t, "bad.json", `{ this is not valid json`)
		require.Error(t, parseFile(&Config{}, []string{"-c", path}))
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeTemp(t, "bad.yaml", "online_check_interval: soon\n")
		require.Error(t, parseFile(&Config{}, []string{"-c", path}))
	})
}
