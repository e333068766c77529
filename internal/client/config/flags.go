package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the leads API
//	-i int      online check interval in seconds
//	-p int      page size
//	-d string   path to the local SQLite database
//	-l string   log level (debug, info, warn, error)
//
// Only these flags are picked out of args, so -c and unknown flags
// do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-p", "-d", "-l"})

	fs := flag.NewFlagSet("leadcli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the leads API")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "rows per page")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
