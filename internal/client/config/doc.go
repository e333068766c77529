// Package config loads runtime configuration for the lead grid CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. A .yaml or .yml
//     extension selects YAML, anything else is read as JSON.
//  3. A .env file in the working directory and LEADS_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the leads API
//	-i int      online status check interval (seconds)
//	-p int      page size
//	-d string   local database path
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "base_url": "http://localhost:5000",
//	  "page_size": 20,
//	  "online_check_interval": "3s",
//	  "s3": {"bucket": "leads", "endpoint": "http://127.0.0.1:9000"}
//	}
package config
