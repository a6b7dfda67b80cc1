// Package config loads runtime configuration for the accountkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the HTTP API
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000/api/v1",
//	  "request_timeout": "10s"
//	}
package config
