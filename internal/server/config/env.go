package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotenvFiles lists the files godotenv tries before reading the environment.
var dotenvFiles = []string{".env"}

// parseEnv overlays values from environment variables onto config.
//
// A .env file in the working directory is loaded first when present; it
// never overrides variables that are already set in the process
// environment. Unset variables leave the current field values untouched.
// Malformed values (e.g. ACCESS_TOKEN_EXPIRY=soon) panic, matching the
// behaviour of the JSON and flag loaders.
func parseEnv(config *Config) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load(dotenvFiles...)

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
