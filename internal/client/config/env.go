package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment. A .env
// file in the working directory is loaded first when present; real
// environment variables win over it, which godotenv guarantees by never
// overwriting existing keys.
//
// Recognized variables:
//
//	OPENCIRCLE_API_URL      base URL of the REST backend
//	OPENCIRCLE_UPLOAD_URL   base URL of hosted assets
//	OPENCIRCLE_TIMEOUT      per-request timeout (Go duration string)
//	OPENCIRCLE_PREFS_PATH   sqlite file for local preferences
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("OPENCIRCLE_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("OPENCIRCLE_UPLOAD_URL"); v != "" {
		cfg.UploadBaseURL = v
	}
	if v := os.Getenv("OPENCIRCLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("OPENCIRCLE_PREFS_PATH"); v != "" {
		cfg.PrefsPath = v
	}
}
