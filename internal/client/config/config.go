// Package config assembles runtime settings for the OpenCircle client.
//
// Sources are applied in order, later ones winning:
// defaults -> environment (.env via godotenv) -> JSON file (-c/-config) ->
// command-line flags.
package config

import "time"

// Config holds runtime settings for the OpenCircle client.
//
// Fields:
//   - APIBaseURL: base URL of the REST backend (e.g. http://localhost:8000/api).
//   - UploadBaseURL: base URL server-hosted assets are served from.
//   - RequestTimeout: per-request HTTP timeout.
//   - CookieWaitTimeout / CookieWaitInterval: bounds of the session-cookie
//     poll that gates two-factor setup initiation.
//   - CacheStaleTime / CacheGCTime: query cache staleness window and eviction
//     age.
//   - PrefsPath: sqlite file backing client-local preferences.
type Config struct {
	APIBaseURL         string
	UploadBaseURL      string
	RequestTimeout     time.Duration
	CookieWaitTimeout  time.Duration
	CookieWaitInterval time.Duration
	CacheStaleTime     time.Duration
	CacheGCTime        time.Duration
	PrefsPath          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.UploadBaseURL = "http://localhost:8000/uploads"
	c.RequestTimeout = 10 * time.Second
	c.CookieWaitTimeout = 5 * time.Second
	c.CookieWaitInterval = 150 * time.Millisecond
	c.CacheStaleTime = 5 * time.Minute
	c.CacheGCTime = 10 * time.Minute
	c.PrefsPath = "opencircle.db"
}

// Load constructs a Config, applies defaults, then overlays values from the
// environment, JSON (if present), and command-line flags (if present).
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
