package config

import (
	"encoding/json"
	"os"

	"github.com/llwyd-bot123/opencircle-client/internal/flagx"
	"github.com/llwyd-bot123/opencircle-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can spell intervals either as strings like "5s" or
// as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL         string         `json:"api_base_url"`
	UploadBaseURL      string         `json:"upload_base_url"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	CookieWaitTimeout  timex.Duration `json:"cookie_wait_timeout"`
	CookieWaitInterval timex.Duration `json:"cookie_wait_interval"`
	PrefsPath          string         `json:"prefs_path"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config. Empty fields in the file leave the current value untouched.
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.UploadBaseURL != "" {
		cfg.UploadBaseURL = jc.UploadBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CookieWaitTimeout.Duration > 0 {
		cfg.CookieWaitTimeout = jc.CookieWaitTimeout.Duration
	}
	if jc.CookieWaitInterval.Duration > 0 {
		cfg.CookieWaitInterval = jc.CookieWaitInterval.Duration
	}
	if jc.PrefsPath != "" {
		cfg.PrefsPath = jc.PrefsPath
	}
}
