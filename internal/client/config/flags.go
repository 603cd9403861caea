package config

import (
	"flag"
	"os"

	"github.com/llwyd-bot123/opencircle-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   base URL of the REST backend (default from Config)
//	-p string   path to the local preferences database
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "base URL of the OpenCircle API")
	fs.StringVar(&cfg.PrefsPath, "p", cfg.PrefsPath, "path to the local preferences database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
