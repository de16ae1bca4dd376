package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tubeboost/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend API URL
//	-o string   client origin URL
//	-d string   local database path
//	-l string   log level
//
// Only these flags are taken from args (see flagx.FilterArgs), so the config
// file flag and anything else on the command line is left alone.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-o", "-d", "-l"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "backend API URL")
	fs.StringVar(&cfg.Origin, "o", cfg.Origin, "origin the client is served from")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
