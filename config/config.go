// Package config loads the CLI/env-driven runtime configuration used by
// cmd/zvoted, mirroring
// vocdoni-davinci-node/cmd/davinci-sequencer/config.go's pflag+viper
// wiring.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultLightwalletdURL is the lightwalletd-style endpoint the
	// reference Rust client hardcoded; kept as the default here so a
	// bare `zvoted` invocation still has somewhere to sync from.
	DefaultLightwalletdURL = "https://zec.rocks:443"
	// DefaultDatadir is relative to the user's home directory.
	DefaultDatadir = ".zvote"
	// DefaultDBFile is the SQLite file name inside the datadir.
	DefaultDBFile = "zvote.sqlite"

	defaultLogLevel  = "info"
	defaultLogOutput = "stderr"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Config holds the application configuration assembled by Load.
type Config struct {
	Datadir    string `mapstructure:"datadir"`
	DB         string `mapstructure:"db"`
	LwdURL     string `mapstructure:"lwd-url"`
	TallierURL string `mapstructure:"tallier-url"`
	HTTPAddr   string `mapstructure:"http-addr"`
	Log        LogConfig
}

// Load parses CLI flags (and ZVOTE_-prefixed environment variables) into
// a Config, falling back to the package defaults when unset.
func Load(args []string) (*Config, error) {
	v := viper.New()

	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	defaultDatadir := filepath.Join(userHomeDir, DefaultDatadir)
	defaultDBPath := filepath.Join(defaultDatadir, DefaultDBFile)

	v.SetDefault("datadir", defaultDatadir)
	v.SetDefault("db", defaultDBPath)
	v.SetDefault("lwd-url", DefaultLightwalletdURL)
	v.SetDefault("tallier-url", "")
	v.SetDefault("http-addr", "127.0.0.1:7890")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	fs := flag.NewFlagSet("zvoted", flag.ContinueOnError)
	fs.String("datadir", defaultDatadir, "data directory for the database and downloaded reference data")
	fs.String("db", defaultDBPath, "path to the SQLite database file")
	fs.String("lwd-url", DefaultLightwalletdURL, "lightwalletd-compatible CompactTxStreamer endpoint")
	fs.String("tallier-url", "", "base URL of the tallier service (required to sync or vote)")
	fs.String("http-addr", "127.0.0.1:7890", "address the local HTTP API listens on")
	fs.String("log.level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("log.output", defaultLogOutput, "log output (stdout, stderr, or a file path)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: zvoted [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  upper-cased, prefixed with ZVOTE_, with dashes and dots replaced by underscores.\n")
		fmt.Fprintf(os.Stderr, "  For example, ZVOTE_LWD_URL or ZVOTE_LOG_LEVEL.\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("ZVOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: error unmarshaling config: %w", err)
	}
	return cfg, nil
}
