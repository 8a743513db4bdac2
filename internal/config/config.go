// Package config reads server settings from flags, falling back to TTT_*
// environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

// Config holds the server settings.
type Config struct {
	Addr            string
	ThinkDelay      time.Duration
	Heartbeat       time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigin   string
	LogLevel        string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ThinkDelay:      250 * time.Millisecond,
		Heartbeat:       15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
	}
}

var ErrInvalid = errors.New("invalid config")

// Load parses args on top of the environment. getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	cfg := Default()
	if err := fromEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("tictactoe-server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (TTT_ADDR)")
	fs.DurationVar(&cfg.ThinkDelay, "think-delay", cfg.ThinkDelay, "pause before the computer replies (TTT_THINK_DELAY)")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "SSE heartbeat interval (TTT_HEARTBEAT)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown limit (TTT_SHUTDOWN_TIMEOUT)")
	fs.StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "extra websocket origin, same-host is always allowed (TTT_ALLOWED_ORIGIN)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (TTT_LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// FromOS loads from the process arguments and environment.
func FromOS() (Config, error) {
	return Load(os.Args[1:], os.Getenv, os.Stderr)
}

func fromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("TTT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("TTT_ALLOWED_ORIGIN"); v != "" {
		cfg.AllowedOrigin = v
	}
	if v := getenv("TTT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TTT_THINK_DELAY", &cfg.ThinkDelay},
		{"TTT_HEARTBEAT", &cfg.Heartbeat},
		{"TTT_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalid)
	}
	if c.ThinkDelay < 0 {
		return fmt.Errorf("%w: negative think delay", ErrInvalid)
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("%w: heartbeat must be positive", ErrInvalid)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
