package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr         string
	MetricsAddr  string
	OutBuffer    int
	WriteTimeout time.Duration
	FlushTimeout time.Duration
	LogLevel     string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return d
}

// Load parses args (without the program name). Flags default to their
// BUDGETCHAT_* environment variables.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("budgetchat", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getEnv("BUDGETCHAT_ADDR", ":1337"), "chat listen address")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", getEnv("BUDGETCHAT_METRICS_ADDR", ":9090"), "metrics listen address, empty to disable")
	fs.IntVar(&cfg.OutBuffer, "outbuf", getEnvInt("BUDGETCHAT_OUTBUF", 256), "queued outbound lines per connection")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", getEnvDuration("BUDGETCHAT_WRITE_TIMEOUT", 0), "per-line write deadline, 0 disables")
	fs.DurationVar(&cfg.FlushTimeout, "flush-timeout", getEnvDuration("BUDGETCHAT_FLUSH_TIMEOUT", time.Second), "time allowed to flush queued lines on disconnect")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("BUDGETCHAT_LOG_LEVEL", "info"), "debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.OutBuffer <= 0 {
		return fmt.Errorf("config: outbuf must be positive, got %d", c.OutBuffer)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("config: write-timeout must not be negative")
	}
	if c.FlushTimeout < 0 {
		return fmt.Errorf("config: flush-timeout must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}
