package config

import (
	"flag"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Flags holds command-line flag values.
type Flags struct {
	ConfigPath     string
	Hostname       string
	LogLevel       string
	Listen         string
	UsersPath      string
	MailboxPath    string
	LineTimeout    string
	BatchTimeout   string
	MaxConnections int
	MetricsEnabled bool
	MetricsAddress string
}

// ParseFlags parses command-line flags and returns a Flags struct.
func ParseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "./b2fd.toml", "Path to configuration file")
	flag.StringVar(&f.Hostname, "host", "", "Server hostname (CMS identity string)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.Listen, "port", "", "Listen address, e.g. \":8772\" or \"0.0.0.0:8772\"")
	flag.StringVar(&f.UsersPath, "users", "", "Path to the user credential JSON file")
	flag.StringVar(&f.MailboxPath, "mailbox", "", "Path to the mailbox storage directory")
	flag.StringVar(&f.LineTimeout, "timeout", "", "Idle timeout for interactive line reads")
	flag.IntVar(&f.MaxConnections, "max-connections", 0, "Maximum concurrent connections")
	flag.BoolVar(&f.MetricsEnabled, "metrics", false, "Enable Prometheus metrics exposition")
	flag.StringVar(&f.MetricsAddress, "metrics-address", "", "Address for the metrics HTTP server")

	debug := flag.Bool("debug", false, "Shorthand for -log-level=debug")

	flag.Parse()

	if *debug {
		f.LogLevel = "debug"
	}

	return f
}

// Load parses a TOML configuration file and returns the Config.
// If the file does not exist, returns the default configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig Config
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	return mergeConfig(cfg, fileConfig), nil
}

// ApplyFlags merges command-line flag values into the config.
// Non-zero/non-empty flag values override config file values.
func ApplyFlags(cfg Config, f *Flags) Config {
	if f.Hostname != "" {
		cfg.Hostname = f.Hostname
	}

	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if f.Listen != "" {
		cfg.Listen = f.Listen
	}

	if f.UsersPath != "" {
		cfg.Users = f.UsersPath
	}

	if f.MailboxPath != "" {
		cfg.Mailbox.Path = f.MailboxPath
	}

	if f.LineTimeout != "" {
		cfg.Timeouts.Line = f.LineTimeout
	}

	if f.MaxConnections > 0 {
		cfg.Limits.MaxConnections = f.MaxConnections
	}

	if f.MetricsEnabled {
		cfg.Metrics.Enabled = true
	}

	if f.MetricsAddress != "" {
		cfg.Metrics.Address = f.MetricsAddress
	}

	return cfg
}

// LoadWithFlags loads configuration from the path specified in flags,
// then applies flag overrides.
func LoadWithFlags(f *Flags) (Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return cfg, err
	}
	return ApplyFlags(cfg, f), nil
}

// mergeConfig merges non-zero values from src into dst.
func mergeConfig(dst, src Config) Config {
	if src.Hostname != "" {
		dst.Hostname = src.Hostname
	}

	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}

	if src.Listen != "" {
		dst.Listen = src.Listen
	}

	if src.Users != "" {
		dst.Users = src.Users
	}

	if src.Mailbox.Path != "" {
		dst.Mailbox.Path = src.Mailbox.Path
	}

	if src.Mailbox.KeepRawFrames {
		dst.Mailbox.KeepRawFrames = src.Mailbox.KeepRawFrames
	}

	if src.Timeouts.Line != "" {
		dst.Timeouts.Line = src.Timeouts.Line
	}

	if src.Timeouts.Batch != "" {
		dst.Timeouts.Batch = src.Timeouts.Batch
	}

	if src.Limits.MaxConnections > 0 {
		dst.Limits.MaxConnections = src.Limits.MaxConnections
	}

	if src.Metrics.Enabled {
		dst.Metrics.Enabled = src.Metrics.Enabled
	}

	if src.Metrics.Address != "" {
		dst.Metrics.Address = src.Metrics.Address
	}

	if src.Metrics.Path != "" {
		dst.Metrics.Path = src.Metrics.Path
	}

	return dst
}
