// Package config provides configuration management for the B2F forwarding server.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the B2F server configuration.
type Config struct {
	Hostname string         `toml:"hostname"`
	LogLevel string         `toml:"log_level"`
	Listen   string         `toml:"listen"`
	Users    string         `toml:"users"`
	Mailbox  MailboxConfig  `toml:"mailbox"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Limits   LimitsConfig   `toml:"limits"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// MailboxConfig controls where and how accepted messages are persisted.
type MailboxConfig struct {
	Path          string `toml:"path"`
	KeepRawFrames bool   `toml:"keep_raw_frames"`
}

// TimeoutsConfig defines idle-read timeout durations, expressed as
// parseable duration strings (e.g. "1s", "5m").
type TimeoutsConfig struct {
	// Line is the idle timeout applied to interactive CR-terminated reads
	// (callsign/password/command prompts).
	Line string `toml:"line"`
	// Batch is the idle timeout applied while accumulating the raw blob
	// of concatenated B2 frames during the RECEIVING state.
	Batch string `toml:"batch"`
}

// LimitsConfig defines resource limits for the server.
type LimitsConfig struct {
	MaxConnections int `toml:"max_connections"`
}

// MetricsConfig holds configuration for Prometheus metrics exposition.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listen:   "0.0.0.0:8772",
		Users:    "users.json",
		Mailbox: MailboxConfig{
			Path: "mailbox",
		},
		Timeouts: TimeoutsConfig{
			Line:  "1s",
			Batch: "5s",
		},
		Limits: LimitsConfig{
			MaxConnections: 64,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9102",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is complete and internally
// consistent, returning an error describing the first problem found.
func (c *Config) Validate() error {
	if c.Hostname == "" {
		return errors.New("hostname is required")
	}
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.Users == "" {
		return errors.New("users path is required")
	}
	if c.Mailbox.Path == "" {
		return errors.New("mailbox path is required")
	}
	if c.Limits.MaxConnections <= 0 {
		return errors.New("max_connections must be positive")
	}
	if c.Timeouts.Line != "" {
		if _, err := time.ParseDuration(c.Timeouts.Line); err != nil {
			return fmt.Errorf("invalid line timeout: %w", err)
		}
	}
	if c.Timeouts.Batch != "" {
		if _, err := time.ParseDuration(c.Timeouts.Batch); err != nil {
			return fmt.Errorf("invalid batch timeout: %w", err)
		}
	}
	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}
	return nil
}

// LineTimeout returns the interactive line-read idle timeout, falling
// back to 1 second if unconfigured or invalid.
func (t *TimeoutsConfig) LineTimeout() time.Duration {
	d, err := time.ParseDuration(t.Line)
	if t.Line == "" || err != nil {
		return time.Second
	}
	return d
}

// BatchTimeout returns the RECEIVING-state idle timeout, falling back
// to 5 seconds if unconfigured or invalid.
func (t *TimeoutsConfig) BatchTimeout() time.Duration {
	d, err := time.ParseDuration(t.Batch)
	if t.Batch == "" || err != nil {
		return 5 * time.Second
	}
	return d
}
