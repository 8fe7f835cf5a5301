package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Hostname != "localhost" {
		t.Errorf("expected hostname 'localhost', got %q", cfg.Hostname)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected log_level 'info', got %q", cfg.LogLevel)
	}

	if cfg.Listen != "0.0.0.0:8772" {
		t.Errorf("expected listen '0.0.0.0:8772', got %q", cfg.Listen)
	}

	if cfg.Users != "users.json" {
		t.Errorf("expected users 'users.json', got %q", cfg.Users)
	}

	if cfg.Mailbox.Path != "mailbox" {
		t.Errorf("expected mailbox path 'mailbox', got %q", cfg.Mailbox.Path)
	}

	if cfg.Limits.MaxConnections != 64 {
		t.Errorf("expected max_connections 64, got %d", cfg.Limits.MaxConnections)
	}

	if cfg.Timeouts.Line != "1s" {
		t.Errorf("expected line timeout '1s', got %q", cfg.Timeouts.Line)
	}

	if cfg.Timeouts.Batch != "5s" {
		t.Errorf("expected batch timeout '5s', got %q", cfg.Timeouts.Batch)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty hostname",
			modify:  func(c *Config) { c.Hostname = "" },
			wantErr: true,
		},
		{
			name:    "empty listen address",
			modify:  func(c *Config) { c.Listen = "" },
			wantErr: true,
		},
		{
			name:    "empty users path",
			modify:  func(c *Config) { c.Users = "" },
			wantErr: true,
		},
		{
			name:    "empty mailbox path",
			modify:  func(c *Config) { c.Mailbox.Path = "" },
			wantErr: true,
		},
		{
			name:    "zero max_connections",
			modify:  func(c *Config) { c.Limits.MaxConnections = 0 },
			wantErr: true,
		},
		{
			name:    "negative max_connections",
			modify:  func(c *Config) { c.Limits.MaxConnections = -1 },
			wantErr: true,
		},
		{
			name:    "invalid line timeout",
			modify:  func(c *Config) { c.Timeouts.Line = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid batch timeout",
			modify:  func(c *Config) { c.Timeouts.Batch = "invalid" },
			wantErr: true,
		},
		{
			name: "metrics enabled without address",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Address = ""
			},
			wantErr: true,
		},
		{
			name: "metrics enabled without path",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = ""
			},
			wantErr: true,
		},
		{
			name: "metrics enabled with address and path",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLineTimeout(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"1s", time.Second},
		{"500ms", 500 * time.Millisecond},
		{"2s", 2 * time.Second},
		{"", time.Second},
		{"invalid", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := TimeoutsConfig{Line: tt.value}
			if got := cfg.LineTimeout(); got != tt.expected {
				t.Errorf("LineTimeout() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBatchTimeout(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"5s", 5 * time.Second},
		{"10s", 10 * time.Second},
		{"1m", time.Minute},
		{"", 5 * time.Second},
		{"invalid", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := TimeoutsConfig{Batch: tt.value}
			if got := cfg.BatchTimeout(); got != tt.expected {
				t.Errorf("BatchTimeout() = %v, want %v", got, tt.expected)
			}
		})
	}
}
