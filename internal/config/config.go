// Package config holds the runtime configuration assembled from CLI
// flags, environment variables, and the optional config file.
package config

import (
	"time"

	"procsweep/internal/collector"
)

// Config contains configurable parameters for a procsweep run.
// Use Default() to get sensible defaults, then override as needed.
type Config struct {
	// Initial table state
	Filter         string // pre-seeded search query (default: "")
	ShowAll        bool   // include processes owned by other users (default: false)
	SortBy         string // initial sort column (default: "cpu")
	SortDescending bool   // sort direction (default: true)

	// Appearance
	Theme string // color theme, "pink" or "serious" (default: "pink")

	// Timing
	RefreshInterval time.Duration // process table refresh period (default: 2s)

	// Diagnostics
	LogFile string // structured log destination, empty disables logging
	Once    bool   // print one snapshot and exit instead of running the TUI
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		SortBy:          "cpu",
		SortDescending:  true,
		Theme:           "pink",
		RefreshInterval: 2 * time.Second,
	}
}

// WithFilter returns a copy of the config with a pre-seeded query.
func (c Config) WithFilter(filter string) Config {
	c.Filter = filter
	return c
}

// WithShowAll returns a copy of the config with system processes included.
func (c Config) WithShowAll(all bool) Config {
	c.ShowAll = all
	return c
}

// WithSort returns a copy of the config with a modified sort order.
func (c Config) WithSort(column string, descending bool) Config {
	c.SortBy = column
	c.SortDescending = descending
	return c
}

// WithTheme returns a copy of the config with a modified theme.
func (c Config) WithTheme(theme string) Config {
	c.Theme = theme
	return c
}

// WithRefreshInterval returns a copy of the config with a modified
// refresh period.
func (c Config) WithRefreshInterval(d time.Duration) Config {
	c.RefreshInterval = d
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	switch c.Theme {
	case "pink", "serious":
	default:
		return &ConfigError{Field: "Theme", Message: "must be pink or serious"}
	}
	switch c.SortBy {
	case "cpu", "memory", "pid", "name", "user", "runtime":
	default:
		return &ConfigError{Field: "SortBy", Message: "must be one of cpu, memory, pid, name, user, runtime"}
	}
	if c.RefreshInterval < collector.MinRefreshInterval {
		return &ConfigError{Field: "RefreshInterval", Message: "must be at least " + collector.MinRefreshInterval.String()}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
