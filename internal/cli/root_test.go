package cli

import (
	"errors"
	"testing"
	"time"

	"procsweep/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cmd := NewRootCommand()
	cfg, err := loadConfig(cmd.Flags(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ShowAll || cfg.Filter != "" || cfg.Once {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SortBy != "cpu" || !cfg.SortDescending {
		t.Errorf("default sort = %s desc=%v, want cpu descending", cfg.SortBy, cfg.SortDescending)
	}
	if cfg.RefreshInterval != 2*time.Second {
		t.Errorf("default refresh = %v", cfg.RefreshInterval)
	}
}

func TestLoadConfigFlagsAndPositional(t *testing.T) {
	cmd := NewRootCommand()
	for flag, value := range map[string]string{
		"all":          "true",
		"sort-by":      "memory",
		"ascending":    "true",
		"theme":        "serious",
		"refresh-rate": "500ms",
		"once":         "true",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	cfg, err := loadConfig(cmd.Flags(), []string{"postgres"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ShowAll || cfg.SortBy != "memory" || cfg.SortDescending || !cfg.Once {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Theme != "serious" || cfg.RefreshInterval != 500*time.Millisecond {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Filter != "postgres" {
		t.Errorf("positional filter = %q", cfg.Filter)
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PROCSWEEP_THEME", "serious")
	t.Setenv("PROCSWEEP_SORT_BY", "name")

	cfg, err := loadConfig(NewRootCommand().Flags(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "serious" || cfg.SortBy != "name" {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestLoadConfigValidates(t *testing.T) {
	cmd := NewRootCommand()
	if err := cmd.Flags().Set("theme", "neon"); err != nil {
		t.Fatal(err)
	}
	_, err := loadConfig(cmd.Flags(), nil)
	var ce *config.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a config error, got %v", err)
	}
}
