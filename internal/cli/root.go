// Package cli wires flags, environment, and configuration into a running
// procsweep instance.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"procsweep/internal/collector"
	"procsweep/internal/config"
	"procsweep/internal/session"
	"procsweep/ui/console"
	"procsweep/ui/tui"
)

const envPrefix = "PROCSWEEP"

// version is stamped by the release build.
var version = "dev"

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procsweep [filter]",
		Short: "Interactively find and signal runaway processes",
		Long: `procsweep is an interactive process killer for the terminal.

It shows a live, filterable table of your processes. Type to fuzzy-search,
use /pattern/ for regex, or /killed to review what you already signaled.
Signals go through a safety pipeline that protects init, procsweep itself,
and (unless you confirm) your own shell.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), args)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.BoolP("all", "a", false, "show every user's processes, not just your own")
	flags.String("sort-by", "cpu", "initial sort column (cpu|memory|pid|name|user|runtime)")
	flags.Bool("ascending", false, "sort ascending instead of descending")
	flags.String("theme", "pink", "color theme (pink|serious)")
	flags.Duration("refresh-rate", 2*time.Second, "process table refresh period")
	flags.String("log-file", "", "append structured logs to this file")
	flags.Bool("once", false, "print one process snapshot and exit")
	return cmd
}

// loadConfig layers defaults, PROCSWEEP_* environment variables, and
// flags, flags winning. The optional positional argument pre-seeds the
// search filter.
func loadConfig(flags *pflag.FlagSet, args []string) (config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default().
		WithShowAll(v.GetBool("all")).
		WithSort(v.GetString("sort-by"), !v.GetBool("ascending")).
		WithTheme(v.GetString("theme")).
		WithRefreshInterval(v.GetDuration("refresh-rate"))
	cfg.LogFile = v.GetString("log-file")
	cfg.Once = v.GetBool("once")
	if len(args) == 1 {
		cfg = cfg.WithFilter(args[0])
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config) error {
	log, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("starting", "version", version, "show_all", cfg.ShowAll, "theme", cfg.Theme)

	provider := collector.NewSystemCollector(log)

	if cfg.Once {
		return console.PrintSnapshot(os.Stdout, provider, cfg.ShowAll, cfg.Filter)
	}

	sortBy, err := session.ParseSortColumn(cfg.SortBy)
	if err != nil {
		return err
	}
	sess := session.New(provider, log, session.Options{
		ShowAll:        cfg.ShowAll,
		Filter:         cfg.Filter,
		SortBy:         sortBy,
		SortDescending: cfg.SortDescending,
	})
	return tui.Run(sess, tui.Options{
		Theme:           cfg.Theme,
		RefreshInterval: cfg.RefreshInterval,
	})
}

// newLogger opens the structured log sink. Without a destination file
// all logging is discarded; the TUI owns the terminal.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, func() { f.Close() }, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "procsweep:", err)
		os.Exit(1)
	}
}
