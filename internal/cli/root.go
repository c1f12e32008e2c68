// Package cli wires the notes commands: the interactive list and a few
// scriptable subcommands against the same API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/metrics"
	"github.com/Makepad-fr/tada/internal/notelist"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// skipConfig marks commands that must run even when the config is broken.
const skipConfig = "skip-config"

// App carries the root flags and what PersistentPreRunE builds from them.
type App struct {
	ConfigPath  string
	BaseURL     string
	LogLevel    string
	LogFile     string
	Theme       string
	Color       bool
	NoColor     bool
	MetricsAddr string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	stopMetrics context.CancelFunc
	logCloser   io.Closer
}

// Execute runs the notes command line with os.Args.
func Execute(ctx context.Context) error {
	cmd, app := newRootCmd()
	return execute(ctx, cmd, app)
}

// execute releases what setup acquired even when the command fails, which
// PersistentPostRunE would not.
func execute(ctx context.Context, cmd *cobra.Command, app *App) error {
	defer app.teardown()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *App) {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "notes",
		Short:         "Browse, check and reorder notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  notes

  # Print the first page, or everything matching a query
  notes ls
  notes ls --all --search milk

  # Scriptable edits
  notes check 42
  notes move 42 3 0
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			return nil
		}
		return app.setup(cmd, !cmd.HasParent())
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&app.ConfigPath, "config", "c", "", "Config file path (YAML)")
	f.StringVar(&app.BaseURL, "base-url", "", "Notes API base URL (overrides config)")
	f.StringVar(&app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&app.LogFile, "log-file", "", "Write logs to this file (the interactive list discards them otherwise)")
	f.StringVar(&app.Theme, "theme", "", "Output theme (classic|neon|mono)")
	f.BoolVar(&app.Color, "color", false, "Force colored output")
	f.BoolVar(&app.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&app.MetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9102")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newCheckCmd(app, true))
	cmd.AddCommand(newCheckCmd(app, false))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd, app
}

// setup layers flags over the loaded config and builds the logger, theme and
// optional metrics endpoint.
func (app *App) setup(cmd *cobra.Command, interactive bool) error {
	cfg, err := config.Load(app.ConfigPath, nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = app.BaseURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = app.LogFile
	}
	if flags.Changed("theme") {
		cfg.Theme = app.Theme
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = app.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	app.cfg = cfg

	ui.SetColorForcing(app.Color, app.NoColor)
	ui.SetTheme(cfg.Theme)

	if err := app.setupLogging(cmd.ErrOrStderr(), interactive); err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		app.metrics = metrics.New(reg)
		ctx, cancel := context.WithCancel(cmd.Context())
		app.stopMetrics = cancel
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, app.logger); err != nil {
				app.logger.Error("Metrics server failed", slog.String("addr", cfg.MetricsAddr), slog.String("error", err.Error()))
			}
		}()
	}
	return nil
}

// setupLogging writes text logs to the log file when one is configured.
// Otherwise scriptable commands log to stderr and the interactive list,
// which owns the terminal, discards them.
func (app *App) setupLogging(stderr io.Writer, interactive bool) error {
	level, err := config.ParseLevel(app.cfg.LogLevel)
	if err != nil {
		return err
	}

	var w io.Writer
	switch {
	case app.cfg.LogFile != "":
		f, err := os.OpenFile(app.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		app.logCloser = f
		w = f
	case interactive:
		w = io.Discard
	default:
		w = stderr
	}

	app.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(app.logger)
	return nil
}

func (app *App) teardown() {
	if app.stopMetrics != nil {
		app.stopMetrics()
		app.stopMetrics = nil
	}
	if app.logCloser != nil {
		_ = app.logCloser.Close()
		app.logCloser = nil
	}
}

func (app *App) client() *api.Client {
	return api.NewClient(app.cfg.BaseURL,
		api.WithTimeout(app.cfg.RequestTimeout),
		api.WithLogger(app.logger),
		api.WithMetrics(app.metrics),
	)
}

func (app *App) controller() *notelist.Controller {
	return notelist.New(
		notelist.WithLogger(app.logger),
		notelist.WithMetrics(app.metrics),
	)
}

func runTUI(cmd *cobra.Command, app *App) error {
	client := app.client()
	app.logger.Info("Starting notes",
		slog.String("base_url", app.cfg.BaseURL),
		slog.String("session", client.Session()))

	err := tui.Run(cmd.Context(), app.controller(), client, tui.Options{
		FlushInterval:  app.cfg.FlushInterval,
		RequestTimeout: app.cfg.RequestTimeout,
		Logger:         app.logger,
		Theme:          ui.Current(),
	})
	if errors.Is(err, tui.ErrUnsynced) && !errors.Is(err, tui.ErrAborted) {
		ui.Warn(cmd.ErrOrStderr(), err.Error())
		return nil
	}
	return err
}
