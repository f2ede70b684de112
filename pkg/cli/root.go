// Package cli implements the tz command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"tz/pkg/config"
	"tz/pkg/core"
	"tz/pkg/metrics"
	"tz/pkg/progress"
	"tz/pkg/rle"

	"github.com/gostdlib/base/context"
	"github.com/spf13/cobra"
)

// app holds what every subcommand shares. It is built once per run.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Recorder
	tracker *progress.Tracker
	sched   *rle.Scheduler
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// coreOptions returns the options for core operations.
func (a *app) coreOptions() core.Options {
	return core.Options{
		Scheduler: a.sched,
		Strict:    a.cfg.Archive.Strict,
		Logger:    a.log,
		Metrics:   a.metrics,
		Progress:  a.tracker,
	}
}

// NewRootCmd builds the tz command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tz",
		Short: "tz - run-length compressor for files and directories",
		Long: `tz compresses a file or a directory into a .tz file using run-length
encoding. Directories are flattened into a single archive first. Large inputs
are split into chunks that are processed in parallel.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if a == nil || a.cfg.Metrics.File == "" {
				return nil
			}
			return a.metrics.WriteFile(a.cfg.Metrics.File)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.GetDefaultConfigPath()+")")
	flags.IntP("workers", "w", 0, "Number of parallel workers (default half the CPUs)")
	flags.Int("threshold", rle.DefaultThreshold, "Input size in bytes at which work is split across workers")
	flags.Bool("strict", false, "Reject malformed directory archive entries")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file when done")
	flags.BoolP("quiet", "q", false, "Disable progress output")

	rootCmd.AddCommand(
		newCompressCmd(),
		newDecompressCmd(),
		newCompareCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command and exits with status 1 on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and builds the shared app.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("threshold") {
		cfg.Threshold, _ = flags.GetInt("threshold")
	}
	if flags.Changed("strict") {
		cfg.Archive.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.File, _ = flags.GetString("metrics-file")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	level, _ := config.ParseLevel(cfg.Logging.Level)
	a := &app{
		cfg:     cfg,
		log:     slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})),
		metrics: metrics.New(),
	}

	schedOpts := cfg.SchedulerOptions()
	if quiet, _ := flags.GetBool("quiet"); !quiet {
		a.tracker = progress.New(cmd.OutOrStdout())
		schedOpts.OnChunk = func(n int) { a.tracker.AddBytes(uint64(n)) }
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.sched = rle.New(ctx, schedOpts)
	a.log.Debug("scheduler ready", "workers", a.sched.Workers(), "threshold", a.sched.Threshold())

	cmd.SetContext(context.WithValue(ctx, appKey{}, a))
	return nil
}

// loadConfig reads --config if given, else the default config file if it
// exists, else returns the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadConfig(path)
	}
	path = config.GetDefaultConfigPath()
	if !config.ConfigExists(path) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}
