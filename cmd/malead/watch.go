package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/scheduler"
)

var watchProfile string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze the catalog on an interval",
	Long:  "Runs an analysis pass immediately and then every watch.interval; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchProfile, "profile", "", "YAML file with the buyer profile (default: profile section of config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	profile, err := loadProfile(cfg, watchProfile)
	if err != nil {
		logger.Error("invalid buyer profile", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"provider", cfg.Inference.Provider,
		"model", cfg.Inference.Model,
		"interval", cfg.Watch.Interval.String(),
		"store", cfg.Store.Path,
		"industries", len(cfg.Filters.Industries),
		"locations", len(cfg.Filters.Locations),
	)

	companies, release, err := openStore(cmd, cfg, "")
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	// From here on errors are returned so release always runs.
	defer release()

	client, err := buildClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("create inference client: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)
	p := buildPipeline(cfg, profile, companies, client, n, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(p, cfg.Watch.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
