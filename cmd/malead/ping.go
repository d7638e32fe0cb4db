package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the inference endpoint is reachable",
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client, err := buildClient(cfg, logger)
	if err != nil {
		logger.Error("failed to create inference client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx); err != nil {
		logger.Error("inference endpoint unreachable", "provider", cfg.Inference.Provider, "base_url", cfg.Inference.BaseURL, "error", err)
		os.Exit(1)
	}
	logger.Info("inference endpoint reachable", "provider", cfg.Inference.Provider, "base_url", cfg.Inference.BaseURL, "model", cfg.Inference.Model)
	return nil
}
