package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/ai"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/config"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/coordinator"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/filter"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/notifier"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/pipeline"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/ratelimit"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/retry"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/store"
)

// probeBaseDelay is the first backoff step between liveness probe attempts.
const probeBaseDelay = 2 * time.Second

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "malead",
	Short:         "M&A lead analyzer",
	Long:          "malead scores candidate acquisition targets against a buyer profile using a local or hosted language model.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: MALEAD_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
func loadConfig(path string) (*config.Config, error) {
	return config.Load(config.ResolvePath(path))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildClient creates the configured inference client wrapped with probe
// retries and generation rate limiting.
func buildClient(cfg *config.Config, logger *slog.Logger) (model.InferenceClient, error) {
	// Generation calls carry their own deadline, so the transport has none.
	httpClient := &http.Client{}

	var inner model.InferenceClient
	switch cfg.Inference.Provider {
	case config.ProviderOllama:
		inner = ai.NewOllamaClient(cfg.Inference.BaseURL, cfg.Inference.Model, cfg.Inference.Timeout, httpClient)
	case config.ProviderOpenAI:
		inner = ai.NewOpenAIClient(cfg.Inference.BaseURL, cfg.Inference.APIKey, cfg.Inference.Model, cfg.Inference.Timeout, httpClient)
	default:
		return nil, fmt.Errorf("unsupported inference provider %q", cfg.Inference.Provider)
	}
	logger.Debug("inference client configured",
		"provider", cfg.Inference.Provider,
		"base_url", cfg.Inference.BaseURL,
		"model", cfg.Inference.Model,
		"timeout", cfg.Inference.Timeout.String(),
	)

	client := retry.NewClient(inner, cfg.Inference.ProbeRetries, probeBaseDelay, logger)
	return ratelimit.NewClient(client, ratelimit.NewLimiter(cfg.RateLimit.MinDelay)), nil
}

func buildCoordinator(cfg *config.Config, client model.InferenceClient, logger *slog.Logger) *coordinator.Coordinator {
	prompts := ai.NewPromptBuilder()
	batch := ai.NewBatchAnalyzer(client, prompts, cfg.Inference.Batch, logger)
	single := ai.NewIndividualAnalyzer(client, prompts, cfg.Inference.Single, logger)
	return coordinator.New(client, batch, single, cfg.Analysis, logger)
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, cfg.Notification.TopN, logger)
	default:
		return notifier.NewLogNotifier(logger, cfg.Notification.TopN)
	}
}

func setupFilter(cfg *config.Config) model.CompanyFilter {
	return filter.NewIndustryLocationFilter(
		cfg.Filters.Industries,
		cfg.Filters.Locations,
		cfg.Filters.ExcludeIndustries,
	)
}

// openStore returns the catalog for a run: the companies file when one is
// given, otherwise the SQLite store from config. The returned release func
// must always be called.
func openStore(cmd *cobra.Command, cfg *config.Config, companiesPath string) (model.CompanyStore, func(), error) {
	if companiesPath != "" {
		mem, err := store.LoadFile(cmd.Context(), companiesPath)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}
	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return sqlStore, func() { sqlStore.Close() }, nil
}

// loadProfile returns the buyer profile from path, or the config profile
// when path is empty. Defaults are applied before validation.
func loadProfile(cfg *config.Config, path string) (model.BuyerProfile, error) {
	profile := cfg.Profile
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.BuyerProfile{}, fmt.Errorf("read profile: %w", err)
		}
		profile = model.BuyerProfile{}
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return model.BuyerProfile{}, fmt.Errorf("parse profile %s: %w", path, err)
		}
	}
	profile = profile.WithDefaults()
	if err := profile.Validate(); err != nil {
		return model.BuyerProfile{}, fmt.Errorf("buyer profile: %w", err)
	}
	return profile, nil
}

func buildPipeline(cfg *config.Config, profile model.BuyerProfile, companies model.CompanyStore, client model.InferenceClient, n model.Notifier, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(
		profile,
		companies,
		setupFilter(cfg),
		buildCoordinator(cfg, client, logger),
		n,
		logger,
	)
}
