package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/ai"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/coordinator"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Config is the root configuration for the lead analyzer.
type Config struct {
	Inference    InferenceConfig
	Analysis     coordinator.Options
	RateLimit    RateLimitConfig
	Store        StoreConfig
	Filters      FilterConfig
	Notification NotificationConfig
	Watch        WatchConfig
	Profile      model.BuyerProfile
}

// InferenceConfig selects and tunes the model endpoint.
type InferenceConfig struct {
	Provider     string // "ollama" or "openai"
	BaseURL      string
	Model        string
	APIKey       string        // expanded from env var by Load
	Timeout      time.Duration // per-call deadline, zero disables it
	ProbeRetries int
	Batch        model.GenerateOptions
	Single       model.GenerateOptions
}

// RateLimitConfig spaces outbound generation calls.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// StoreConfig locates the company catalog.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// FilterConfig narrows the catalog before a run. Empty lists match everything.
type FilterConfig struct {
	Industries        []string `yaml:"industries"`
	Locations         []string `yaml:"locations"`
	ExcludeIndustries []string `yaml:"exclude_industries"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	TopN       int    `yaml:"top_n"`
}

// WatchConfig controls periodic re-analysis.
type WatchConfig struct {
	Interval time.Duration
}

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	defaultOllamaURL   = "http://localhost:11434"
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultModel       = "llama3"
	defaultTimeout     = 120 * time.Second
	defaultProbeRetry  = 2
	defaultStorePath   = "companies.db"
	defaultTopN        = 5
	defaultWatchPeriod = time.Hour
	slackWebhookPrefix = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Inference    rawInferenceConfig `yaml:"inference"`
	Analysis     rawAnalysisConfig  `yaml:"analysis"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Store        StoreConfig        `yaml:"store"`
	Filters      FilterConfig       `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
	Watch        rawWatchConfig     `yaml:"watch"`
	Profile      model.BuyerProfile `yaml:"profile"`
}

type rawInferenceConfig struct {
	Provider     string              `yaml:"provider"`
	BaseURL      string              `yaml:"base_url"`
	Model        string              `yaml:"model"`
	APIKey       string              `yaml:"api_key"`
	Timeout      string              `yaml:"timeout"`
	ProbeRetries *int                `yaml:"probe_retries"`
	Batch        rawGenerationConfig `yaml:"batch"`
	Single       rawGenerationConfig `yaml:"single"`
}

// rawGenerationConfig overrides individual fields of a generation preset.
type rawGenerationConfig struct {
	Temperature   *float64 `yaml:"temperature"`
	TopP          *float64 `yaml:"top_p"`
	MaxTokens     int      `yaml:"max_tokens"`
	RepeatPenalty *float64 `yaml:"repeat_penalty"`
	Stop          []string `yaml:"stop"`
}

type rawAnalysisConfig struct {
	SmallBatchLimit     int `yaml:"small_batch_limit"`
	BatchSize           int `yaml:"batch_size"`
	FallbackConcurrency int `yaml:"fallback_concurrency"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawWatchConfig struct {
	Interval string `yaml:"interval"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file next to the config, or in the working directory, is loaded first
// so ${VAR} references can be satisfied from it. Variables already set win.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout, err := parseDuration("inference.timeout", raw.Inference.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay, 0)
	if err != nil {
		return nil, err
	}
	interval, err := parseDuration("watch.interval", raw.Watch.Interval, defaultWatchPeriod)
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(strings.TrimSpace(raw.Inference.Provider))
	if provider == "" {
		provider = ProviderOllama
	}
	baseURL := raw.Inference.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL(provider)
	}
	modelName := raw.Inference.Model
	if modelName == "" {
		modelName = defaultModel
	}
	probeRetries := defaultProbeRetry
	if raw.Inference.ProbeRetries != nil {
		probeRetries = *raw.Inference.ProbeRetries
	}

	defaults := coordinator.DefaultOptions()
	analysis := coordinator.Options{
		SmallBatchLimit:     orDefault(raw.Analysis.SmallBatchLimit, defaults.SmallBatchLimit),
		BatchSize:           orDefault(raw.Analysis.BatchSize, defaults.BatchSize),
		FallbackConcurrency: orDefault(raw.Analysis.FallbackConcurrency, defaults.FallbackConcurrency),
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}
	if notification.TopN == 0 {
		notification.TopN = defaultTopN
	}

	storeCfg := raw.Store
	if storeCfg.Path == "" {
		storeCfg.Path = defaultStorePath
	}

	profile := raw.Profile
	if profile.CompanyName != "" || profile.Description != "" {
		profile = profile.WithDefaults()
	}

	cfg := &Config{
		Inference: InferenceConfig{
			Provider:     provider,
			BaseURL:      baseURL,
			Model:        modelName,
			APIKey:       raw.Inference.APIKey,
			Timeout:      timeout,
			ProbeRetries: probeRetries,
			Batch:        raw.Inference.Batch.apply(ai.BatchOptions()),
			Single:       raw.Inference.Single.apply(ai.SingleOptions()),
		},
		Analysis:     analysis,
		RateLimit:    RateLimitConfig{MinDelay: minDelay},
		Store:        storeCfg,
		Filters:      raw.Filters,
		Notification: notification,
		Watch:        WatchConfig{Interval: interval},
		Profile:      profile,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolvePath picks the config file location.
// Priority: explicit path > MALEAD_CONFIG env var > "./config.yaml"
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("MALEAD_CONFIG"); env != "" {
		return env
	}
	return "config.yaml"
}

func loadDotEnv(configPath string) error {
	candidates := []string{filepath.Join(filepath.Dir(configPath), ".env"), ".env"}
	seen := map[string]bool{}
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if err := godotenv.Load(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// expandEnv substitutes $VAR and ${VAR}. Positional forms such as the "$10M"
// in a budget range are left as written.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if name != "" && name[0] >= '0' && name[0] <= '9' {
			return "$" + name
		}
		return os.Getenv(name)
	})
}

func (g rawGenerationConfig) apply(opts model.GenerateOptions) model.GenerateOptions {
	if g.Temperature != nil {
		opts.Temperature = *g.Temperature
	}
	if g.TopP != nil {
		opts.TopP = *g.TopP
	}
	if g.MaxTokens > 0 {
		opts.MaxTokens = g.MaxTokens
		opts.NumPredict = g.MaxTokens
	}
	if g.RepeatPenalty != nil {
		opts.RepeatPenalty = *g.RepeatPenalty
	}
	if g.Stop != nil {
		opts.Stop = g.Stop
	}
	return opts
}

func defaultBaseURL(provider string) string {
	if provider == ProviderOpenAI {
		return defaultOpenAIURL
	}
	return defaultOllamaURL
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, value, err)
	}
	return d, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	switch cfg.Inference.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("inference.provider must be %q or %q, got %q", ProviderOllama, ProviderOpenAI, cfg.Inference.Provider)
	}
	if cfg.Inference.Provider == ProviderOpenAI && cfg.Inference.APIKey == "" {
		return fmt.Errorf("inference.api_key is required when provider is %q", ProviderOpenAI)
	}
	if cfg.Inference.Timeout < 0 {
		return fmt.Errorf("inference.timeout must not be negative, got %v", cfg.Inference.Timeout)
	}
	if cfg.Inference.ProbeRetries < 0 {
		return fmt.Errorf("inference.probe_retries must not be negative, got %d", cfg.Inference.ProbeRetries)
	}

	if cfg.Analysis.SmallBatchLimit < 1 {
		return fmt.Errorf("analysis.small_batch_limit must be at least 1, got %d", cfg.Analysis.SmallBatchLimit)
	}
	if cfg.Analysis.BatchSize < 1 {
		return fmt.Errorf("analysis.batch_size must be at least 1, got %d", cfg.Analysis.BatchSize)
	}
	if cfg.Analysis.FallbackConcurrency < 1 {
		return fmt.Errorf("analysis.fallback_concurrency must be at least 1, got %d", cfg.Analysis.FallbackConcurrency)
	}

	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}
	if cfg.Notification.TopN < 0 {
		return fmt.Errorf("notification.top_n must not be negative, got %d", cfg.Notification.TopN)
	}

	if cfg.Profile.CompanyName != "" || cfg.Profile.Description != "" {
		if err := cfg.Profile.Validate(); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}

	return nil
}
