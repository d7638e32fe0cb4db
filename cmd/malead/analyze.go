package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/coordinator"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/pipeline"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/rank"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/tui"
)

var (
	analyzeCompanies string
	analyzeProfile   string
	analyzeTUI       bool
	analyzeJSON      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the catalog once and print ranked leads",
	Long:  "Scores every company that passes the configured filters against the buyer profile, prints the ranked leads and sends notifications.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCompanies, "companies", "", "YAML file of companies to analyze instead of the store")
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "", "YAML file with the buyer profile (default: profile section of config)")
	analyzeCmd.Flags().BoolVar(&analyzeTUI, "tui", false, "show live progress and browse results interactively")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the ranked leads as JSON")
	analyzeCmd.MarkFlagsMutuallyExclusive("tui", "json")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	if analyzeTUI {
		// Log output corrupts the progress display.
		logger = discardLogger()
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	profile, err := loadProfile(cfg, analyzeProfile)
	if err != nil {
		logger.Error("invalid buyer profile", "error", err)
		os.Exit(1)
	}

	companies, release, err := openStore(cmd, cfg, analyzeCompanies)
	if err != nil {
		logger.Error("failed to open companies", "error", err)
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

	var res *pipeline.Result
	if analyzeTUI {
		res, err = tui.RunProgress(ctx, fmt.Sprintf("Analyzing companies for %s...", profile.CompanyName), p.Run)
	} else {
		res, err = p.Run(ctx, func(pr model.Progress) {
			if pr.Total > 0 {
				logger.Debug("progress", "current", pr.Current, "total", pr.Total)
			}
		})
	}

	if res == nil || res.Ranked == nil {
		if err == nil {
			err = errors.New("analysis produced no result")
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case analyzeTUI:
		if tuiErr := tui.RunBrowser(res.Ranked); tuiErr != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", tuiErr)
		}
	case analyzeJSON:
		if jsonErr := writeJSON(out, res); jsonErr != nil {
			return jsonErr
		}
	default:
		printRanked(out, res)
	}

	// Ranking succeeded; only the notification failed.
	return err
}

type analyzeOutput struct {
	Report *coordinator.Report   `json:"report"`
	Leads  []model.RankedCompany `json:"leads"`
}

func writeJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analyzeOutput{Report: res.Report, Leads: res.Ranked})
}

func printRanked(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "%-5s %-30s %-20s %-6s %s\n", "Rank", "Company", "Industry", "Score", "Fit")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, l := range res.Ranked {
		score, fit := "--", "not analyzed"
		if a := l.Analysis; a != nil {
			score = fmt.Sprintf("%d", a.Score)
			fit = rank.Label(a.Score)
			if a.Degraded {
				fit += " (degraded)"
			}
		}
		fmt.Fprintf(w, "%-5d %-30s %-20s %-6s %s\n", l.Rank, truncate(l.Name, 30), truncate(l.Industry, 20), score, fit)
	}

	s := rank.Summarize(res.Ranked)
	fmt.Fprintf(w, "\nTotal: %d companies (%d analyzed, %d degraded), average score %.1f\n",
		s.Total, s.Analyzed, s.Degraded, s.AverageScore)
	if r := res.Report; r != nil {
		fmt.Fprintf(w, "Run %s %s in %s\n", r.RunID, r.Status, r.Duration.Round(time.Millisecond))
	}
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
