package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/rank"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends ranked leads to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	topN       int
	pause      time.Duration // gap between consecutive messages
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts the first topN leads to Slack,
// one message each. topN <= 0 posts all of them.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, topN int, logger *slog.Logger) *SlackNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		topN:       topN,
		pause:      500 * time.Millisecond,
		logger:     logger,
	}
}

// Notify sends each lead as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(leads []model.RankedCompany) error {
	leads = rank.Top(leads, s.topN)
	if len(leads) == 0 {
		return nil
	}

	failures := 0
	for i, l := range leads {
		if i > 0 {
			time.Sleep(s.pause)
		}

		if err := s.sendMessage(l); err != nil {
			s.logger.Error("slack notification failed", "company", l.Name, "rank", l.Rank, "error", err)
			failures++
		}
	}

	sent := len(leads) - failures
	if failures == len(leads) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(l model.RankedCompany) error {
	body, err := json.Marshal(buildPayload(l))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "company", l.Name, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "company", l.Name)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a synthetic lead to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	lead := model.RankedCompany{
		Company: model.Company{
			ID:       "test-001",
			Name:     "Integration Test Co",
			Industry: "Software",
			Location: "Everywhere",
			Revenue:  "$10M",
		},
		Rank: 1,
		Analysis: &model.AnalysisResult{
			Score:                 88,
			Reasoning:             "Test notification. If you can read this, the integration works.",
			Synergies:             []string{"Verified webhook"},
			Risks:                 []string{"None"},
			IntegrationComplexity: model.ComplexityLow,
			TimeToValue:           "Immediate",
			StrategicValue:        "Connectivity check",
		},
	}
	return n.Notify([]model.RankedCompany{lead})
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "_none_"
	}
	return "• " + strings.Join(items, "\n• ")
}

func buildPayload(l model.RankedCompany) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("#%d %s", l.Rank, l.Name)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Industry:*\n" + l.Industry},
				{Type: "mrkdwn", Text: "*Location:*\n" + l.Location},
			},
		},
	}

	if l.Analysis == nil {
		blocks = append(blocks,
			slackBlock{Type: "section", Text: &slackText{Type: "mrkdwn", Text: "_Not analyzed_"}},
			slackBlock{Type: "divider"},
		)
		return slackPayload{Blocks: blocks}
	}

	a := l.Analysis
	score := fmt.Sprintf("*Score:*\n%d/100 (%s)", a.Score, rank.Label(a.Score))
	if a.Degraded {
		score += " ⚠️ estimate"
	}
	blocks = append(blocks,
		slackBlock{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: score},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Integration:*\n%s, %s", a.IntegrationComplexity, a.TimeToValue)},
			},
		},
		slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: a.Reasoning},
		},
		slackBlock{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Synergies:*\n" + bulletList(a.Synergies)},
				{Type: "mrkdwn", Text: "*Risks:*\n" + bulletList(a.Risks)},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
