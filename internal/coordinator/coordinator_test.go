package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/ai"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// --- Fakes ---

// scriptedClient is a model.InferenceClient whose batch and single replies
// are supplied by the test.
type scriptedClient struct {
	pingErr error
	batch   func(ctx context.Context, prompt string) (string, error)
	single  func(ctx context.Context, prompt string) (string, error)

	pings    atomic.Int32
	batches  atomic.Int32
	singles  atomic.Int32
	inFlight atomic.Int32
	maxInFl  atomic.Int32
}

func (c *scriptedClient) Ping(ctx context.Context) error {
	c.pings.Add(1)
	return c.pingErr
}

func (c *scriptedClient) Generate(ctx context.Context, prompt string, _ model.GenerateOptions) (string, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		cur := c.maxInFl.Load()
		if n <= cur || c.maxInFl.CompareAndSwap(cur, n) {
			break
		}
	}

	if strings.Contains(prompt, `"analyses"`) {
		c.batches.Add(1)
		return c.batch(ctx, prompt)
	}
	c.singles.Add(1)
	return c.single(ctx, prompt)
}

func (c *scriptedClient) generateCalls() int {
	return int(c.batches.Load() + c.singles.Load())
}

var idPattern = regexp.MustCompile(`\[id: ([^\]]+)\]`)

// echoBatch answers a batch prompt with one entry per company ID it lists.
func echoBatch(_ context.Context, prompt string) (string, error) {
	type entry struct {
		CompanyID string `json:"companyId"`
		Score     int    `json:"score"`
	}
	var out struct {
		Analyses []entry `json:"analyses"`
	}
	for _, m := range idPattern.FindAllStringSubmatch(prompt, -1) {
		out.Analyses = append(out.Analyses, entry{CompanyID: m[1], Score: 70})
	}
	b, err := json.Marshal(out)
	return "Analysis follows.\n" + string(b), err
}

func failBatch(context.Context, string) (string, error) {
	return "", &model.EndpointError{StatusCode: 500}
}

func okSingle(context.Context, string) (string, error) {
	return `{"score": 61, "reasoning": "ok"}`, nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCoordinator(client *scriptedClient) *Coordinator {
	prompts := ai.NewPromptBuilder()
	return New(
		client,
		ai.NewBatchAnalyzer(client, prompts, ai.BatchOptions(), discardLogger()),
		ai.NewIndividualAnalyzer(client, prompts, ai.SingleOptions(), discardLogger()),
		DefaultOptions(),
		discardLogger(),
	)
}

func makeCompanies(n int) []model.Company {
	companies := make([]model.Company, n)
	for i := range companies {
		companies[i] = model.Company{
			ID:       fmt.Sprintf("co-%02d", i+1),
			Name:     fmt.Sprintf("Company %02d", i+1),
			Industry: "Software",
			Location: "Austin",
		}
	}
	return companies
}

func acme() model.BuyerProfile {
	return model.BuyerProfile{CompanyName: "Acme", Description: "B2B SaaS"}
}

type progressLog struct {
	mu     sync.Mutex
	events []model.Progress
}

func (p *progressLog) record(ev model.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

// --- Tests ---

func TestPartition(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{3, []int{3}},
		{8, []int{8}},
		{9, []int{5, 4}},
		{12, []int{5, 5, 2}},
		{13, []int{5, 5, 3}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			parts := Partition(makeCompanies(tt.n), 8, 5)
			var sizes []int
			for _, p := range parts {
				sizes = append(sizes, len(p))
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	companies := makeCompanies(12)
	var flat []model.Company
	for _, p := range Partition(companies, 8, 5) {
		flat = append(flat, p...)
	}
	assert.Equal(t, companies, flat)
}

func TestRun_ConnectivityFailure(t *testing.T) {
	for name, pingErr := range map[string]error{
		"typed": &model.ConnectivityError{Endpoint: "http://localhost:11434", Err: errors.New("connection refused")},
		"plain": errors.New("dial tcp: connection refused"),
	} {
		t.Run(name, func(t *testing.T) {
			client := &scriptedClient{pingErr: pingErr, batch: echoBatch, single: okSingle}
			coord := newCoordinator(client)

			report, err := coord.Run(context.Background(), acme(), makeCompanies(4), nil)

			var connErr *model.ConnectivityError
			require.ErrorAs(t, err, &connErr)
			require.NotNil(t, report)
			assert.Equal(t, StatusFailed, report.Status)
			assert.Empty(t, report.Results)
			assert.Equal(t, 0, client.generateCalls())
			assert.Equal(t, StateFailed, coord.State())
		})
	}
}

func TestRun_ProgressAcrossSubBatches(t *testing.T) {
	client := &scriptedClient{batch: echoBatch, single: okSingle}
	companies := makeCompanies(13)
	var progress progressLog

	report, err := newCoordinator(client).Run(context.Background(), acme(), companies, progress.record)
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, report.Status)
	assert.Equal(t, []model.Progress{
		{Current: 0, Total: 13},
		{Current: 5, Total: 13},
		{Current: 10, Total: 13},
		{Current: 13, Total: 13},
		{Current: 0, Total: 0},
	}, progress.events)

	assert.Len(t, report.Results, 13)
	for _, c := range companies {
		assert.Equal(t, 70, report.Results[c.ID].Score, c.ID)
	}
	assert.Len(t, report.SubBatches, 3)
	assert.Empty(t, report.Fallback)
	assert.EqualValues(t, 3, client.batches.Load())
	assert.EqualValues(t, 0, client.singles.Load())
	assert.NotEmpty(t, report.RunID)
}

func TestRun_UnparseableBatchDegrades(t *testing.T) {
	client := &scriptedClient{
		batch:  func(context.Context, string) (string, error) { return "I am not sure how to answer.", nil },
		single: func(context.Context, string) (string, error) { return "still no JSON here", nil },
	}
	companies := []model.Company{{ID: "1", Name: "Foo Corp"}}

	report, err := newCoordinator(client).Run(context.Background(), acme(), companies, nil)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	got := report.Results["1"]
	assert.Equal(t, 50, got.Score)
	assert.Contains(t, got.Reasoning, "failed")
	assert.Equal(t, model.ComplexityUnknown, got.IntegrationComplexity)
	assert.Equal(t, []string{"1"}, report.Fallback)
	assert.Equal(t, []string{"1"}, report.Degraded)
	require.Len(t, report.SubBatches, 1)
	assert.True(t, report.SubBatches[0].Fallback)

	var parseErr *model.ParseError
	assert.ErrorAs(t, report.SubBatches[0].Err, &parseErr)
}

func TestRun_UnmatchedCompanyStaysAbsent(t *testing.T) {
	client := &scriptedClient{
		batch: func(context.Context, string) (string, error) {
			return `{"analyses":[{"companyName":"Foo Corp","score":95},{"companyName":"Globex","score":10}]}`, nil
		},
		single: okSingle,
	}
	companies := []model.Company{{ID: "1", Name: "Foo Corp"}, {ID: "2", Name: "Bar Inc"}}

	report, err := newCoordinator(client).Run(context.Background(), acme(), companies, nil)
	require.NoError(t, err)

	assert.Equal(t, 95, report.Results["1"].Score)
	_, ok := report.Results["2"]
	assert.False(t, ok)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "Globex", report.Unmatched[0].Name)
	assert.EqualValues(t, 0, client.singles.Load())
}

func TestRun_FallbackConcurrencyIsCapped(t *testing.T) {
	client := &scriptedClient{
		batch: failBatch,
		single: func(ctx context.Context, p string) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return okSingle(ctx, p)
		},
	}
	var progress progressLog

	report, err := newCoordinator(client).Run(context.Background(), acme(), makeCompanies(7), progress.record)
	require.NoError(t, err)

	assert.Len(t, report.Results, 7)
	assert.Len(t, report.Fallback, 7)
	assert.Empty(t, report.Degraded)
	assert.EqualValues(t, 7, client.singles.Load())
	assert.LessOrEqual(t, client.maxInFl.Load(), int32(3))

	want := []model.Progress{{Current: 0, Total: 7}}
	for i := 1; i <= 7; i++ {
		want = append(want, model.Progress{Current: i, Total: 7})
	}
	want = append(want, model.Progress{})
	assert.Equal(t, want, progress.events)
}

func TestRun_OnlyFailedSubBatchDegrades(t *testing.T) {
	var calls atomic.Int32
	client := &scriptedClient{
		batch: func(ctx context.Context, p string) (string, error) {
			if calls.Add(1) == 2 {
				return failBatch(ctx, p)
			}
			return echoBatch(ctx, p)
		},
		single: okSingle,
	}
	companies := makeCompanies(10)

	report, err := newCoordinator(client).Run(context.Background(), acme(), companies, nil)
	require.NoError(t, err)

	assert.Len(t, report.Results, 10)
	for _, c := range companies[:5] {
		assert.Equal(t, 70, report.Results[c.ID].Score)
	}
	for _, c := range companies[5:] {
		assert.Equal(t, 61, report.Results[c.ID].Score)
	}
	assert.Len(t, report.Fallback, 5)
	assert.False(t, report.SubBatches[0].Fallback)
	assert.True(t, report.SubBatches[1].Fallback)
}

func TestRun_EmptyCompanyList(t *testing.T) {
	client := &scriptedClient{batch: echoBatch, single: okSingle}
	var progress progressLog

	report, err := newCoordinator(client).Run(context.Background(), acme(), nil, progress.record)
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, report.Status)
	assert.Empty(t, report.Results)
	assert.EqualValues(t, 1, client.pings.Load())
	assert.Equal(t, 0, client.generateCalls())
	assert.Equal(t, []model.Progress{{}, {}}, progress.events)
}

func TestRun_RejectsOverlappingRun(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	client := &scriptedClient{
		batch: func(ctx context.Context, p string) (string, error) {
			once.Do(func() { close(entered) })
			<-release
			return echoBatch(ctx, p)
		},
		single: okSingle,
	}
	coord := newCoordinator(client)

	done := make(chan error, 1)
	go func() {
		_, err := coord.Run(context.Background(), acme(), makeCompanies(2), nil)
		done <- err
	}()

	<-entered
	_, err := coord.Run(context.Background(), acme(), makeCompanies(2), nil)
	assert.ErrorIs(t, err, model.ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)

	// The coordinator is free again once the first run finished.
	_, err = coord.Run(context.Background(), acme(), makeCompanies(1), nil)
	assert.NoError(t, err)
}

func TestRun_CanceledBetweenSubBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &scriptedClient{
		batch: func(ctx context.Context, p string) (string, error) {
			cancel()
			return "", ctx.Err()
		},
		single: okSingle,
	}

	report, err := newCoordinator(client).Run(ctx, acme(), makeCompanies(10), nil)

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, StatusCanceled, report.Status)
	assert.EqualValues(t, 1, client.batches.Load())
	assert.EqualValues(t, 0, client.singles.Load())
}
