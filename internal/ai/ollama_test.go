package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

func makeTestServer(t *testing.T, statusCode int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaGenerate_Success(t *testing.T) {
	srv := makeTestServer(t, http.StatusOK, generateResponse{Response: `{"score": 80}`})

	client := NewOllamaClient(srv.URL, "llama3", 0, srv.Client())
	got, err := client.Generate(context.Background(), "analyze this", SingleOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"score": 80}` {
		t.Errorf("got %q, want raw response text", got)
	}
}

func TestOllamaGenerate_SendsRequestBody(t *testing.T) {
	var gotPath string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL+"/", "llama3", 0, srv.Client())
	if _, err := client.Generate(context.Background(), "the prompt", BatchOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/generate" {
		t.Errorf("path = %q, want /api/generate", gotPath)
	}
	if gotReq.Model != "llama3" || gotReq.Prompt != "the prompt" {
		t.Errorf("model/prompt = %q/%q", gotReq.Model, gotReq.Prompt)
	}
	if gotReq.Stream {
		t.Error("stream should be false")
	}
	if gotReq.Options.Temperature != 0.5 || gotReq.Options.NumPredict != 2000 {
		t.Errorf("options = %+v, want batch preset", gotReq.Options)
	}
	if len(gotReq.Options.Stop) != 2 {
		t.Errorf("stop = %v, want 2 stop sequences", gotReq.Options.Stop)
	}
}

func TestOllamaGenerate_HTTPErrorIsEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama3", 0, srv.Client())
	_, err := client.Generate(context.Background(), "p", SingleOptions())

	var endpointErr *model.EndpointError
	if !errors.As(err, &endpointErr) {
		t.Fatalf("expected *model.EndpointError, got %v", err)
	}
	if endpointErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", endpointErr.StatusCode)
	}
	if endpointErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", endpointErr.RetryAfter)
	}
}

func TestOllamaGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama3", 20*time.Millisecond, srv.Client())
	_, err := client.Generate(context.Background(), "p", SingleOptions())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestOllamaPing(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama3", 0, srv.Client())
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if gotPath != "/api/tags" {
		t.Errorf("path = %q, want /api/tags", gotPath)
	}
}

func TestOllamaPing_FailureIsConnectivityError(t *testing.T) {
	failing := makeTestServer(t, http.StatusInternalServerError, map[string]string{"error": "down"})
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	for name, url := range map[string]string{"status": failing.URL, "unreachable": closedURL} {
		t.Run(name, func(t *testing.T) {
			client := NewOllamaClient(url, "llama3", 0, nil)
			err := client.Ping(context.Background())
			var connErr *model.ConnectivityError
			if !errors.As(err, &connErr) {
				t.Fatalf("expected *model.ConnectivityError, got %v", err)
			}
		})
	}
}

// newHangingServer answers only after delay or when the client goes away.
func newHangingServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaPing_HungServerTimesOut(t *testing.T) {
	srv := newHangingServer(t, 2*time.Second)

	client := NewOllamaClient(srv.URL, "llama3", 100*time.Millisecond, nil)
	start := time.Now()
	err := client.Ping(context.Background())
	elapsed := time.Since(start)

	var connErr *model.ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *model.ConnectivityError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("Ping took %v, want about 100ms", elapsed)
	}
}

func TestProbeTimeout(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    time.Duration
	}{
		{0, maxProbeTimeout},
		{100 * time.Millisecond, 100 * time.Millisecond},
		{2 * time.Minute, maxProbeTimeout},
	}
	for _, tt := range tests {
		if got := probeTimeout(tt.timeout); got != tt.want {
			t.Errorf("probeTimeout(%v) = %v, want %v", tt.timeout, got, tt.want)
		}
	}
}
