package ai

import (
	"context"
	"strconv"
	"time"
)

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// withDeadline bounds a single endpoint call. A zero timeout leaves ctx as is.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// maxProbeTimeout caps the liveness probe even when generation calls have
// no deadline.
const maxProbeTimeout = 10 * time.Second

// probeTimeout is the deadline for one liveness probe: the call timeout when
// it is shorter than maxProbeTimeout, otherwise maxProbeTimeout.
func probeTimeout(timeout time.Duration) time.Duration {
	if timeout > 0 && timeout < maxProbeTimeout {
		return timeout
	}
	return maxProbeTimeout
}

// truncate keeps error bodies readable in logs.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
