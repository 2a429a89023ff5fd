package grader

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLLMStats_SuccessPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(ms, nil)
	}

	snap := stats.Snapshot()
	want := StatsSnapshot{Count: 5, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496}
	if snap != want {
		t.Fatalf("got %+v, want %+v", snap, want)
	}
}

func TestLLMStats_FailuresKeptOutOfLatency(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(1000, nil)
	stats.Record(300000, errors.New("context deadline exceeded"))
	stats.Record(20, &RetryableError{StatusCode: 429, Message: "rate limited"})
	stats.Record(3000, nil)

	snap := stats.Snapshot()
	if snap.Count != 2 || snap.Failed != 2 || snap.Retryable != 1 {
		t.Fatalf("count/failed/retryable = %d/%d/%d, want 2/2/1", snap.Count, snap.Failed, snap.Retryable)
	}
	if snap.MaxMs != 3000 {
		t.Errorf("max = %d, failed call leaked into latency", snap.MaxMs)
	}
	if snap.ErrorRate != 0.5 {
		t.Errorf("error rate = %v, want 0.5", snap.ErrorRate)
	}
	if !strings.Contains(snap.LastError, "status 429") {
		t.Errorf("last error = %q", snap.LastError)
	}
}

func TestLLMStats_OnlyFailures(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(50, errors.New("boom"))

	snap := stats.Snapshot()
	if snap.Count != 0 || snap.Failed != 1 || snap.ErrorRate != 1 {
		t.Fatalf("got %+v", snap)
	}
	if snap.MinMs != 0 || snap.P99Ms != 0 {
		t.Errorf("latency should be empty, got %+v", snap)
	}
}

func TestLLMStats_PrunesExpiredCalls(t *testing.T) {
	stats := NewLLMStats(10 * time.Millisecond)
	stats.Record(100, nil)
	stats.Record(100, errors.New("old failure"))
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap != (StatsSnapshot{}) {
		t.Fatalf("expected empty snapshot after prune, got %+v", snap)
	}

	stats.Record(200, nil)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.Failed != 0 || snap.MinMs != 200 {
		t.Fatalf("got %+v", snap)
	}
}

func TestLLMStats_ClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(-10, nil)
	if snap := stats.Snapshot(); snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("got %+v", snap)
	}
}
