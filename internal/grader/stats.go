package grader

import (
	"context"
	"sort"
	"sync"
	"time"
)

// call is one grading request as seen by Instrument.
type call struct {
	at         time.Time
	durationMs int64
	err        error
}

// StatsSnapshot aggregates the grading calls inside the window. Latency
// figures cover successful calls only; a request that times out after
// minutes would otherwise dominate the percentiles.
type StatsSnapshot struct {
	Count     int     `json:"count"`
	Failed    int     `json:"failed"`
	Retryable int     `json:"retryable"`
	ErrorRate float64 `json:"error_rate"`
	LastError string  `json:"last_error,omitempty"`

	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// LLMStats tracks recent grading calls within a rolling window.
type LLMStats struct {
	mu     sync.Mutex
	calls  []call
	maxAge time.Duration
}

func NewLLMStats(maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		calls:  make([]call, 0, 256),
		maxAge: maxAge,
	}
}

// Record adds one call. err is the grader's result; nil means success.
func (s *LLMStats) Record(durationMs int64, err error) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.calls = append(s.calls, call{at: now, durationMs: durationMs, err: err})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	var snap StatsSnapshot
	values := make([]int64, 0, len(s.calls))
	var sum int64
	for _, c := range s.calls {
		if c.err != nil {
			snap.Failed++
			if IsRetryable(c.err) {
				snap.Retryable++
			}
			snap.LastError = truncate(c.err.Error(), 200)
			continue
		}
		values = append(values, c.durationMs)
		sum += c.durationMs
	}
	if total := len(s.calls); total > 0 {
		snap.ErrorRate = float64(snap.Failed) / float64(total)
	}
	if len(values) == 0 {
		return snap
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *LLMStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	kept := s.calls[:0]
	for _, c := range s.calls {
		if !c.at.Before(cutoff) {
			kept = append(kept, c)
		}
	}
	s.calls = kept
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}

type instrumented struct {
	next  Grader
	stats *LLMStats
}

// Instrument records every call g makes along with its outcome.
func Instrument(g Grader, stats *LLMStats) Grader {
	return &instrumented{next: g, stats: stats}
}

func (i *instrumented) Grade(ctx context.Context, system, payload string) (string, error) {
	start := time.Now()
	out, err := i.next.Grade(ctx, system, payload)
	i.stats.Record(time.Since(start).Milliseconds(), err)
	return out, err
}
