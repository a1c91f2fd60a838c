// Package stats keeps rolling aggregates over recent parses.
package stats

import (
	"slices"
	"sync"
	"time"
)

// Sample describes one finished parse.
type Sample struct {
	Profile    string
	DurationMs int64
	Nodes      int // Structural nodes below the document root
	Failed     bool
}

type entry struct {
	at time.Time
	Sample
}

// Snapshot is a point-in-time aggregate of the samples inside the window.
type Snapshot struct {
	Count     int            `json:"count"`
	Failed    int            `json:"failed"`
	Nodes     int            `json:"nodes"`
	MinMs     int64          `json:"min_ms"`
	MaxMs     int64          `json:"max_ms"`
	AvgMs     float64        `json:"avg_ms"`
	P50Ms     float64        `json:"p50_ms"`
	P95Ms     float64        `json:"p95_ms"`
	P99Ms     float64        `json:"p99_ms"`
	ByProfile map[string]int `json:"by_profile"`
}

// ParseStats tracks parse latencies and tree sizes within a rolling window.
// It is safe for concurrent use.
type ParseStats struct {
	mu      sync.Mutex
	entries []entry
	window  time.Duration
	now     func() time.Time
}

func NewParseStats(window time.Duration) *ParseStats {
	if window <= 0 {
		window = time.Hour
	}
	return &ParseStats{
		entries: make([]entry, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds a sample. Negative durations are stored as zero.
func (s *ParseStats) Record(sm Sample) {
	if sm.DurationMs < 0 {
		sm.DurationMs = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.entries = append(s.entries, entry{at: now, Sample: sm})
}

// Snapshot aggregates the samples still inside the window. Failed parses
// count toward Count and Failed but not toward latency or node totals.
func (s *ParseStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	snap := Snapshot{ByProfile: map[string]int{}}
	if len(s.entries) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.entries))
	var sum int64
	for _, e := range s.entries {
		snap.Count++
		if e.Profile != "" {
			snap.ByProfile[e.Profile]++
		}
		if e.Failed {
			snap.Failed++
			continue
		}
		snap.Nodes += e.Nodes
		values = append(values, e.DurationMs)
		sum += e.DurationMs
	}
	if len(values) == 0 {
		return snap
	}
	slices.Sort(values)

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.entries = slices.DeleteFunc(s.entries, func(e entry) bool {
		return e.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
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
