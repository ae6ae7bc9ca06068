// Package stats aggregates per-cycle detection metrics for the surface.
package stats

import (
	"sync"
	"time"

	"github.com/screensentry/platform/internal/match"
	"github.com/screensentry/platform/internal/ocr"
)

const (
	// MaxCycles is how many recent cycle records are retained.
	MaxCycles = 50
	// SampleCap bounds the debug sample of raw fragments.
	SampleCap = 20
	// EventBufferSize is the cycle event channel capacity.
	EventBufferSize = 100
)

// Cycle is the per-cycle report: sequence number, latency and matches.
type Cycle struct {
	Seq        int           `json:"seq"`
	Timestamp  time.Time     `json:"timestamp"`
	Elapsed    time.Duration `json:"elapsed"`
	MatchCount int           `json:"match_count"`
	Matches    []match.Match `json:"matches"`
	Skipped    bool          `json:"skipped,omitempty"`
}

// ElapsedMs returns the cycle latency in milliseconds.
func (c Cycle) ElapsedMs() float64 {
	return float64(c.Elapsed) / float64(time.Millisecond)
}

// Reporter stores recent cycle records and a capped debug sample of the
// raw fragments seen by the last cycle.
type Reporter struct {
	mu      sync.RWMutex
	cycles  []Cycle
	total   int
	sample  []ocr.Fragment
	eventCh chan Cycle
}

// NewReporter creates a stats reporter.
func NewReporter() *Reporter {
	return &Reporter{
		cycles:  make([]Cycle, 0, MaxCycles),
		eventCh: make(chan Cycle, EventBufferSize),
	}
}

// Record stores a cycle report and emits it to the surface.
func (r *Reporter) Record(c Cycle) {
	r.mu.Lock()
	r.total++
	c.Seq = r.total
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	r.cycles = append(r.cycles, c)
	if len(r.cycles) > MaxCycles {
		r.cycles = r.cycles[len(r.cycles)-MaxCycles:]
	}
	r.mu.Unlock()

	r.emit(c)
}

// Total returns the number of cycles recorded since start.
func (r *Reporter) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Last returns the most recent cycle record.
func (r *Reporter) Last() (Cycle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.cycles) == 0 {
		return Cycle{}, false
	}
	return r.cycles[len(r.cycles)-1], true
}

// Recent returns up to n most recent cycle records, oldest first.
func (r *Reporter) Recent(n int) []Cycle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n > len(r.cycles) {
		n = len(r.cycles)
	}
	out := make([]Cycle, n)
	copy(out, r.cycles[len(r.cycles)-n:])
	return out
}

// SetSample replaces the debug fragment sample, keeping at most SampleCap
// entries. The sample is discarded cycle data kept only for debugging.
func (r *Reporter) SetSample(fragments []ocr.Fragment) {
	if len(fragments) > SampleCap {
		fragments = fragments[:SampleCap]
	}
	cp := make([]ocr.Fragment, len(fragments))
	copy(cp, fragments)

	r.mu.Lock()
	r.sample = cp
	r.mu.Unlock()
}

// Sample returns a copy of the debug fragment sample.
func (r *Reporter) Sample() []ocr.Fragment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ocr.Fragment, len(r.sample))
	copy(out, r.sample)
	return out
}

// Events returns the channel of recorded cycles.
func (r *Reporter) Events() <-chan Cycle {
	return r.eventCh
}

// emit sends a cycle event without blocking the monitor loop.
func (r *Reporter) emit(c Cycle) {
	select {
	case r.eventCh <- c:
	default:
	}
}
