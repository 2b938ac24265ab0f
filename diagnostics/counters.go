package diagnostics

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Counters is an in-memory Sink that tallies every diagnostic it receives.
type Counters struct {
	loaded           atomic.Int64
	skipped          atomic.Int64
	missing          atomic.Int64
	invalidSelection atomic.Int64
	degenerate       atomic.Int64

	mu      sync.Mutex
	reasons []SkipReason
}

// NewCounters returns a zeroed Counters.
func NewCounters() *Counters {
	return &Counters{}
}

// Snapshot is a point-in-time copy of a Counters.
type Snapshot struct {
	Loaded           int
	Skipped          int
	MissingSource    int
	InvalidSelection int
	Degenerate       int
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Loaded:           int(c.loaded.Load()),
		Skipped:          int(c.skipped.Load()),
		MissingSource:    int(c.missing.Load()),
		InvalidSelection: int(c.invalidSelection.Load()),
		Degenerate:       int(c.degenerate.Load()),
	}
}

// Reasons returns a copy of every skip reason received so far.
func (c *Counters) Reasons() []SkipReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SkipReason, len(c.reasons))
	copy(out, c.reasons)
	return out
}

// Loaded adds count to the loaded total.
func (c *Counters) Loaded(_ context.Context, count int) {
	c.loaded.Add(int64(count))
}

// Skipped records one dropped record.
func (c *Counters) Skipped(_ context.Context, reason SkipReason) {
	c.skipped.Inc()
	c.mu.Lock()
	c.reasons = append(c.reasons, reason)
	c.mu.Unlock()
}

// MissingSource records one unreadable source.
func (c *Counters) MissingSource(context.Context, string, error) {
	c.missing.Inc()
}

// InvalidSelection records one rejected index.
func (c *Counters) InvalidSelection(context.Context, int, int) {
	c.invalidSelection.Inc()
}

// DegenerateOrientation records one fallback orientation.
func (c *Counters) DegenerateOrientation(context.Context, int) {
	c.degenerate.Inc()
}
