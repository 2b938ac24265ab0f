// Package poseset owns a loaded sequence of camera poses and applies selected poses to a camera.
package poseset

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/num/quat"

	"github.com/gsplat-tools/camloader/diagnostics"
	"github.com/gsplat-tools/camloader/logging"
	"github.com/gsplat-tools/camloader/posefile"
	"github.com/gsplat-tools/camloader/spatialmath"
	"github.com/gsplat-tools/camloader/transform"
)

// Camera is anything with a settable world pose.
type Camera interface {
	SetWorldPosition(position r3.Vector)
	SetWorldOrientation(orientation quat.Number)
}

// Snapshot is one immutable loaded sequence.
type Snapshot struct {
	entries  []posefile.PoseEntry
	summary  posefile.Summary
	source   string
	loadedAt time.Time
}

var emptySnapshot = &Snapshot{}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// At returns the entry at index, or false when index is outside [0, Len).
func (s *Snapshot) At(index int) (posefile.PoseEntry, bool) {
	if index < 0 || index >= len(s.entries) {
		return posefile.PoseEntry{}, false
	}
	return s.entries[index], true
}

// Entries returns a copy of every entry in document order.
func (s *Snapshot) Entries() []posefile.PoseEntry {
	out := make([]posefile.PoseEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Summary returns a copy of the extraction summary the snapshot was built from.
func (s *Snapshot) Summary() posefile.Summary {
	summary := s.summary
	summary.Reasons = append([]diagnostics.SkipReason(nil), s.summary.Reasons...)
	return summary
}

// Source returns the path the snapshot was loaded from, empty for in-memory documents.
func (s *Snapshot) Source() string {
	return s.source
}

// LoadedAt returns when the snapshot was built. It is zero for the initial empty snapshot.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Set holds the current Snapshot. Reloads build a new snapshot and swap it in whole, so a reader
// holding a snapshot never sees entries from two different loads.
type Set struct {
	logger    logging.Logger
	diag      diagnostics.Sink
	extractor *posefile.Extractor
	clock     clock.Clock

	current atomic.Pointer[Snapshot]
	reloads atomic.Int64
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithClock stamps snapshots with c instead of the wall clock.
func WithClock(c clock.Clock) SetOption {
	return func(s *Set) {
		s.clock = c
	}
}

// NewSet returns an empty Set. Diagnostics from loading, selection and conversion go to diag,
// which may be nil.
func NewSet(logger logging.Logger, diag diagnostics.Sink, opts ...SetOption) *Set {
	if diag == nil {
		diag = diagnostics.Noop
	}
	s := &Set{
		logger:    logger,
		diag:      diag,
		extractor: posefile.NewExtractor(logger.Sublogger("extract"), posefile.WithDiagnostics(diag)),
		clock:     clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(emptySnapshot)
	return s
}

// Snapshot returns the current loaded sequence.
func (s *Set) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reloads returns how many times the set has been replaced.
func (s *Set) Reloads() int {
	return int(s.reloads.Load())
}

// Reload replaces the set with the records in the file at path. An unreadable file replaces the
// set with an empty one.
func (s *Set) Reload(ctx context.Context, path string) *Snapshot {
	entries, summary := s.extractor.Load(ctx, path)
	return s.swap(entries, summary, path)
}

// ReloadBytes replaces the set with the records in data.
func (s *Set) ReloadBytes(ctx context.Context, data []byte) *Snapshot {
	entries, summary := s.extractor.Extract(ctx, data)
	return s.swap(entries, summary, "")
}

// Clear replaces the set with an empty one.
func (s *Set) Clear() {
	s.current.Store(emptySnapshot)
	s.reloads.Inc()
}

func (s *Set) swap(entries []posefile.PoseEntry, summary posefile.Summary, source string) *Snapshot {
	snap := &Snapshot{
		entries:  entries,
		summary:  summary,
		source:   source,
		loadedAt: s.clock.Now(),
	}
	s.current.Store(snap)
	s.reloads.Inc()
	s.logger.Debugw("pose set replaced", "source", source, "entries", len(entries), "skipped", summary.Skipped)
	return snap
}

// Select converts the entry at index. An index outside the loaded set reports InvalidSelection
// and returns false.
func (s *Set) Select(ctx context.Context, index int, cfg transform.ConversionConfig) (transform.EngineCameraPose, bool) {
	snap := s.Snapshot()
	entry, ok := snap.At(index)
	if !ok {
		s.diag.InvalidSelection(ctx, index, snap.Len())
		return transform.EngineCameraPose{}, false
	}
	pose := transform.Transform(entry, cfg)
	if pose.Degenerate {
		s.diag.DegenerateOrientation(ctx, entry.ID)
	}
	return pose, true
}

// Apply converts the entry at index and moves camera to it. Nothing is written to camera when
// index is out of range.
func (s *Set) Apply(ctx context.Context, index int, cfg transform.ConversionConfig, camera Camera) bool {
	pose, ok := s.Select(ctx, index, cfg)
	if !ok {
		return false
	}
	camera.SetWorldPosition(pose.Position)
	camera.SetWorldOrientation(pose.Orientation)
	return true
}

// Positions returns the engine position of every loaded entry, in order.
func (s *Set) Positions(cfg transform.ConversionConfig) []r3.Vector {
	snap := s.Snapshot()
	out := make([]r3.Vector, 0, snap.Len())
	for _, entry := range snap.entries {
		out = append(out, spatialmath.Hadamard(entry.Translation, cfg.AxisScale))
	}
	return out
}

// Poses converts every loaded entry.
func (s *Set) Poses(ctx context.Context, cfg transform.ConversionConfig) ([]transform.EngineCameraPose, error) {
	return transform.TransformAll(ctx, s.Snapshot().entries, cfg, s.diag)
}
