// Package diagnostics carries the non-fatal signals raised while loading and converting camera
// poses: skipped records, missing sources, invalid selections and degenerate orientations.
package diagnostics

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingSource is reported when the pose document cannot be read.
	ErrMissingSource = errors.New("pose source missing or unreadable")
	// ErrMalformedRecord is reported when a candidate record fails a field count or numeric parse check.
	ErrMalformedRecord = errors.New("malformed pose record")
	// ErrInvalidSelection is reported when an index falls outside the loaded set.
	ErrInvalidSelection = errors.New("selection out of range")
	// ErrDegenerateOrientation is reported when forward and up cannot fix a roll.
	ErrDegenerateOrientation = errors.New("degenerate orientation")
)

// SkipReason describes one candidate record that was dropped.
type SkipReason struct {
	// Offset is the byte offset of the candidate in the source document.
	Offset int
	ID     string
	Label  string
	Err    error
}

func (r SkipReason) Error() string {
	return fmt.Sprintf("record %q (id %s) at offset %d: %v", r.Label, r.ID, r.Offset, r.Err)
}

func (r SkipReason) Unwrap() error {
	return r.Err
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Loaded(ctx context.Context, count int)
	Skipped(ctx context.Context, reason SkipReason)
	MissingSource(ctx context.Context, path string, err error)
	InvalidSelection(ctx context.Context, index, count int)
	DegenerateOrientation(ctx context.Context, id int)
}

// Noop discards every diagnostic.
var Noop Sink = noop{}

type noop struct{}

func (noop) Loaded(context.Context, int)                 {}
func (noop) Skipped(context.Context, SkipReason)         {}
func (noop) MissingSource(context.Context, string, error) {}
func (noop) InvalidSelection(context.Context, int, int)  {}
func (noop) DegenerateOrientation(context.Context, int)  {}

type multi []Sink

// Multi fans every diagnostic out to all of the given sinks, in order. Nil sinks are dropped.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Loaded(ctx context.Context, count int) {
	for _, s := range m {
		s.Loaded(ctx, count)
	}
}

func (m multi) Skipped(ctx context.Context, reason SkipReason) {
	for _, s := range m {
		s.Skipped(ctx, reason)
	}
}

func (m multi) MissingSource(ctx context.Context, path string, err error) {
	for _, s := range m {
		s.MissingSource(ctx, path, err)
	}
}

func (m multi) InvalidSelection(ctx context.Context, index, count int) {
	for _, s := range m {
		s.InvalidSelection(ctx, index, count)
	}
}

func (m multi) DegenerateOrientation(ctx context.Context, id int) {
	for _, s := range m {
		s.DegenerateOrientation(ctx, id)
	}
}
