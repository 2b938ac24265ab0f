// Package posefile extracts camera pose records from the cameras.json documents written by
// structure-from-motion and Gaussian Splatting pipelines.
//
// The extractor does not parse the whole document. It scans for records of one fixed shape:
//
//	{"id": 0, "img_name": "00001", ..., "position": [x, y, z],
//	 "rotation": [[a, b, c], [d, e, f], [g, h, i]], ..., "fy": 1000.0, ...}
//
// Keys must appear in that relative order. Anything else in the record, or around it, is ignored.
package posefile

import (
	"context"
	"iter"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/gsplat-tools/camloader/diagnostics"
	"github.com/gsplat-tools/camloader/logging"
	"github.com/gsplat-tools/camloader/spatialmath"
)

// MaxDocumentSize is the default upper bound on the size of a document handed to an Extractor.
const MaxDocumentSize = 64 << 20

// ErrDocumentTooLarge is reported when a document exceeds the extractor's size limit.
var ErrDocumentTooLarge = errors.New("pose document too large")

// Gaps between anchored keys exclude braces so that a match never spans two records.
// RE2 matching is linear in the input, so untrusted documents cannot trigger runaway backtracking.
var (
	recordPattern = regexp.MustCompile(
		`\{\s*"id":\s*(\d+),\s*"img_name":\s*"([^"]+)"` +
			`[^{}]*?"position":\s*\[([^\[\]]*)\],\s*` +
			`"rotation":\s*\[\s*\[([^\[\]]*)\],\s*\[([^\[\]]*)\],\s*\[([^\[\]]*)\]\s*\]` +
			`[^{}]*?"fy":\s*([^,\s{}]+)[^{}]*\}`)

	widthPattern  = regexp.MustCompile(`"width":\s*(\d+)`)
	heightPattern = regexp.MustCompile(`"height":\s*(\d+)`)
	fxPattern     = regexp.MustCompile(`"fx":\s*([^,\s{}]+)`)
)

const (
	groupID = iota + 1
	groupLabel
	groupPosition
	groupRow0
	groupRow1
	groupRow2
	groupFy
)

// Summary describes the outcome of one extraction pass.
type Summary struct {
	Loaded        int
	Skipped       int
	Reasons       []diagnostics.SkipReason
	SourceMissing bool
}

// Extractor scans documents for pose records.
type Extractor struct {
	logger  logging.Logger
	diag    diagnostics.Sink
	maxSize int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDiagnostics sends skip, load and missing-source diagnostics to sink.
func WithDiagnostics(sink diagnostics.Sink) Option {
	return func(e *Extractor) {
		e.diag = sink
	}
}

// WithMaxDocumentSize overrides MaxDocumentSize.
func WithMaxDocumentSize(n int) Option {
	return func(e *Extractor) {
		e.maxSize = n
	}
}

// NewExtractor returns an Extractor that logs to logger.
func NewExtractor(logger logging.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		logger:  logger,
		diag:    diagnostics.Noop,
		maxSize: MaxDocumentSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// All returns the valid records of data in document order. The sequence is lazy: each record is
// matched only when the consumer asks for it. Ranging over it again rescans data from the start.
// Malformed records are reported to the diagnostics sink and left out.
func (e *Extractor) All(ctx context.Context, data []byte) iter.Seq[PoseEntry] {
	return func(yield func(PoseEntry) bool) {
		e.scan(ctx, data, e.diag, yield)
	}
}

// Extract collects every valid record of data.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]PoseEntry, Summary) {
	counters := diagnostics.NewCounters()
	var entries []PoseEntry
	e.scan(ctx, data, diagnostics.Multi(e.diag, counters), func(entry PoseEntry) bool {
		entries = append(entries, entry)
		return true
	})

	reasons := counters.Reasons()
	return entries, Summary{
		Loaded:  len(entries),
		Skipped: len(reasons),
		Reasons: reasons,
	}
}

func (e *Extractor) scan(ctx context.Context, data []byte, sink diagnostics.Sink, yield func(PoseEntry) bool) {
	if len(data) > e.maxSize {
		sink.Skipped(ctx, diagnostics.SkipReason{
			Err: errors.Wrapf(ErrDocumentTooLarge, "%d bytes exceeds limit of %d", len(data), e.maxSize),
		})
		sink.Loaded(ctx, 0)
		return
	}

	loaded := 0
	for offset := 0; offset < len(data); {
		rest := data[offset:]
		loc := recordPattern.FindSubmatchIndex(rest)
		if loc == nil {
			break
		}
		start := offset + loc[0]
		offset += loc[1]

		entry, err := parseRecord(rest, loc)
		if err != nil {
			sink.Skipped(ctx, diagnostics.SkipReason{
				Offset: start,
				ID:     group(rest, loc, groupID),
				Label:  group(rest, loc, groupLabel),
				Err:    err,
			})
			continue
		}

		loaded++
		if !yield(entry) {
			return
		}
	}

	e.logger.Debugw("pose scan complete", "bytes", len(data), "loaded", loaded)
	sink.Loaded(ctx, loaded)
}

func group(buf []byte, loc []int, n int) string {
	return string(buf[loc[2*n]:loc[2*n+1]])
}

// parseRecord builds an entry from one match. Either every required field parses or an error
// wrapping diagnostics.ErrMalformedRecord is returned.
func parseRecord(buf []byte, loc []int) (PoseEntry, error) {
	id, err := strconv.Atoi(group(buf, loc, groupID))
	if err != nil {
		return PoseEntry{}, malformed("id", err)
	}

	position, err := parseList(group(buf, loc, groupPosition), 3)
	if err != nil {
		return PoseEntry{}, malformed("position", err)
	}

	var rows [3]r3.Vector
	for i, g := range []int{groupRow0, groupRow1, groupRow2} {
		row, err := parseList(group(buf, loc, g), 3)
		if err != nil {
			return PoseEntry{}, malformed("rotation row "+strconv.Itoa(i), err)
		}
		rows[i] = r3.Vector{X: row[0], Y: row[1], Z: row[2]}
	}

	span := buf[loc[0]:loc[1]]
	intrinsics := Intrinsics{
		Width:  auxInt(widthPattern, span),
		Height: auxInt(heightPattern, span),
		Fx:     auxFloat(fxPattern, span),
	}
	if fy, err := parseNumber(group(buf, loc, groupFy)); err == nil {
		intrinsics.Fy = fy
	}

	return PoseEntry{
		ID:          id,
		Label:       group(buf, loc, groupLabel),
		Translation: r3.Vector{X: position[0], Y: position[1], Z: position[2]},
		Rotation:    spatialmath.NewRotationMatrixFromRows(rows[0], rows[1], rows[2]),
		Intrinsics:  intrinsics,
	}, nil
}

func malformed(field string, err error) error {
	return errors.Wrapf(diagnostics.ErrMalformedRecord, "field %s: %v", field, err)
}

// parseList splits a comma separated list and requires exactly n finite numbers.
func parseList(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.Errorf("expected %d values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := parseNumber(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func auxInt(re *regexp.Regexp, span []byte) int {
	m := re.FindSubmatch(span)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0
	}
	return v
}

func auxFloat(re *regexp.Regexp, span []byte) float64 {
	m := re.FindSubmatch(span)
	if m == nil {
		return 0
	}
	v, err := parseNumber(string(m[1]))
	if err != nil {
		return 0
	}
	return v
}
