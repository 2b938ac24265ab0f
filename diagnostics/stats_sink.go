package diagnostics

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	// MeasureLoaded counts camera poses loaded.
	MeasureLoaded = stats.Int64("camloader/poses_loaded", "Camera poses loaded", stats.UnitDimensionless)
	// MeasureSkipped counts candidate records dropped as malformed.
	MeasureSkipped = stats.Int64("camloader/poses_skipped", "Malformed pose records skipped", stats.UnitDimensionless)
	// MeasureMissingSource counts unreadable pose documents.
	MeasureMissingSource = stats.Int64("camloader/source_missing", "Pose sources that could not be read", stats.UnitDimensionless)
	// MeasureInvalidSelection counts rejected camera selections.
	MeasureInvalidSelection = stats.Int64("camloader/invalid_selection", "Out of range camera selections", stats.UnitDimensionless)
	// MeasureDegenerate counts orientations built from the fallback up axis.
	MeasureDegenerate = stats.Int64("camloader/degenerate_orientation", "Orientations with a fallback roll", stats.UnitDimensionless)

	// Views aggregates every measure as a running sum, under the measure's name.
	Views = []*view.View{
		sumView(MeasureLoaded),
		sumView(MeasureSkipped),
		sumView(MeasureMissingSource),
		sumView(MeasureInvalidSelection),
		sumView(MeasureDegenerate),
	}
)

func sumView(m *stats.Int64Measure) *view.View {
	return &view.View{
		Name:        m.Name(),
		Description: m.Description(),
		Measure:     m,
		Aggregation: view.Sum(),
	}
}

// RegisterViews registers Views with the opencensus view worker so the measures are exported.
func RegisterViews() error {
	return view.Register(Views...)
}

// Totals returns the running sum of every view in Views, keyed by view name. RegisterViews must
// have been called.
func Totals() (map[string]float64, error) {
	out := make(map[string]float64, len(Views))
	for _, v := range Views {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "retrieving %s", v.Name)
		}
		out[v.Name] = 0
		for _, row := range rows {
			if sum, ok := row.Data.(*view.SumData); ok {
				out[v.Name] += sum.Value
			}
		}
	}
	return out, nil
}

type statsSink struct{}

// NewStatsSink returns a Sink that records every diagnostic as an opencensus measurement.
func NewStatsSink() Sink {
	return statsSink{}
}

func (statsSink) Loaded(ctx context.Context, count int) {
	stats.Record(ctx, MeasureLoaded.M(int64(count)))
}

func (statsSink) Skipped(ctx context.Context, _ SkipReason) {
	stats.Record(ctx, MeasureSkipped.M(1))
}

func (statsSink) MissingSource(ctx context.Context, _ string, _ error) {
	stats.Record(ctx, MeasureMissingSource.M(1))
}

func (statsSink) InvalidSelection(ctx context.Context, _, _ int) {
	stats.Record(ctx, MeasureInvalidSelection.M(1))
}

func (statsSink) DegenerateOrientation(ctx context.Context, _ int) {
	stats.Record(ctx, MeasureDegenerate.M(1))
}
