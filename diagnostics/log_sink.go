package diagnostics

import (
	"context"

	"github.com/gsplat-tools/camloader/logging"
)

type logSink struct {
	logger logging.Logger
}

// NewLogSink returns a Sink that writes each diagnostic as a structured log line.
func NewLogSink(logger logging.Logger) Sink {
	return &logSink{logger: logger}
}

func (s *logSink) Loaded(_ context.Context, count int) {
	s.logger.Infow("loaded camera poses", "count", count)
}

func (s *logSink) Skipped(_ context.Context, reason SkipReason) {
	s.logger.Warnw("skipping camera pose record",
		"offset", reason.Offset, "id", reason.ID, "label", reason.Label, "error", reason.Err)
}

func (s *logSink) MissingSource(_ context.Context, path string, err error) {
	s.logger.Warnw("camera pose source unavailable, treating as empty", "path", path, "error", err)
}

func (s *logSink) InvalidSelection(_ context.Context, index, count int) {
	s.logger.Warnw("ignoring out of range camera selection",
		"index", index, "count", count, "error", ErrInvalidSelection)
}

func (s *logSink) DegenerateOrientation(_ context.Context, id int) {
	s.logger.Debugw("forward and up are parallel, using fallback roll", "id", id, "error", ErrDegenerateOrientation)
}
