package posefile

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gsplat-tools/camloader/diagnostics"
)

// Load reads the document at path and extracts its records. An absent or unreadable file is not
// an error: it yields no entries, a MissingSource diagnostic and SourceMissing in the summary. The
// diagnostic's error matches both diagnostics.ErrMissingSource and the underlying read error.
func (e *Extractor) Load(ctx context.Context, path string) ([]PoseEntry, Summary) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.diag.MissingSource(ctx, path, multierr.Combine(errors.Wrap(diagnostics.ErrMissingSource, path), err))
		return nil, Summary{SourceMissing: true}
	}
	return e.Extract(ctx, data)
}
