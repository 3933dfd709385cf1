package mock

import (
	"context"

	"github.com/fwojciec/sitegraph"
)

var _ sitegraph.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of sitegraph.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, r *sitegraph.Report) error
}

func (e *Exporter) Export(ctx context.Context, r *sitegraph.Report) error {
	return e.ExportFn(ctx, r)
}
