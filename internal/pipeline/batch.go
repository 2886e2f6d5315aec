package pipeline

import (
	"context"

	"actas/internal/model"
)

// Run processes sources one after another and returns current with one
// record per source appended in source order. current is not modified;
// passing an empty collection starts a fresh table.
func (p *Pipeline) Run(ctx context.Context, current model.Collection, sources []Source) model.Collection {
	recs := make([]model.Record, 0, len(sources))
	for _, src := range sources {
		recs = append(recs, p.Process(ctx, src))
	}
	return current.Append(recs...)
}
