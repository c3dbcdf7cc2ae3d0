package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	"github.com/kailas-cloud/cellindex/internal/logger"
)

// RawDump is the unflattened graph export: every individual's query result
// tagged with its CURIE, plus the ontology metadata.
type RawDump struct {
	Ontology taxonomy.Ontology `json:"ontology"`
	Entities []*graph.Result   `json:"entities"`
}

// Raw fetches every individual's details without resolving them.
// Individuals missing from the graph are skipped.
func (s *Service) Raw(ctx context.Context) (*RawDump, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	ids, err := s.graph.ListIndividuals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list individuals: %w", err)
	}

	out := &RawDump{Entities: make([]*graph.Result, 0, len(ids))}
	for lo := 0; lo < len(ids); lo += s.window {
		hi := min(lo+s.window, len(ids))
		batch, err := s.fetch(ctx, ids[lo:hi])
		if err != nil {
			return nil, err
		}
		for i, f := range batch {
			id := ids[lo+i]
			if f.err != nil {
				log.Warn("Individual skipped", zap.String("individual", id), zap.Error(f.err))
				continue
			}
			res := *f.result
			res.Node = id
			out.Entities = append(out.Entities, &res)
		}
	}

	meta, err := s.graph.OntologyMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("ontology metadata: %w", err)
	}
	out.Ontology = meta

	s.metrics.Stage("raw", time.Since(start))
	log.Info("Raw results fetched",
		zap.Int("individuals", len(ids)),
		zap.Int("entities", len(out.Entities)),
	)
	return out, nil
}
