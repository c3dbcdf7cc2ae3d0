package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/domain"
	domgraph "github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	"github.com/kailas-cloud/cellindex/internal/logger"
	"github.com/kailas-cloud/cellindex/internal/metrics"
)

// Source implements aggregate.GraphSource over a Runner.
type Source struct {
	runner  Runner
	metrics *metrics.Pipeline
}

// New creates a graph source.
func New(r Runner) *Source {
	return &Source{runner: r}
}

// WithMetrics records query latency.
func (s *Source) WithMetrics(m *metrics.Pipeline) *Source {
	s.metrics = m
	return s
}

// ListIndividuals returns the CURIEs of every ranked individual.
func (s *Source) ListIndividuals(ctx context.Context) ([]string, error) {
	res, err := s.run(ctx, queryListIndividuals, listIndividualsQuery, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		if curie, ok := value(rec, "curie").(string); ok && curie != "" {
			ids = append(ids, curie)
		}
	}
	return ids, nil
}

// IndividualDetails returns the raw result for one accession.
func (s *Source) IndividualDetails(ctx context.Context, accession string) (*domgraph.Result, error) {
	res, err := s.run(ctx, queryIndividualDetails, individualDetailsQuery, map[string]any{
		"accession": accession,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("individual %s: %w", accession, domain.ErrNotFound)
	}
	return parseDetails(res.Records[0]), nil
}

// ListTaxonomies returns the taxonomy table with datasets and references.
func (s *Source) ListTaxonomies(ctx context.Context) (*taxonomy.Catalog, error) {
	res, err := s.run(ctx, queryListTaxonomies, listTaxonomiesQuery, map[string]any{
		"taxonomy_class": TaxonomyClassCurie,
	})
	if err != nil {
		return nil, err
	}
	catalog := taxonomy.NewCatalog()
	for _, rec := range res.Records {
		if r, ok := parseTaxonomy(rec); ok {
			catalog.Add(r)
		}
	}
	return catalog, nil
}

// OntologyMetadata returns the ontology name and version. An empty value is
// returned when the graph holds no ontology node.
func (s *Source) OntologyMetadata(ctx context.Context) (taxonomy.Ontology, error) {
	res, err := s.run(ctx, queryOntologyMetadata, ontologyMetadataQuery, nil)
	if err != nil {
		return taxonomy.Ontology{}, err
	}
	if len(res.Records) == 0 {
		logger.FromContext(ctx).Warn("No ontology node found")
		return taxonomy.Ontology{}, nil
	}
	return parseOntology(res.Records[0]), nil
}

func (s *Source) run(ctx context.Context, name, query string, params map[string]any) (*neo4j.EagerResult, error) {
	start := time.Now()
	res, err := s.runner.Run(ctx, query, params)
	s.metrics.Query(name, time.Since(start))
	if err != nil {
		logger.FromContext(ctx).Error("Graph query failed", zap.String("query", name), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if res == nil {
		return &neo4j.EagerResult{}, nil
	}
	return res, nil
}
