// Package aggregate builds the search corpus: it seeds taxonomies, resolves
// every individual against a shared dedup index, backfills taxonomy roots
// and hands the index to a sink.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cellindex/internal/domain"
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	"github.com/kailas-cloud/cellindex/internal/extract"
	"github.com/kailas-cloud/cellindex/internal/index"
	"github.com/kailas-cloud/cellindex/internal/logger"
	"github.com/kailas-cloud/cellindex/internal/metrics"
	"github.com/kailas-cloud/cellindex/internal/resolve"
)

// IndividualPrefix is stripped from an individual CURIE to get its accession.
const IndividualPrefix = "PCL:"

// Defaults for the detail prefetch.
const (
	DefaultFetchWorkers = 4
	DefaultWindow       = 64
)

// Failure is one individual that could not be resolved.
type Failure struct {
	Individual string
	Err        error
}

// Report summarises a run.
type Report struct {
	Individuals int
	Resolved    int
	Failures    []Failure
	Taxonomies  int
	Datasets    int
	Backfilled  int
	Documents   int
	Duration    time.Duration
}

// Service runs the corpus build.
type Service struct {
	graph           GraphSource
	sink            Sink
	chain           resolve.Chain
	species         taxonomy.SpeciesMapping
	crossSpecies    string
	fetchWorkers    int
	window          int
	failOnDataError bool
	metrics         *metrics.Pipeline
}

// New creates a Service. sink may be nil when only Build is used.
func New(graph GraphSource, sink Sink) *Service {
	return &Service{
		graph:        graph,
		sink:         sink,
		chain:        resolve.Default(),
		crossSpecies: resolve.DefaultCrossSpeciesLabel,
		fetchWorkers: DefaultFetchWorkers,
		window:       DefaultWindow,
	}
}

// WithSpecies sets the taxonomy id to species mapping.
func (s *Service) WithSpecies(m taxonomy.SpeciesMapping) *Service {
	s.species = m
	return s
}

// WithCrossSpeciesLabel overrides the cross-species taxon label.
func (s *Service) WithCrossSpeciesLabel(label string) *Service {
	if label != "" {
		s.crossSpecies = label
	}
	return s
}

// WithFetchWorkers sets how many detail queries run concurrently.
func (s *Service) WithFetchWorkers(n int) *Service {
	if n > 0 {
		s.fetchWorkers = n
	}
	return s
}

// WithWindow sets how many individuals are prefetched at a time.
func (s *Service) WithWindow(n int) *Service {
	if n > 0 {
		s.window = n
	}
	return s
}

// WithFailOnDataError makes the first data fault fail the run.
func (s *Service) WithFailOnDataError(v bool) *Service {
	s.failOnDataError = v
	return s
}

// WithMetrics enables pipeline metrics.
func (s *Service) WithMetrics(m *metrics.Pipeline) *Service {
	s.metrics = m
	return s
}

// Run builds the corpus and writes it to the sink.
func (s *Service) Run(ctx context.Context) (Report, error) {
	store, report, err := s.Build(ctx)
	if err != nil {
		return report, err
	}
	if s.sink == nil {
		return report, errors.New("aggregate: no sink configured")
	}

	log := logger.FromContext(ctx)
	start := time.Now()
	docs := store.Documents()
	if err := s.sink.Write(ctx, docs); err != nil {
		log.Error("Sink write failed", zap.Int("documents", len(docs)), zap.Error(err))
		return report, fmt.Errorf("write documents: %w", err)
	}
	s.metrics.Stage("write", time.Since(start))
	for kind, n := range countKinds(docs) {
		s.metrics.Documents(string(kind), n)
	}

	log.Info("Corpus written", zap.Int("documents", len(docs)))
	return report, nil
}

// Build runs both passes and returns the finished index without writing it.
func (s *Service) Build(ctx context.Context) (*index.Store, Report, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	var report Report

	catalog, err := s.graph.ListTaxonomies(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("list taxonomies: %w", err)
	}
	store := index.New()
	report.Taxonomies, report.Datasets = seedTaxonomies(store, catalog, s.species)
	s.metrics.Stage("seed", time.Since(start))
	log.Info("Taxonomies seeded",
		zap.Int("taxonomies", report.Taxonomies),
		zap.Int("datasets", report.Datasets),
	)

	ids, err := s.graph.ListIndividuals(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("list individuals: %w", err)
	}
	report.Individuals = len(ids)
	log.Info("Individuals listed", zap.Int("count", len(ids)))

	resolveStart := time.Now()
	reg := &registry{}
	if err := s.resolveAll(ctx, store, catalog, ids, reg, &report); err != nil {
		return nil, report, err
	}
	s.metrics.Stage("resolve", time.Since(resolveStart))

	report.Backfilled = backfill(store, reg)
	s.metrics.Backfilled(report.Backfilled)
	log.Info("Roots backfilled",
		zap.Int("roots", len(reg.roots)),
		zap.Int("anchors", len(reg.anchors)),
		zap.Int("linked", report.Backfilled),
	)

	meta, err := s.graph.OntologyMetadata(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("ontology metadata: %w", err)
	}
	store.Put(extract.Ontology(meta))

	report.Documents = store.Len()
	report.Duration = time.Since(start)
	log.Info("Corpus built",
		zap.Int("documents", report.Documents),
		zap.Int("resolved", report.Resolved),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("duration", report.Duration),
	)
	return store, report, nil
}

// resolveAll prefetches details one window at a time and resolves them
// strictly in listing order against the index.
func (s *Service) resolveAll(
	ctx context.Context,
	store *index.Store,
	catalog *taxonomy.Catalog,
	ids []string,
	reg *registry,
	report *Report,
) error {
	log := logger.FromContext(ctx)

	for lo := 0; lo < len(ids); lo += s.window {
		hi := min(lo+s.window, len(ids))
		batch, err := s.fetch(ctx, ids[lo:hi])
		if err != nil {
			return err
		}

		for i, f := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := ids[lo+i]

			err := f.err
			var doc *document.Document
			if err == nil {
				doc, err = s.resolveOne(store, catalog, id, f.result)
			}
			if err != nil {
				s.metrics.Individual(metrics.StatusFailed)
				report.Failures = append(report.Failures, Failure{Individual: id, Err: err})
				log.Warn("Individual skipped", zap.String("individual", id), zap.Error(err))
				if s.failOnDataError && domain.IsDataFault(err) {
					return fmt.Errorf("individual %s: %w", id, err)
				}
				continue
			}

			reg.observe(doc)
			report.Resolved++
			s.metrics.Individual(metrics.StatusOK)
			log.Debug("Individual resolved",
				zap.String("individual", id),
				zap.String("iri", doc.IRI),
			)
		}
	}
	return nil
}

type fetched struct {
	result *graph.Result
	err    error
}

// fetch loads details for ids concurrently. A missing individual is
// recorded against that individual; any other error aborts the run.
func (s *Service) fetch(ctx context.Context, ids []string) ([]fetched, error) {
	out := make([]fetched, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchWorkers)

	for i, id := range ids {
		g.Go(func() error {
			res, err := s.graph.IndividualDetails(gctx, Accession(id))
			switch {
			case errors.Is(err, domain.ErrNotFound):
				out[i].err = err
			case err != nil:
				return fmt.Errorf("individual details %s: %w", id, err)
			case res == nil:
				out[i].err = domain.ErrNotFound
			default:
				out[i].result = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveOne builds one individual document inside a transaction so a
// failure leaves the index untouched.
func (s *Service) resolveOne(
	store *index.Store, catalog *taxonomy.Catalog, id string, res *graph.Result,
) (*document.Document, error) {
	if res.Node == "" {
		withNode := *res
		withNode.Node = id
		res = &withNode
	}
	doc, err := resolve.Base(res)
	if err != nil {
		return nil, err
	}

	in := &resolve.Input{
		Result:            res,
		Catalog:           catalog,
		Species:           s.species,
		CrossSpeciesLabel: s.crossSpecies,
	}
	tx := store.Begin()
	if err := s.chain.Resolve(tx, in, doc); err != nil {
		tx.Rollback()
		return nil, err
	}
	tx.Put(doc)
	if _, err := tx.Commit(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Accession strips the individual prefix from a CURIE.
func Accession(curie string) string {
	return strings.TrimPrefix(curie, IndividualPrefix)
}

func countKinds(docs []*document.Document) map[document.Kind]int {
	out := make(map[document.Kind]int)
	for _, d := range docs {
		out[d.Kind]++
	}
	return out
}
