package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/config"
	dbRedis "github.com/kailas-cloud/cellindex/internal/db/redis"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	logpkg "github.com/kailas-cloud/cellindex/internal/logger"
	documentrepo "github.com/kailas-cloud/cellindex/internal/repository/document"
	"github.com/kailas-cloud/cellindex/internal/repository/dump"
	graphrepo "github.com/kailas-cloud/cellindex/internal/repository/graph"
	chiTransport "github.com/kailas-cloud/cellindex/internal/transport/chi"
	"github.com/kailas-cloud/cellindex/internal/usecase/aggregate"
	"github.com/kailas-cloud/cellindex/internal/usecase/health"
)

// sinkHandle is an opened corpus sink plus whatever must be closed after it.
type sinkHandle struct {
	sink     aggregate.Sink
	store    *dbRedis.Store
	repo     *documentrepo.Repo
	location string
}

func (h *sinkHandle) close() {
	if h != nil && h.store != nil {
		h.store.Close()
	}
}

// openGraph connects to Neo4j and waits until it answers.
func (a *app) openGraph(ctx context.Context) (*graphrepo.Executor, *graphrepo.Source, error) {
	gc := a.cfg.Graph
	exec, err := graphrepo.NewExecutor(graphrepo.Config{
		URI:      gc.URI,
		Username: gc.Username,
		Password: gc.Password,
		Database: gc.Database,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create graph driver: %w", err)
	}

	timeout := time.Duration(gc.ReadinessTimeout) * time.Second
	if err := exec.WaitForReady(ctx, timeout); err != nil {
		_ = exec.Close(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("graph not ready: %w", err)
	}
	logpkg.FromContext(ctx).Info("Connected to graph",
		zap.String("uri", gc.URI),
		zap.String("database", gc.Database),
	)
	return exec, graphrepo.New(exec).WithMetrics(a.pipeline), nil
}

// openSink builds the configured sink. A non-empty path forces the file driver.
func (a *app) openSink(ctx context.Context, path string) (*sinkHandle, error) {
	sc := a.cfg.Sink
	driver := sc.Driver
	if path != "" {
		driver = config.DriverFile
	} else {
		path = sc.Path
	}

	log := logpkg.FromContext(ctx)
	switch driver {
	case config.DriverFile:
		w := dump.New(path)
		log.Info("Using file sink", zap.String("path", w.Path()))
		return &sinkHandle{sink: w, location: w.Path()}, nil

	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      sc.Addrs,
			Password:   sc.Password,
			TextSearch: driver == config.DriverRedis,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", driver, err)
		}
		timeout := time.Duration(sc.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", driver, err)
		}
		repo := documentrepo.New(store, sc.KeyPrefix,
			documentrepo.WithBatchSize(sc.BatchSize),
			documentrepo.WithCreateIndex(sc.CreateIndex),
			documentrepo.WithRebuildIndex(sc.RebuildIndex),
			documentrepo.WithPrune(sc.Prune),
		)
		log.Info("Using key-value sink",
			zap.String("driver", driver),
			zap.Strings("addrs", sc.Addrs),
			zap.String("key_prefix", sc.KeyPrefix),
		)
		return &sinkHandle{sink: repo, store: store, repo: repo, location: sc.KeyPrefix}, nil

	default:
		return nil, fmt.Errorf("unknown sink driver %q", driver)
	}
}

// loadSpecies reads the taxonomy details table; an empty location yields no mapping.
func (a *app) loadSpecies(ctx context.Context) (taxonomy.SpeciesMapping, error) {
	tc := a.cfg.Taxonomy
	if tc.DetailsPath == "" {
		logpkg.FromContext(ctx).Warn("No taxonomy details configured, species will be empty")
		return nil, nil
	}
	m, err := taxonomy.LoadDetails(ctx, tc.DetailsPath, tc.Species)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy details: %w", err)
	}
	logpkg.FromContext(ctx).Info("Taxonomy details loaded",
		zap.String("location", tc.DetailsPath),
		zap.Int("taxonomies", len(m)),
	)
	return m, nil
}

// newService configures the corpus build from config.
func (a *app) newService(src aggregate.GraphSource, sink aggregate.Sink, species taxonomy.SpeciesMapping) *aggregate.Service {
	pc := a.cfg.Pipeline
	return aggregate.New(src, sink).
		WithSpecies(species).
		WithCrossSpeciesLabel(a.cfg.Taxonomy.CrossSpeciesLabel).
		WithFetchWorkers(pc.FetchWorkers).
		WithWindow(pc.Window).
		WithFailOnDataError(pc.FailOnDataError).
		WithMetrics(a.pipeline)
}

// startOps serves health and metrics for the lifetime of ctx. The returned
// wait func blocks until the server has shut down.
func (a *app) startOps(ctx context.Context, graph, sink health.Pinger) func() {
	port := a.cfg.Metrics.Port
	if port == 0 {
		return func() {}
	}
	log := logpkg.FromContext(ctx)
	router := chiTransport.NewRouter(chiTransport.Options{
		Health:   health.New(graph, sink),
		Gatherer: a.registry,
		HTTP:     a.http,
		APIKeys:  a.cfg.Metrics.APIKeys,
		Logger:   log,
	})

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := chiTransport.Serve(ctx, port, router, log); err != nil {
			log.Error("Ops server failed", zap.Error(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// pinger returns the sink store as a health probe, or nil for file sinks.
func (h *sinkHandle) pinger() health.Pinger {
	if h == nil || h.store == nil {
		return nil
	}
	return h.store
}

// logReport writes the run summary, listing each failed individual.
func logReport(ctx context.Context, r aggregate.Report) {
	log := logpkg.FromContext(ctx)
	for _, f := range r.Failures {
		log.Warn("Individual failed", zap.String("individual", f.Individual), zap.Error(f.Err))
	}
	log.Info("Run finished",
		zap.Int("individuals", r.Individuals),
		zap.Int("resolved", r.Resolved),
		zap.Int("failed", len(r.Failures)),
		zap.Int("taxonomies", r.Taxonomies),
		zap.Int("datasets", r.Datasets),
		zap.Int("backfilled", r.Backfilled),
		zap.Int("documents", r.Documents),
		zap.Duration("duration", r.Duration),
	)
}
