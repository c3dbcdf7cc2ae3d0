package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/db"
	domdoc "github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/logger"
)

// Defaults for the corpus sink.
const (
	DefaultKeyPrefix = "cellindex:"
	DefaultBatchSize = 500
)

// store is the consumer interface for the corpus sink (ISP).
//
//nolint:interfacebloat // sink needs JSON writes, key cleanup and index management
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexDocCount(ctx context.Context, name string) (int64, error)
	SupportsTextSearch(ctx context.Context) bool
}

// IndexStatus describes the corpus search index on the server.
type IndexStatus struct {
	Name      string `json:"name"`
	Exists    bool   `json:"exists"`
	Documents int64  `json:"documents"`
}

// Manifest summarises the last corpus written under a key prefix.
type Manifest struct {
	Documents int            `json:"documents"`
	Types     map[string]int `json:"types"`
	Index     string         `json:"index,omitempty"`
	Pruned    int            `json:"pruned"`
	WrittenAt time.Time      `json:"written_at"`
}

// Option configures a Repo.
type Option func(*Repo)

// WithBatchSize sets how many JSON.SET commands go into one pipeline.
func WithBatchSize(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithCreateIndex enables FT.CREATE of the corpus search index before writing.
func WithCreateIndex(enabled bool) Option {
	return func(r *Repo) { r.createIndex = enabled }
}

// WithRebuildIndex drops the corpus search index before it is created again,
// picking up schema changes. Indexed documents are kept. Only applies with
// WithCreateIndex.
func WithRebuildIndex(enabled bool) Option {
	return func(r *Repo) { r.rebuildIndex = enabled }
}

// WithPrune enables removal of document keys not present in the written corpus.
func WithPrune(enabled bool) Option {
	return func(r *Repo) { r.prune = enabled }
}

// WithClock overrides the manifest timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

// Repo writes the flattened corpus as JSON documents keyed by IRI.
type Repo struct {
	store        store
	prefix       string
	batchSize    int
	createIndex  bool
	rebuildIndex bool
	prune        bool
	now          func() time.Time
}

// New creates a corpus sink. An empty prefix falls back to DefaultKeyPrefix.
func New(s store, prefix string, opts ...Option) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	r := &Repo{store: s, prefix: prefix, batchSize: DefaultBatchSize, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Write stores every document, then records the manifest.
func (r *Repo) Write(ctx context.Context, docs []*domdoc.Document) error {
	var indexName string
	if r.createIndex {
		def, err := buildIndex(r.prefix, r.store.SupportsTextSearch(ctx))
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		if r.rebuildIndex {
			err := r.store.DropIndex(ctx, def.Name)
			if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
				return fmt.Errorf("drop index %s: %w", def.Name, err)
			}
		}
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
		logger.FromContext(ctx).Debug("Search index ready",
			zap.Bool("rebuilt", r.rebuildIndex),
			zap.Stringer("schema", def),
		)
		indexName = def.Name
	}

	written := make(map[string]bool, len(docs))
	types := make(map[string]int)
	batch := make([]db.JSONSetItem, 0, min(r.batchSize, len(docs)))
	for _, doc := range docs {
		if doc == nil || doc.IRI == "" {
			continue
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document %s: %w", doc.IRI, err)
		}
		key := r.docKey(doc.IRI)
		written[key] = true
		types[string(doc.Kind)]++

		batch = append(batch, db.JSONSetItem{Key: key, Path: "$", Data: data})
		if len(batch) == r.batchSize {
			if err := r.store.JSONSetMulti(ctx, batch); err != nil {
				return fmt.Errorf("write batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := r.store.JSONSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	}

	var pruned int
	if r.prune {
		n, err := r.pruneStale(ctx, written)
		if err != nil {
			return err
		}
		pruned = n
	}

	m := Manifest{
		Documents: len(written),
		Types:     types,
		Index:     indexName,
		Pruned:    pruned,
		WrittenAt: r.now().UTC(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := r.store.Set(ctx, r.metaKey(), data); err != nil {
		return fmt.Errorf("set manifest: %w", err)
	}
	return nil
}

// Manifest returns the manifest of the last completed write.
// Returns db.ErrKeyNotFound when nothing has been written yet.
func (r *Repo) Manifest(ctx context.Context) (*Manifest, error) {
	raw, err := r.store.Get(ctx, r.metaKey())
	if err != nil {
		return nil, fmt.Errorf("get manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// IndexStatus reports whether the corpus search index exists and how many
// documents it holds.
func (r *Repo) IndexStatus(ctx context.Context) (*IndexStatus, error) {
	st := &IndexStatus{Name: indexName(r.prefix)}
	exists, err := r.store.IndexExists(ctx, st.Name)
	if err != nil {
		return nil, fmt.Errorf("index exists %s: %w", st.Name, err)
	}
	if !exists {
		return st, nil
	}
	st.Exists = true
	n, err := r.store.IndexDocCount(ctx, st.Name)
	if err != nil {
		return nil, fmt.Errorf("index doc count %s: %w", st.Name, err)
	}
	st.Documents = n
	return st, nil
}

// pruneStale deletes document keys under the prefix that were not written.
func (r *Repo) pruneStale(ctx context.Context, written map[string]bool) (int, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"doc:*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}

	var stale []string
	for _, k := range keys {
		if !written[k] {
			stale = append(stale, k)
		}
	}
	for start := 0; start < len(stale); start += r.batchSize {
		end := min(start+r.batchSize, len(stale))
		if err := r.store.Del(ctx, stale[start:end]...); err != nil {
			return 0, fmt.Errorf("delete stale documents: %w", err)
		}
	}
	return len(stale), nil
}

func (r *Repo) docKey(iri string) string {
	return r.prefix + "doc:" + iri
}

func (r *Repo) metaKey() string {
	return r.prefix + "meta"
}
