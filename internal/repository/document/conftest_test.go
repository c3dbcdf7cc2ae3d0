package document

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/cellindex/internal/db"
	domdoc "github.com/kailas-cloud/cellindex/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setFn          func(ctx context.Context, key string, value []byte) error
	delFn          func(ctx context.Context, keys ...string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	docCountFn     func(ctx context.Context, name string) (int64, error)
	textSearch     bool

	calls []string

	batches [][]db.JSONSetItem
	deleted []string
	kv      map[string][]byte
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	m.batches = append(m.batches, append([]db.JSONSetItem(nil), items...))
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	if m.kv == nil {
		m.kv = make(map[string][]byte)
	}
	m.kv[key] = value
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.deleted = append(m.deleted, keys...)
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.calls = append(m.calls, "create")
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	m.calls = append(m.calls, "drop")
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) IndexDocCount(ctx context.Context, name string) (int64, error) {
	if m.docCountFn != nil {
		return m.docCountFn(ctx, name)
	}
	return 0, nil
}

func (m *mockStore) SupportsTextSearch(_ context.Context) bool {
	return m.textSearch
}

// written returns every key handed to JSONSetMulti, in order.
func (m *mockStore) written() []string {
	var keys []string
	for _, b := range m.batches {
		for _, item := range b {
			keys = append(keys, item.Key)
		}
	}
	return keys
}

func newTestRepo(t *testing.T, opts ...Option) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	opts = append([]Option{WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	})}, opts...)
	return New(ms, "test:", opts...), ms
}

func testDocs(n int) []*domdoc.Document {
	docs := make([]*domdoc.Document, 0, n)
	for i := range n {
		iri := "http://purl.obolibrary.org/obo/CL_" + strings.Repeat("0", 6) + string(rune('a'+i))
		d := domdoc.New(domdoc.KindClass, iri)
		d.Label = "cell " + string(rune('a'+i))
		docs = append(docs, d)
	}
	return docs
}
