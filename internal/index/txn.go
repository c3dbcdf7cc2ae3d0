package index

import (
	"errors"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
)

// ErrTxnClosed is returned when a committed or rolled back transaction is reused.
var ErrTxnClosed = errors.New("index transaction closed")

type stagedDoc struct {
	doc     *document.Document
	replace bool
}

// Txn stages inserts for one entity. Reads see staged documents first, then
// the store. Nothing reaches the store until Commit, so an entity that fails
// halfway leaves the index exactly as it was.
type Txn struct {
	store  *Store
	staged map[string]stagedDoc
	order  []string
	closed bool
}

// Get returns the staged or stored document for iri.
func (t *Txn) Get(iri string) (*document.Document, bool) {
	if s, ok := t.staged[iri]; ok {
		return s.doc, true
	}
	return t.store.Get(iri)
}

// Has reports whether iri is staged or stored.
func (t *Txn) Has(iri string) bool {
	_, ok := t.Get(iri)
	return ok
}

// PutIfAbsent stages doc unless its IRI is already staged or stored.
func (t *Txn) PutIfAbsent(doc *document.Document) bool {
	if t.closed || doc == nil || doc.IRI == "" || t.Has(doc.IRI) {
		return false
	}
	t.stage(doc, false)
	return true
}

// Put stages doc, replacing any staged or stored document with the same IRI
// on commit.
func (t *Txn) Put(doc *document.Document) {
	if t.closed || doc == nil || doc.IRI == "" {
		return
	}
	t.stage(doc, true)
}

func (t *Txn) stage(doc *document.Document, replace bool) {
	if _, ok := t.staged[doc.IRI]; !ok {
		t.order = append(t.order, doc.IRI)
	}
	t.staged[doc.IRI] = stagedDoc{doc: doc, replace: replace}
}

// Len returns the number of staged documents.
func (t *Txn) Len() int {
	return len(t.staged)
}

// Commit applies staged documents to the store in staging order and returns
// how many were applied.
func (t *Txn) Commit() (int, error) {
	if t.closed {
		return 0, ErrTxnClosed
	}
	t.closed = true

	for _, iri := range t.order {
		s := t.staged[iri]
		if s.replace {
			t.store.Put(s.doc)
			continue
		}
		t.store.PutIfAbsent(s.doc)
	}
	n := len(t.order)
	t.staged, t.order = nil, nil
	return n, nil
}

// Rollback discards staged documents. It is safe to call after Commit.
func (t *Txn) Rollback() {
	t.closed = true
	t.staged, t.order = nil, nil
}
