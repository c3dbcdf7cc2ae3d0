// Package index holds the corpus-wide dedup index: one document per IRI,
// kept in insertion order so output is deterministic.
package index

import "github.com/kailas-cloud/cellindex/internal/domain/document"

// Store maps IRI to document. It is owned by a single writer; callers that
// fan out must serialize access themselves.
type Store struct {
	docs  map[string]*document.Document
	order []string
}

// New creates an empty store.
func New() *Store {
	return &Store{docs: make(map[string]*document.Document)}
}

// Get returns the document stored under iri.
func (s *Store) Get(iri string) (*document.Document, bool) {
	d, ok := s.docs[iri]
	return d, ok
}

// Has reports whether iri is indexed.
func (s *Store) Has(iri string) bool {
	_, ok := s.docs[iri]
	return ok
}

// PutIfAbsent inserts doc unless its IRI is already indexed. It reports
// whether the document was inserted.
func (s *Store) PutIfAbsent(doc *document.Document) bool {
	if doc == nil || doc.IRI == "" {
		return false
	}
	if _, ok := s.docs[doc.IRI]; ok {
		return false
	}
	s.docs[doc.IRI] = doc
	s.order = append(s.order, doc.IRI)
	return true
}

// Put inserts doc, replacing any document with the same IRI. A replaced
// document keeps its original position.
func (s *Store) Put(doc *document.Document) {
	if doc == nil || doc.IRI == "" {
		return
	}
	if _, ok := s.docs[doc.IRI]; !ok {
		s.order = append(s.order, doc.IRI)
	}
	s.docs[doc.IRI] = doc
}

// Len returns the number of indexed documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Documents returns every document in insertion order.
func (s *Store) Documents() []*document.Document {
	out := make([]*document.Document, 0, len(s.order))
	for _, iri := range s.order {
		out = append(out, s.docs[iri])
	}
	return out
}

// Begin opens a transaction against the store.
func (s *Store) Begin() *Txn {
	return &Txn{store: s, staged: make(map[string]stagedDoc)}
}
