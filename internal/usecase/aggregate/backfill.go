package aggregate

import (
	"strings"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/index"
)

const (
	// AnchorLabel marks the root document of a taxonomy.
	AnchorLabel = "All cells"
	// RootRank is the rank of top-level cell sets.
	RootRank = "Class"

	// taxonomySuffixLen is how many trailing IRI characters identify a node
	// within its taxonomy; the rest is the taxonomy prefix.
	taxonomySuffixLen = 3
)

// registry collects root and anchor handles during the main pass.
type registry struct {
	roots   []string
	anchors []string
}

func (r *registry) observe(doc *document.Document) {
	if strings.Contains(doc.PrefLabel, AnchorLabel) {
		r.anchors = document.AppendUnique(r.anchors, doc.IRI)
	}
	if doc.Rank == RootRank {
		r.roots = document.AppendUnique(r.roots, doc.IRI)
	}
}

// backfill links every root document to the first anchor whose IRI contains
// the root's taxonomy prefix. Roots without a matching anchor keep their
// parents. It returns the number of roots linked.
func backfill(store *index.Store, reg *registry) int {
	linked := 0
	for _, iri := range reg.roots {
		doc, ok := store.Get(iri)
		if !ok || len(iri) <= taxonomySuffixLen {
			continue
		}
		prefix := iri[:len(iri)-taxonomySuffixLen]

		for _, anchor := range reg.anchors {
			if anchor == iri || !strings.Contains(anchor, prefix) {
				continue
			}
			doc.Parents = []string{anchor}
			doc.ParentLabels = []string{AnchorLabel}
			doc.ParentClusters = []string{anchor}
			doc.ParentClusterNames = []string{AnchorLabel}
			linked++
			break
		}
	}
	return linked
}
