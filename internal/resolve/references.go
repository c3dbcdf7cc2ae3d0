package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/extract"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// References records bibliographic sources and indexes each on first sight.
func References(tx *index.Txn, in *Input, doc *document.Document) error {
	AddReferences(tx, in.Result.References, doc)
	return nil
}

// AddReferences records refs on doc and stages unseen reference documents.
// Taxonomy seeding shares it with the individual chain.
func AddReferences(tx *index.Txn, refs []graph.Related, doc *document.Document) {
	for _, r := range refs {
		iri := r.Node.IRI()
		if iri == "" {
			continue
		}
		doc.AddReference(iri)
		if !tx.Has(iri) {
			tx.PutIfAbsent(extract.Reference(r.Node))
		}
	}
}
