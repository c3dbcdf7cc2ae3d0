package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/extract"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// Parents records direct superclasses and indexes each one on first sight.
func Parents(tx *index.Txn, in *Input, doc *document.Document) error {
	for _, p := range in.Result.Parents {
		iri := p.Node.IRI()
		if iri == "" {
			continue
		}
		doc.AddParent(iri, p.Node.Label())
		stageClass(tx, p.Node)
	}
	return nil
}

// stageClass extracts and stages a class node unless its IRI is known.
func stageClass(tx *index.Txn, node graph.Properties) {
	if tx.Has(node.IRI()) {
		return
	}
	tx.PutIfAbsent(extract.Class(node))
}
