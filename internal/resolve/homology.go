package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// Homology records historical homology targets by IRI and label.
func Homology(_ *index.Txn, in *Input, doc *document.Document) error {
	for _, h := range in.Result.HomologousTo {
		if iri := h.Node.IRI(); iri != "" {
			doc.AddHomolog(iri, h.Node.Label())
		}
	}
	return nil
}
