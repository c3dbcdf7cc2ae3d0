package aggregate

import (
	"context"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
)

// GraphSource reads the ontology graph.
type GraphSource interface {
	// ListIndividuals returns the CURIEs of every ranked individual.
	ListIndividuals(ctx context.Context) ([]string, error)
	// IndividualDetails returns the raw result for one accession. It returns
	// domain.ErrNotFound when the individual does not exist.
	IndividualDetails(ctx context.Context, accession string) (*graph.Result, error)
	// ListTaxonomies returns the taxonomy table with datasets and references.
	ListTaxonomies(ctx context.Context) (*taxonomy.Catalog, error)
	// OntologyMetadata returns the ontology name and version.
	OntologyMetadata(ctx context.Context) (taxonomy.Ontology, error)
}

// Sink receives the finished corpus, one document per IRI.
type Sink interface {
	Write(ctx context.Context, docs []*document.Document) error
}
