// Package resolve flattens one individual's graph result into its search
// document. Each resolver handles one relationship kind: it appends resolved
// identifiers to the document and stages newly seen related entities in the
// index transaction.
package resolve

import (
	"fmt"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// DefaultCrossSpeciesLabel names the taxon shared by every species in the
// corpus. It is only used as a species when nothing more specific exists.
const DefaultCrossSpeciesLabel = "Euarchontoglires"

// Input is what a resolver reads for one individual.
type Input struct {
	Result            *graph.Result
	Catalog           *taxonomy.Catalog
	Species           taxonomy.SpeciesMapping
	CrossSpeciesLabel string
}

func (in *Input) crossSpecies() string {
	if in.CrossSpeciesLabel == "" {
		return DefaultCrossSpeciesLabel
	}
	return in.CrossSpeciesLabel
}

// Resolver resolves one relationship kind into doc.
type Resolver interface {
	Resolve(tx *index.Txn, in *Input, doc *document.Document) error
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(tx *index.Txn, in *Input, doc *document.Document) error

// Resolve calls f.
func (f ResolverFunc) Resolve(tx *index.Txn, in *Input, doc *document.Document) error {
	return f(tx, in, doc)
}

// Step is a named resolver in a chain.
type Step struct {
	Name     string
	Resolver Resolver
}

// Chain runs resolvers in order and stops at the first error.
type Chain []Step

// Default returns the resolver chain in the order documents are built:
// individual fields first, since later steps key on the accession id.
func Default() Chain {
	return Chain{
		{Name: "individual", Resolver: ResolverFunc(Individual)},
		{Name: "parents", Resolver: ResolverFunc(Parents)},
		{Name: "markers", Resolver: ResolverFunc(Markers)},
		{Name: "references", Resolver: ResolverFunc(References)},
		{Name: "taxonomy", Resolver: ResolverFunc(Taxonomy)},
		{Name: "regions", Resolver: ResolverFunc(BrainRegions)},
		{Name: "homology", Resolver: ResolverFunc(Homology)},
		{Name: "subclusters", Resolver: ResolverFunc(Subclusters)},
	}
}

// Resolve runs every step against doc.
func (c Chain) Resolve(tx *index.Txn, in *Input, doc *document.Document) error {
	for _, s := range c {
		if err := s.Resolver.Resolve(tx, in, doc); err != nil {
			return fmt.Errorf("resolve %s: %w", s.Name, err)
		}
	}
	return nil
}
