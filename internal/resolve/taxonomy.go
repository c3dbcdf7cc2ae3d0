package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// Taxonomy sets the species and the taxonomy the individual belongs to.
//
// Species, in priority order:
//  1. the first direct in_taxon label;
//  2. the only inherited taxon, when it is the cross-species group;
//  3. the first inherited taxon that is not the cross-species group;
//  4. the species mapped to the taxonomy embedded in the accession id.
//
// An accession id that matches no taxonomy leaves taxonomy_iri and
// taxonomy_id unset.
func Taxonomy(_ *index.Txn, in *Input, doc *document.Document) error {
	if species := Species(in, doc.AccessionID); species != "" {
		doc.Species = species
	}

	if rec, ok := in.Catalog.ForAccession(doc.AccessionID); ok {
		doc.TaxonomyIRI = rec.Taxonomy.IRI()
		doc.TaxonomyID = rec.Taxonomy.Label()
	}
	return nil
}

// Species applies the species policy to one individual.
func Species(in *Input, accessionID string) string {
	var (
		direct  string
		parents []string
	)
	for _, row := range in.Result.Taxonomy {
		if l := row.Taxon.Label(); l != "" {
			if direct == "" {
				direct = l
			}
			continue
		}
		if l := row.ParentTaxon.Label(); l != "" {
			parents = document.AppendUnique(parents, l)
		}
	}

	if direct != "" {
		return direct
	}
	cross := in.crossSpecies()
	if len(parents) == 1 && parents[0] == cross {
		return cross
	}
	for _, p := range parents {
		if p != cross {
			return p
		}
	}

	rec, ok := in.Catalog.ForAccession(accessionID)
	if !ok {
		return ""
	}
	species, _ := in.Species.Lookup(rec.Key)
	return species
}
