package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain"
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/extract"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// Base builds the starting document for an individual. It is the extracted
// class when the individual exemplifies one; otherwise it is extracted from
// the individual itself, which has no term page, so resolved_iri is cleared.
func Base(res *graph.Result) (*document.Document, error) {
	if res.HasClass() {
		if doc := extract.Class(res.Class.Properties); doc != nil {
			doc.Kind = document.KindIndividual
			doc.Tags = document.FilterTags(res.Class.Tags)
			return doc, nil
		}
	}

	doc := extract.Class(res.IndividualMetadata)
	if doc == nil {
		return nil, domain.ErrMissingIdentifier
	}
	doc.Kind = document.KindIndividual
	doc.ResolvedIRI = ""
	return doc, nil
}

// Individual copies the individual's own annotations: accession id, Allen
// comment, rank, colour and synonyms.
func Individual(_ *index.Txn, in *Input, doc *document.Document) error {
	meta := in.Result.IndividualMetadata

	doc.AccessionID = meta.String("cluster_id")
	if c := meta.String("comment"); c != "" {
		doc.CommentAllen = c
	}
	if r := meta.String("cell_type_rank"); r != "" {
		doc.Rank = r
	}
	if c := meta.String("cell_set_color"); c != "" {
		doc.CellSetColor = c
	}

	for _, s := range extract.Synonyms(meta.Strings("has_exact_synonym")) {
		doc.ExactSynonyms = document.AppendUnique(doc.ExactSynonyms, s)
	}
	if related := extract.Synonyms(meta.Strings("has_related_synonym")); related != nil {
		doc.Aliases = related
	}

	doc.Individual = in.Result.Node
	if doc.Individual == "" {
		doc.Individual = meta.String("curie")
	}
	return nil
}
