package extract

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
)

// OntologyID is the fixed id of the ontology metadata document.
const OntologyID = "ontology"

// Taxonomy extracts a taxonomy document. Dataset IRIs and references are
// attached by the caller, which also seeds those documents.
func Taxonomy(rec *taxonomy.Record, species taxonomy.SpeciesMapping) *document.Document {
	props := rec.Taxonomy
	iri := props.IRI()
	if iri == "" {
		return nil
	}

	doc := document.New(document.KindTaxonomy, iri)
	doc.Type = document.TypeTaxonomy
	doc.Curie = props.String("curie")
	doc.Label = props.Label()
	doc.AccessionID = doc.Label
	if s, ok := species.Lookup(doc.AccessionID); ok {
		doc.SpeciesLabel = s
	}

	doc.CellTypesCount = props.String("cell_types_count")
	doc.CellSubclassesCount = props.String("cell_subclasses_count")
	doc.CellClassesCount = props.String("cell_classes_count")
	doc.Species = props.String("prefLabel")
	if region := props.String("has_brain_region"); region != "" {
		doc.AnatomicRegion = []string{region}
	}
	doc.Sex = props.String("has_sex")
	doc.Age = props.String("has_age")
	doc.PrimaryCitation = props.String("database_cross_reference")
	doc.Header = props.String("title")
	doc.MainDescription = props.String("comment")
	doc.Attribution = props.String("provenance")
	doc.SubDescription = props.String("description")
	doc.Anatomy = props.String("subject")
	doc.AnatomyImage = props.String("relation")
	return doc
}

// Dataset extracts a dataset document belonging to the named taxonomy.
func Dataset(props graph.Properties, taxonomyName string) *document.Document {
	iri := props.IRI()
	if iri == "" {
		return nil
	}

	doc := document.New(document.KindDataset, iri)
	doc.Type = document.TypeDataset
	doc.Curie = props.String("curie")
	doc.Label = props.Label()
	doc.Comment = props.String("comment")
	doc.Taxonomy = taxonomyName
	doc.NucleiCount = props.String("nuclei_count")
	doc.CellCount = props.String("cell_count")
	doc.DownloadLink = props.String("archivedAt")
	doc.ExploreLink = props.String("discussionUrl")
	doc.Symbol = props.String("symbol")
	doc.Dataset = props.String("prefLabel")
	doc.Species = props.String("assesses")
	doc.Region = props.String("position")
	doc.DatasetNumber = props.String("headline")
	return doc
}

// Ontology builds the ontology metadata document.
func Ontology(meta taxonomy.Ontology) *document.Document {
	doc := document.New(document.KindOntology, OntologyID)
	doc.Label = meta.Name
	doc.Version = meta.Version
	return doc
}
