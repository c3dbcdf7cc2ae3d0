// Package extract converts raw graph nodes into flat document fragments.
// Every function here is pure: the same properties always yield an equal
// document, and inputs are never modified.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
)

// Namespaces with a browsable term page.
const (
	PCLNamespace = "http://purl.obolibrary.org/obo/PCL_"
	CLNamespace  = "http://purl.obolibrary.org/obo/CL_"

	// TermBrowser is prefixed to recognised IRIs to build resolved_iri.
	TermBrowser = "https://www.ebi.ac.uk/ols/ontologies/pcl/terms?iri="
)

// ResolveIRI returns the term browser URL for PCL/CL IRIs and the IRI itself
// for everything else.
func ResolveIRI(iri string) string {
	if strings.HasPrefix(iri, PCLNamespace) || strings.HasPrefix(iri, CLNamespace) {
		return TermBrowser + iri
	}
	return iri
}

// Class extracts an ontology class (or any node carrying class-style
// annotations). It returns nil when the node is absent or has no IRI.
func Class(props graph.Properties) *document.Document {
	iri := props.IRI()
	if iri == "" {
		return nil
	}

	doc := document.New(document.KindClass, iri)
	doc.Curie = props.String("curie")
	doc.Label = props.Label()
	doc.ShortForm = props.String("short_form")
	doc.Comment = props.String("comment")
	doc.Tags = document.FilterTags(props.Strings("tags"))
	doc.PrefLabel = props.String("prefLabel")
	doc.LabelRDFS = props.Strings("label_rdfs")
	doc.ExactSynonyms = Synonyms(props.Strings("has_exact_synonym"))
	doc.OBONamespace = props.Strings("hasOBONamespace")
	if defs := props.Strings("definition"); len(defs) > 0 {
		doc.Definition = UnwrapValue(defs[0])
	}
	doc.VersionInfo = props.String("versionInfo")
	doc.Symbol = props.String("symbol")
	doc.ResolvedIRI = ResolveIRI(iri)
	return doc
}

// Reference extracts a bibliographic node. resolved_iri is always the IRI.
func Reference(props graph.Properties) *document.Document {
	iri := props.IRI()
	if iri == "" {
		return nil
	}

	doc := document.New(document.KindReference, iri)
	doc.Curie = props.String("curie")
	doc.Label = props.Label()
	doc.Creator = props.Strings("creator")
	doc.ExactMatch = props.String("exactMatch")
	doc.Description = props.Strings("description")
	doc.Abstract = props.String("abstract")
	doc.LabelRDFS = props.Strings("label_rdfs")
	doc.BibliographicCitation = props.String("bibliographicCitation")
	doc.Identifier = props.Strings("identifier")
	doc.Date = props.String("date")
	doc.ResolvedIRI = iri
	return doc
}

// Synonyms unwraps and de-duplicates synonym annotations, preserving order.
func Synonyms(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s := UnwrapValue(r); s != "" {
			out = document.AppendUnique(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

const valueMarker = `"value":"`

// UnwrapValue returns the "value" member of an axiom-annotated literal
// serialised as {"value":"...", ...}. Plain literals pass through unchanged.
func UnwrapValue(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") {
		return raw
	}

	var v struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(s), &v); err == nil && v.Value != "" {
		return v.Value
	}

	// Loosely serialised maps are not valid JSON; cut at the marker instead.
	if _, after, ok := strings.Cut(s, valueMarker); ok {
		if end := strings.Index(after, `"`); end >= 0 {
			return after[:end]
		}
		return strings.TrimSuffix(after, "}")
	}
	return raw
}
