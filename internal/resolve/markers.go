package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain"
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// markerTable maps a marker label to its IRI.
type markerTable map[string]string

func (m markerTable) addIfAbsent(label, iri string) {
	if label == "" {
		return
	}
	if _, ok := m[label]; !ok {
		m[label] = iri
	}
}

// Markers records directly expressed markers, groups them into relation
// buckets keyed by the relation label, and resolves NS-Forest marker labels
// against direct markers first, then markers inherited from ancestors.
//
// A NS-Forest label without a marker behind it is a data fault and aborts
// the individual.
func Markers(tx *index.Txn, in *Input, doc *document.Document) error {
	names := make(markerTable)
	for _, m := range in.Result.Markers {
		iri := m.Node.IRI()
		if iri == "" {
			continue
		}
		label := m.Node.Label()
		if doc.AddMarker(iri, label) {
			names.addIfAbsent(label, iri)
		}
		stageClass(tx, m.Node)
		if rel := m.Relation.Label(); rel != "" {
			doc.AddRelation(rel, iri)
		}
	}

	inherited := make(map[string]graph.Properties)
	for _, m := range in.Result.ParentMarkers {
		iri := m.Node.IRI()
		if iri == "" {
			continue
		}
		label := m.Node.Label()
		if _, ok := names[label]; ok || label == "" {
			continue
		}
		names[label] = iri
		inherited[iri] = m.Node
	}

	return nsforestMarkers(tx, in, doc, names, inherited)
}

func nsforestMarkers(
	tx *index.Txn,
	in *Input,
	doc *document.Document,
	names markerTable,
	inherited map[string]graph.Properties,
) error {
	labels := in.Result.ClassProperties().Strings("has_nsforest_marker")
	if len(labels) == 0 {
		return nil
	}

	for _, label := range labels {
		iri, ok := names[label]
		if !ok {
			return domain.NewMarkerLookupError(doc.IRI, label)
		}
		if document.Contains(doc.NSForestMarkers, iri) {
			continue
		}
		doc.NSForestMarkers = append(doc.NSForestMarkers, iri)
		doc.NSForestMarkerLabels = append(doc.NSForestMarkerLabels, label)
		if node, ok := inherited[iri]; ok {
			stageClass(tx, node)
		}
	}
	return nil
}
