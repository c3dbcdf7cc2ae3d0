// Package graph holds the typed representation of one individual's raw graph
// query result: the individual node, the class it exemplifies, and every
// relationship collection the flattening pipeline consumes.
package graph

// Related is one row of a collected relationship: the relationship's own
// properties plus the properties of the node at the other end. Node is nil
// when the optional match found nothing.
type Related struct {
	Relation Properties `json:"relation,omitempty"`
	Node     Properties `json:"class_metadata"`
}

// Class is the class node an individual is an exemplar of.
type Class struct {
	Tags       []string   `json:"tags"`
	Properties Properties `json:"class_metadata"`
}

// TaxonRow pairs a direct in_taxon target with an inherited one.
// At most one side is populated per row.
type TaxonRow struct {
	Taxon       Properties `json:"taxon"`
	ParentTaxon Properties `json:"parent_taxon"`
}

// RegionRow pairs a direct soma location with an inherited one.
type RegionRow struct {
	SomaLocation       Properties `json:"soma_location"`
	ParentSomaLocation Properties `json:"parent_soma_location"`
}

// ClusterRow is an ancestor cluster: the ancestor individual and, when it has
// one, the class it exemplifies.
type ClusterRow struct {
	Class      Properties `json:"class_metadata"`
	Individual Properties `json:"indv_metadata"`
}

// Result is the full query result for one individual. It is treated as
// immutable once returned by the graph source.
type Result struct {
	Node               string       `json:"node,omitempty"`
	IndividualMetadata Properties   `json:"indv_metadata"`
	Class              *Class       `json:"class,omitempty"`
	Parents            []Related    `json:"parents"`
	Markers            []Related    `json:"markers"`
	ParentMarkers      []Related    `json:"parent_markers"`
	References         []Related    `json:"references"`
	HomologousTo       []Related    `json:"homologous_to"`
	Taxonomy           []TaxonRow   `json:"taxonomy"`
	Region             []RegionRow  `json:"region"`
	ParentClusters     []ClusterRow `json:"parent_clusters"`
}

// HasClass reports whether the individual exemplifies a class node.
func (r *Result) HasClass() bool {
	return r.Class != nil && r.Class.Properties != nil
}

// ClassProperties returns the class properties or nil for class-less individuals.
func (r *Result) ClassProperties() Properties {
	if !r.HasClass() {
		return nil
	}
	return r.Class.Properties
}
