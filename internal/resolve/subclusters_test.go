package resolve

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/cellindex/internal/domain/graph"
)

func cluster(rank, indvIRI, indvLabel, classIRI, classLabel string) graph.ClusterRow {
	row := graph.ClusterRow{Individual: graph.Properties{
		"iri":            indvIRI,
		"cell_type_rank": []any{rank},
		"prefLabel":      []any{nil, indvLabel},
	}}
	if classIRI != "" {
		row.Class = graph.Properties{"iri": classIRI, "prefLabel": []any{classLabel}}
	}
	return row
}

// "Cell Type" precedes "Subclass" in the rank table, so it wins even though
// it is listed second.
func TestSubclusters_RankTableOrder(t *testing.T) {
	in := input(&graph.Result{ParentClusters: []graph.ClusterRow{
		cluster("Subclass", "i-subclass", "L5 IT", "", ""),
		cluster("Cell Type", "i-type", "L5 IT Tcap", "", ""),
	}})
	doc := newDoc()
	if err := Subclusters(nil, in, doc); err != nil {
		t.Fatalf("Subclusters: %v", err)
	}
	if !reflect.DeepEqual(doc.ParentClusters, []string{"i-type"}) {
		t.Errorf("ParentClusters = %v", doc.ParentClusters)
	}
	if !reflect.DeepEqual(doc.ParentClusterNames, []string{"L5 IT Tcap"}) {
		t.Errorf("ParentClusterNames = %v", doc.ParentClusterNames)
	}
}

func TestSubclusters_NoneOutranksCellType(t *testing.T) {
	in := input(&graph.Result{ParentClusters: []graph.ClusterRow{
		cluster("Cell Type", "i-type", "type", "", ""),
		cluster("None", "i-none", "none", "", ""),
	}})
	doc := newDoc()
	if err := Subclusters(nil, in, doc); err != nil {
		t.Fatalf("Subclusters: %v", err)
	}
	if !reflect.DeepEqual(doc.ParentClusters, []string{"i-none"}) {
		t.Errorf("ParentClusters = %v, want the None-ranked ancestor", doc.ParentClusters)
	}
}

func TestSubclusters_PrefersClassMetadata(t *testing.T) {
	in := input(&graph.Result{ParentClusters: []graph.ClusterRow{
		cluster("Subclass", "i-subclass", "individual label", "c-subclass", "class label"),
	}})
	doc := newDoc()
	if err := Subclusters(nil, in, doc); err != nil {
		t.Fatalf("Subclusters: %v", err)
	}
	if !reflect.DeepEqual(doc.ParentClusters, []string{"c-subclass"}) {
		t.Errorf("ParentClusters = %v", doc.ParentClusters)
	}
	if !reflect.DeepEqual(doc.ParentClusterNames, []string{"class label"}) {
		t.Errorf("ParentClusterNames = %v", doc.ParentClusterNames)
	}
}

func TestSubclusters_TieKeepsFirst(t *testing.T) {
	in := input(&graph.Result{ParentClusters: []graph.ClusterRow{
		cluster("Class", "first", "a", "", ""),
		cluster("Class", "second", "b", "", ""),
	}})
	doc := newDoc()
	if err := Subclusters(nil, in, doc); err != nil {
		t.Fatalf("Subclusters: %v", err)
	}
	if !reflect.DeepEqual(doc.ParentClusters, []string{"first"}) {
		t.Errorf("ParentClusters = %v", doc.ParentClusters)
	}
}

func TestSubclusters_SkipsUnknownRankAndMissingIndividual(t *testing.T) {
	in := input(&graph.Result{ParentClusters: []graph.ClusterRow{
		{Class: graph.Properties{"iri": "orphan"}},
		cluster("Supertype", "i-super", "super", "", ""),
	}})
	doc := newDoc()
	if err := Subclusters(nil, in, doc); err != nil {
		t.Fatalf("Subclusters: %v", err)
	}
	if doc.ParentClusters != nil || doc.ParentClusterNames != nil {
		t.Errorf("parent cluster set from unusable rows: %v %v", doc.ParentClusters, doc.ParentClusterNames)
	}
}

func TestClusterMeta(t *testing.T) {
	row := cluster("Class", "indv", "indv label", "cls", "cls label")
	if m := metaFor(row); !m.fromClass || m.IRI() != "cls" || m.PrefLabel() != "cls label" {
		t.Errorf("class variant = %+v", m)
	}
	row.Class = nil
	if m := metaFor(row); m.fromClass || m.IRI() != "indv" || m.PrefLabel() != "indv label" {
		t.Errorf("individual variant = %+v", m)
	}
}

func TestRankPriority(t *testing.T) {
	for i, r := range []string{"None", "Cell Type", "Subclass", "Class"} {
		p, ok := RankPriority(r)
		if !ok || p != i {
			t.Errorf("RankPriority(%q) = %d, %v; want %d", r, p, ok, i)
		}
	}
	if _, ok := RankPriority("Supertype"); ok {
		t.Error("unknown rank should not resolve")
	}
}
