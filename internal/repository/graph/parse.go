package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	domgraph "github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
)

// parseDetails converts an individual details record into a typed result.
func parseDetails(rec *neo4j.Record) *domgraph.Result {
	res := &domgraph.Result{
		IndividualMetadata: props(value(rec, "indv_metadata")),
		Class:              firstClass(value(rec, "class_metadata")),
		Parents:            related(value(rec, "parents")),
		Markers:            related(value(rec, "markers")),
		ParentMarkers:      related(value(rec, "parent_markers")),
		References:         related(value(rec, "references")),
		HomologousTo:       related(value(rec, "homologous_to")),
	}

	for _, row := range rows(value(rec, "taxonomy")) {
		res.Taxonomy = append(res.Taxonomy, domgraph.TaxonRow{
			Taxon:       props(row["taxon"]),
			ParentTaxon: props(row["parent_taxon"]),
		})
	}
	for _, row := range rows(value(rec, "region")) {
		res.Region = append(res.Region, domgraph.RegionRow{
			SomaLocation:       props(row["soma_location"]),
			ParentSomaLocation: props(row["parent_soma_location"]),
		})
	}
	for _, row := range rows(value(rec, "parent_clusters")) {
		res.ParentClusters = append(res.ParentClusters, domgraph.ClusterRow{
			Class:      props(row["class_metadata"]),
			Individual: props(row["indv_metadata"]),
		})
	}
	return res
}

// parseTaxonomy converts a taxonomy record. Records without a label are
// dropped since the label keys the catalog.
func parseTaxonomy(rec *neo4j.Record) (*taxonomy.Record, bool) {
	tax := props(value(rec, "taxonomy"))
	if tax == nil {
		return nil, false
	}
	key := tax.Label()
	if key == "" {
		return nil, false
	}

	r := &taxonomy.Record{
		Key:        key,
		Taxonomy:   tax,
		References: related(value(rec, "references")),
	}
	for _, row := range rows(value(rec, "datasets")) {
		r.Datasets = append(r.Datasets, taxonomy.Dataset{Metadata: props(row["dataset_metadata"])})
	}
	return r, true
}

// parseOntology reads label and versionInfo from the ontology node.
func parseOntology(rec *neo4j.Record) taxonomy.Ontology {
	meta := props(value(rec, "ont_metadata"))
	return taxonomy.Ontology{
		Name:    meta.String("label"),
		Version: meta.String("versionInfo"),
	}
}

// firstClass picks the first collected class entry that matched a node.
func firstClass(v any) *domgraph.Class {
	for _, row := range rows(v) {
		p := props(row["class_metadata"])
		if p == nil {
			continue
		}
		return &domgraph.Class{Tags: stringList(row["tags"]), Properties: p}
	}
	return nil
}

func related(v any) []domgraph.Related {
	list := rows(v)
	if len(list) == 0 {
		return nil
	}
	out := make([]domgraph.Related, 0, len(list))
	for _, row := range list {
		out = append(out, domgraph.Related{
			Relation: props(row["relation"]),
			Node:     props(row["class_metadata"]),
		})
	}
	return out
}

func value(rec *neo4j.Record, key string) any {
	if rec == nil {
		return nil
	}
	v, _ := rec.Get(key)
	return v
}

func rows(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func props(v any) domgraph.Properties {
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return nil
		}
		return domgraph.Properties(m)
	case neo4j.Node:
		return domgraph.Properties(m.Props)
	default:
		return nil
	}
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
