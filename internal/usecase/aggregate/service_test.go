package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/kailas-cloud/cellindex/internal/domain"
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	"github.com/kailas-cloud/cellindex/internal/extract"
)

// --- Mocks ---

type mockGraph struct {
	mu       sync.Mutex
	ids      []string
	details  map[string]*graph.Result
	catalog  *taxonomy.Catalog
	meta     taxonomy.Ontology
	listErr  error
	detErr   error
	metaErr  error
	detCalls int
}

func (m *mockGraph) ListIndividuals(_ context.Context) ([]string, error) {
	return m.ids, m.listErr
}

func (m *mockGraph) IndividualDetails(_ context.Context, accession string) (*graph.Result, error) {
	m.mu.Lock()
	m.detCalls++
	m.mu.Unlock()
	if m.detErr != nil {
		return nil, m.detErr
	}
	res, ok := m.details[accession]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

func (m *mockGraph) ListTaxonomies(_ context.Context) (*taxonomy.Catalog, error) {
	if m.catalog == nil {
		return taxonomy.NewCatalog(), nil
	}
	return m.catalog, nil
}

func (m *mockGraph) OntologyMetadata(_ context.Context) (taxonomy.Ontology, error) {
	return m.meta, m.metaErr
}

type mockSink struct {
	docs  []*document.Document
	calls int
	err   error
}

func (m *mockSink) Write(_ context.Context, docs []*document.Document) error {
	m.calls++
	m.docs = docs
	return m.err
}

// --- Fixtures ---

const ns = "http://purl.obolibrary.org/obo/PCL_"

func class(iri, label string) graph.Properties {
	return graph.Properties{"iri": iri, "curie": iri, "label": label}
}

// individual builds a result whose class IRI is ns+suffix.
func individual(suffix, rank, prefLabel string) *graph.Result {
	cls := class(ns+suffix, "class "+suffix)
	if prefLabel != "" {
		cls["prefLabel"] = []any{prefLabel}
	}
	return &graph.Result{
		IndividualMetadata: graph.Properties{
			"iri":            ns + "indv" + suffix,
			"curie":          "PCL:" + suffix,
			"cluster_id":     []any{"CS202002013_" + suffix},
			"cell_type_rank": []any{rank},
		},
		Class: &graph.Class{Tags: []string{"Entity", "Class", "Cell"}, Properties: cls},
	}
}

func testCatalog() *taxonomy.Catalog {
	return taxonomy.NewCatalog(&taxonomy.Record{
		Key: "CS202002013",
		Taxonomy: graph.Properties{
			"iri":   "https://purl.brain-bican.org/taxonomy/CS202002013",
			"curie": "CCN:CS202002013",
			"label": "CS202002013",
		},
		Datasets: []taxonomy.Dataset{
			{Metadata: graph.Properties{"iri": "https://example.org/dataset/1", "label": "dataset 1"}},
			{Metadata: nil},
		},
		References: []graph.Related{
			{Node: graph.Properties{"iri": "https://doi.org/10.1/x", "label": "paper"}},
		},
	})
}

func newGraph(results map[string]*graph.Result, ids ...string) *mockGraph {
	return &mockGraph{
		ids:     ids,
		details: results,
		catalog: testCatalog(),
		meta:    taxonomy.Ontology{Name: "pcl", Version: "v1"},
	}
}

func byIRI(docs []*document.Document) map[string]*document.Document {
	out := make(map[string]*document.Document, len(docs))
	for _, d := range docs {
		out[d.IRI] = d
	}
	return out
}

// --- Tests ---

func TestRun_SharedEntityIndexedOnce(t *testing.T) {
	shared := class("http://purl.obolibrary.org/obo/CL_0000540", "neuron")

	a := individual("0000001", "Cell Type", "")
	a.Parents = []graph.Related{{Node: shared}}
	b := individual("0000002", "Cell Type", "")
	b.Markers = []graph.Related{{Relation: graph.Properties{"label": "expresses"}, Node: shared}}

	g := newGraph(map[string]*graph.Result{"0000001": a, "0000002": b}, "PCL:0000001", "PCL:0000002")
	sink := &mockSink{}

	report, err := New(g, sink).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Resolved != 2 || len(report.Failures) != 0 {
		t.Errorf("report = %+v", report)
	}

	count := 0
	seen := make(map[string]bool)
	for _, d := range sink.docs {
		if seen[d.IRI] {
			t.Errorf("duplicate document for %s", d.IRI)
		}
		seen[d.IRI] = true
		if d.IRI == shared.IRI() {
			count++
		}
		if d.ID != d.IRI {
			t.Errorf("id %q != iri %q", d.ID, d.IRI)
		}
		for _, tag := range d.Tags {
			if document.Contains(document.ReservedTags, tag) {
				t.Errorf("%s carries reserved tag %q", d.IRI, tag)
			}
		}
	}
	if count != 1 {
		t.Fatalf("shared entity indexed %d times, want 1", count)
	}

	docs := byIRI(sink.docs)
	if !document.Contains(docs[ns+"0000001"].Parents, shared.IRI()) {
		t.Error("shared entity not reachable from A's parents")
	}
	if !document.Contains(docs[ns+"0000002"].Markers, shared.IRI()) {
		t.Error("shared entity not reachable from B's markers")
	}
}

func TestRun_BackfillsRootFromAnchor(t *testing.T) {
	anchor := individual("0011000", "None", "All cells")
	root := individual("0011001", "Class", "Neurons")
	other := individual("0022001", "Class", "Glia")

	g := newGraph(map[string]*graph.Result{
		"0011000": anchor, "0011001": root, "0022001": other,
	}, "PCL:0011000", "PCL:0011001", "PCL:0022001")
	sink := &mockSink{}

	report, err := New(g, sink).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Backfilled != 1 {
		t.Errorf("Backfilled = %d, want 1", report.Backfilled)
	}

	docs := byIRI(sink.docs)
	r := docs[ns+"0011001"]
	if !reflect.DeepEqual(r.Parents, []string{ns + "0011000"}) {
		t.Errorf("Parents = %v", r.Parents)
	}
	if !reflect.DeepEqual(r.ParentLabels, []string{AnchorLabel}) {
		t.Errorf("ParentLabels = %v", r.ParentLabels)
	}
	if !reflect.DeepEqual(r.ParentClusters, []string{ns + "0011000"}) {
		t.Errorf("ParentClusters = %v", r.ParentClusters)
	}
	if !reflect.DeepEqual(r.ParentClusterNames, []string{AnchorLabel}) {
		t.Errorf("ParentClusterNames = %v", r.ParentClusterNames)
	}

	if o := docs[ns+"0022001"]; o.Parents != nil {
		t.Errorf("root without anchor got parents %v", o.Parents)
	}
}

func TestRun_DataFaultSkipsIndividual(t *testing.T) {
	bad := individual("0000001", "Cell Type", "")
	bad.Class.Properties["has_nsforest_marker"] = []any{"Missing"}
	bad.Parents = []graph.Related{{Node: class("http://example.org/only-bad", "only bad")}}
	good := individual("0000002", "Cell Type", "")

	g := newGraph(map[string]*graph.Result{"0000001": bad, "0000002": good}, "PCL:0000001", "PCL:0000002")
	sink := &mockSink{}

	report, err := New(g, sink).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Resolved != 1 || len(report.Failures) != 1 {
		t.Fatalf("report = %+v", report)
	}
	f := report.Failures[0]
	var lookupErr *domain.MarkerLookupError
	if f.Individual != "PCL:0000001" || !errors.As(f.Err, &lookupErr) || lookupErr.Label != "Missing" {
		t.Errorf("failure = %+v", f)
	}

	docs := byIRI(sink.docs)
	if _, ok := docs[ns+"0000001"]; ok {
		t.Error("failed individual was indexed")
	}
	if _, ok := docs["http://example.org/only-bad"]; ok {
		t.Error("entity staged by a failed individual leaked into the index")
	}
	if _, ok := docs[ns+"0000002"]; !ok {
		t.Error("individual after the fault was not processed")
	}
}

func TestRun_FailOnDataError(t *testing.T) {
	bad := individual("0000001", "Cell Type", "")
	bad.Class.Properties["has_nsforest_marker"] = []any{"Missing"}
	g := newGraph(map[string]*graph.Result{"0000001": bad}, "PCL:0000001")
	sink := &mockSink{}

	_, err := New(g, sink).WithFailOnDataError(true).Run(context.Background())
	if !errors.Is(err, domain.ErrMarkerLabelNotFound) {
		t.Fatalf("err = %v, want ErrMarkerLabelNotFound", err)
	}
	if sink.calls != 0 {
		t.Error("sink called after a failed run")
	}
}

func TestRun_MissingIndividualRecorded(t *testing.T) {
	g := newGraph(map[string]*graph.Result{"0000002": individual("0000002", "Cell Type", "")},
		"PCL:0000001", "PCL:0000002")

	report, err := New(g, &mockSink{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Failures) != 1 || !errors.Is(report.Failures[0].Err, domain.ErrNotFound) {
		t.Errorf("Failures = %+v", report.Failures)
	}
}

func TestRun_FailOnDataErrorIgnoresMissingIndividual(t *testing.T) {
	g := newGraph(map[string]*graph.Result{"0000002": individual("0000002", "Cell Type", "")},
		"PCL:0000001", "PCL:0000002")
	sink := &mockSink{}

	report, err := New(g, sink).WithFailOnDataError(true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Failures) != 1 || !errors.Is(report.Failures[0].Err, domain.ErrNotFound) {
		t.Errorf("Failures = %+v", report.Failures)
	}
	if report.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", report.Resolved)
	}
	if sink.calls != 1 {
		t.Errorf("sink calls = %d, want 1", sink.calls)
	}
}

func TestRun_GraphErrorStopsRun(t *testing.T) {
	g := newGraph(nil, "PCL:0000001")
	g.detErr = errors.New("connection reset")
	sink := &mockSink{}

	_, err := New(g, sink).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if sink.calls != 0 {
		t.Error("sink called after graph failure")
	}
}

func TestRun_ListErrorStopsRun(t *testing.T) {
	g := newGraph(nil)
	g.listErr = errors.New("timeout")

	if _, err := New(g, &mockSink{}).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_SinkError(t *testing.T) {
	g := newGraph(nil)
	sink := &mockSink{err: errors.New("disk full")}

	if _, err := New(g, sink).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_SeedsTaxonomiesAndOntology(t *testing.T) {
	g := newGraph(nil)
	sink := &mockSink{}

	report, err := New(g, sink).
		WithSpecies(taxonomy.SpeciesMapping{"202002013": "Mus musculus"}).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Taxonomies != 1 || report.Datasets != 1 {
		t.Errorf("report = %+v", report)
	}

	docs := byIRI(sink.docs)
	tax := docs["https://purl.brain-bican.org/taxonomy/CS202002013"]
	if tax == nil || tax.Type != document.TypeTaxonomy {
		t.Fatalf("taxonomy document = %+v", tax)
	}
	if tax.SpeciesLabel != "Mus musculus" {
		t.Errorf("SpeciesLabel = %q", tax.SpeciesLabel)
	}
	if !reflect.DeepEqual(tax.Datasets, []string{"https://example.org/dataset/1"}) {
		t.Errorf("Datasets = %v", tax.Datasets)
	}
	if !reflect.DeepEqual(tax.References, []string{"https://doi.org/10.1/x"}) {
		t.Errorf("References = %v", tax.References)
	}
	if ds := docs["https://example.org/dataset/1"]; ds == nil || ds.Taxonomy != "CS202002013" {
		t.Errorf("dataset document = %+v", ds)
	}
	if ref := docs["https://doi.org/10.1/x"]; ref == nil || ref.Kind != document.KindReference {
		t.Errorf("reference document = %+v", ref)
	}
	ont := docs[extract.OntologyID]
	if ont == nil || ont.Label != "pcl" || ont.Version != "v1" {
		t.Errorf("ontology document = %+v", ont)
	}
	if last := sink.docs[len(sink.docs)-1]; last.IRI != extract.OntologyID {
		t.Errorf("last document = %s, want ontology", last.IRI)
	}
}

func TestRun_IndividualTaxonomyFields(t *testing.T) {
	res := individual("0000001", "Cell Type", "")
	res.Taxonomy = []graph.TaxonRow{{Taxon: graph.Properties{"label": "Mus musculus"}}}
	g := newGraph(map[string]*graph.Result{"0000001": res}, "PCL:0000001")
	sink := &mockSink{}

	if _, err := New(g, sink).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	d := byIRI(sink.docs)[ns+"0000001"]
	if d.Species != "Mus musculus" || d.TaxonomyID != "CS202002013" || d.Individual != "PCL:0000001" {
		t.Errorf("document = %+v", d)
	}
}

func TestBuild_DeterministicAcrossWorkers(t *testing.T) {
	results := make(map[string]*graph.Result)
	var ids []string
	for _, s := range []string{"0011000", "0011001", "0011002", "0011003", "0011004"} {
		r := individual(s, "Cell Type", "")
		r.Parents = []graph.Related{{Node: class("http://example.org/p"+s[len(s)-1:], "p")}}
		results[s] = r
		ids = append(ids, "PCL:"+s)
	}

	build := func(workers, window int) []byte {
		store, _, err := New(newGraph(results, ids...), nil).
			WithFetchWorkers(workers).
			WithWindow(window).
			Build(context.Background())
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		b, err := json.Marshal(store.Documents())
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		return b
	}

	serial := build(1, 1)
	if parallel := build(8, 2); string(serial) != string(parallel) {
		t.Errorf("output differs between serial and parallel fetch")
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	g := newGraph(map[string]*graph.Result{"0000001": individual("0000001", "Cell Type", "")}, "PCL:0000001")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(g, &mockSink{}).Run(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestAccession(t *testing.T) {
	if got := Accession("PCL:0011528"); got != "0011528" {
		t.Errorf("Accession = %q", got)
	}
	if got := Accession("0011528"); got != "0011528" {
		t.Errorf("Accession = %q", got)
	}
}
