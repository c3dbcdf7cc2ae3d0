package aggregate

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/index"
)

func rootDoc(iri string) *document.Document {
	d := document.New(document.KindIndividual, iri)
	d.Rank = RootRank
	d.Parents = []string{"existing"}
	d.ParentLabels = []string{"existing"}
	return d
}

func TestRegistry_Observe(t *testing.T) {
	reg := &registry{}

	anchor := document.New(document.KindIndividual, "a")
	anchor.PrefLabel = "All cells (mouse)"
	root := document.New(document.KindIndividual, "r")
	root.Rank = RootRank
	plain := document.New(document.KindIndividual, "p")
	plain.Rank = "Subclass"

	for _, d := range []*document.Document{anchor, root, plain, root} {
		reg.observe(d)
	}
	if !reflect.DeepEqual(reg.anchors, []string{"a"}) {
		t.Errorf("anchors = %v", reg.anchors)
	}
	if !reflect.DeepEqual(reg.roots, []string{"r"}) {
		t.Errorf("roots = %v", reg.roots)
	}
}

func TestBackfill_FirstMatchingAnchorWins(t *testing.T) {
	store := index.New()
	store.PutIfAbsent(rootDoc("http://x/CS1_101"))

	n := backfill(store, &registry{
		roots:   []string{"http://x/CS1_101"},
		anchors: []string{"http://y/other", "http://x/CS1_000", "http://x/CS1_999"},
	})
	if n != 1 {
		t.Fatalf("linked = %d, want 1", n)
	}
	d, _ := store.Get("http://x/CS1_101")
	if !reflect.DeepEqual(d.Parents, []string{"http://x/CS1_000"}) {
		t.Errorf("Parents = %v", d.Parents)
	}
}

func TestBackfill_NoMatchKeepsParents(t *testing.T) {
	store := index.New()
	store.PutIfAbsent(rootDoc("http://x/CS1_101"))

	n := backfill(store, &registry{
		roots:   []string{"http://x/CS1_101", "missing"},
		anchors: []string{"http://y/CS2_000"},
	})
	if n != 0 {
		t.Errorf("linked = %d, want 0", n)
	}
	d, _ := store.Get("http://x/CS1_101")
	if !reflect.DeepEqual(d.Parents, []string{"existing"}) {
		t.Errorf("Parents = %v, want untouched", d.Parents)
	}
}

func TestBackfill_SkipsSelfAndShortIRIs(t *testing.T) {
	store := index.New()
	store.PutIfAbsent(rootDoc("http://x/CS1_000"))
	store.PutIfAbsent(rootDoc("abc"))

	n := backfill(store, &registry{
		roots:   []string{"http://x/CS1_000", "abc"},
		anchors: []string{"http://x/CS1_000", "zabcz"},
	})
	if n != 0 {
		t.Errorf("linked = %d, want 0", n)
	}
}
