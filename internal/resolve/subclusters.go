package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// Ranks orders cell type ranks by priority: a lower index wins when picking
// the parent cluster. "None" ranks first; downstream consumers rely on this
// order, so it is kept as is.
var Ranks = []string{"None", "Cell Type", "Subclass", "Class"}

// RankPriority returns the index of rank in Ranks.
func RankPriority(rank string) (int, bool) {
	for i, r := range Ranks {
		if r == rank {
			return i, true
		}
	}
	return 0, false
}

// clusterMeta is the metadata used for a parent cluster: the ancestor's class
// when it has one, otherwise the ancestor individual itself.
type clusterMeta struct {
	props     graph.Properties
	fromClass bool
}

func metaFor(row graph.ClusterRow) clusterMeta {
	if row.Class.IRI() != "" {
		return clusterMeta{props: row.Class, fromClass: true}
	}
	return clusterMeta{props: row.Individual}
}

func (m clusterMeta) IRI() string { return m.props.IRI() }

// PrefLabel returns the first non-empty preferred label.
func (m clusterMeta) PrefLabel() string { return m.props.String("prefLabel") }

// Subclusters picks the single ancestor cluster with the best rank priority;
// ties go to the first encountered. Ancestors with an unknown rank are
// skipped.
func Subclusters(_ *index.Txn, in *Input, doc *document.Document) error {
	var (
		best  clusterMeta
		prio  int
		found bool
	)
	for _, row := range in.Result.ParentClusters {
		if row.Individual == nil {
			continue
		}
		p, ok := RankPriority(row.Individual.String("cell_type_rank"))
		if !ok {
			continue
		}
		if !found || p < prio {
			best, prio, found = metaFor(row), p, true
		}
	}
	if !found {
		return nil
	}
	doc.SetParentCluster(best.IRI(), best.PrefLabel())
	return nil
}
