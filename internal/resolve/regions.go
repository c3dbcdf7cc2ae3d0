package resolve

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/graph"
	"github.com/kailas-cloud/cellindex/internal/index"
)

// BrainRegions intersects the soma locations found on the individual (direct
// and inherited) with the brain regions its taxonomy declares, writing the
// labels in the taxonomy's order. No taxonomy, no declared regions, or no
// locations leave anatomic_region unset.
func BrainRegions(_ *index.Txn, in *Input, doc *document.Document) error {
	labels := make(map[string]string)
	for _, row := range in.Result.Region {
		for _, loc := range [...]graph.Properties{row.SomaLocation, row.ParentSomaLocation} {
			curie, label := loc.String("curie"), loc.Label()
			if curie != "" && label != "" {
				labels[curie] = label
			}
		}
	}
	if len(labels) == 0 {
		return nil
	}

	rec, ok := in.Catalog.ForAccession(doc.AccessionID)
	if !ok {
		return nil
	}

	var regions []string
	for _, curie := range rec.BrainRegions() {
		if label, ok := labels[curie]; ok {
			regions = document.AppendUnique(regions, label)
		}
	}
	if len(regions) > 0 {
		doc.AnatomicRegion = regions
	}
	return nil
}
