package aggregate

import (
	"github.com/kailas-cloud/cellindex/internal/domain/document"
	"github.com/kailas-cloud/cellindex/internal/domain/taxonomy"
	"github.com/kailas-cloud/cellindex/internal/extract"
	"github.com/kailas-cloud/cellindex/internal/index"
	"github.com/kailas-cloud/cellindex/internal/resolve"
)

// seedTaxonomies indexes every taxonomy with its datasets and references
// before any individual is processed. It returns the number of taxonomy and
// dataset documents written.
func seedTaxonomies(
	store *index.Store, catalog *taxonomy.Catalog, species taxonomy.SpeciesMapping,
) (taxonomies, datasets int) {
	tx := store.Begin()
	for _, rec := range catalog.Records() {
		doc := extract.Taxonomy(rec, species)
		if doc == nil {
			continue
		}

		for _, ds := range rec.Datasets {
			d := extract.Dataset(ds.Metadata, doc.Label)
			if d == nil {
				continue
			}
			tx.Put(d)
			doc.Datasets = document.AppendUnique(doc.Datasets, d.IRI)
			datasets++
		}

		resolve.AddReferences(tx, rec.References, doc)
		tx.Put(doc)
		taxonomies++
	}
	// A fresh transaction cannot be closed.
	_, _ = tx.Commit()
	return taxonomies, datasets
}
