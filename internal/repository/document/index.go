package document

import (
	"strings"

	"github.com/kailas-cloud/cellindex/internal/db"
)

// buildIndex creates the corpus search index over the document keys.
// TEXT fields need a search module that indexes JSON text (Redis 8+);
// valkey-search gets the TAG-only schema.
func buildIndex(prefix string, textSearch bool) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName(prefix)).
		Prefix(prefix+"doc:").
		JSONTag("$.curie", "curie").
		JSONTag("$.type", "type").
		JSONTag("$.species", "species").
		JSONTag("$.rank", "rank").
		JSONTag("$.taxonomy_id", "taxonomy_id").
		JSONTag("$.tags[*]", "tags").
		JSONTag("$.parents[*]", "parents").
		JSONTag("$.markers[*]", "markers")

	if textSearch {
		b = b.
			JSONText("$.label", "label", 2).
			JSONText("$.prefLabel", "prefLabel", 2).
			JSONText("$.has_exact_synonym[*]", "synonyms", 1).
			JSONText("$.definition", "definition", 0.5)
	}
	return b.Build()
}

func indexName(prefix string) string {
	return strings.TrimSuffix(prefix, ":") + ":idx"
}
