// Package taxonomy models the taxonomy/dataset table the graph source returns
// once per run, the species mapping derived from the taxonomy details file,
// and the ontology version metadata.
package taxonomy

import (
	"strings"

	"github.com/kailas-cloud/cellindex/internal/domain/graph"
)

// Dataset is one dataset node attached to a taxonomy.
type Dataset struct {
	Metadata graph.Properties `json:"dataset_metadata"`
}

// Record is a taxonomy node with its datasets and bibliographic references.
type Record struct {
	Key        string           `json:"key"`
	Taxonomy   graph.Properties `json:"taxonomy"`
	Datasets   []Dataset        `json:"datasets"`
	References []graph.Related  `json:"references"`
}

// BrainRegions returns the region curies the taxonomy declares.
func (r *Record) BrainRegions() []string {
	return r.Taxonomy.Strings("has_brain_region")
}

// Catalog is the ordered taxonomy table. Keys are taxonomy labels such as
// "CCN202002013"; accession ids of individuals embed them.
type Catalog struct {
	keys    []string
	records map[string]*Record
}

// NewCatalog builds a catalog preserving the order records were given in.
// A later record with a duplicate key replaces the earlier one in place.
func NewCatalog(records ...*Record) *Catalog {
	c := &Catalog{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		c.Add(r)
	}
	return c
}

// Add appends a record.
func (c *Catalog) Add(r *Record) {
	if r == nil || r.Key == "" {
		return
	}
	if _, ok := c.records[r.Key]; !ok {
		c.keys = append(c.keys, r.Key)
	}
	c.records[r.Key] = r
}

// Len returns the number of taxonomies.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Get returns the record for key.
func (c *Catalog) Get(key string) (*Record, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.records[key]
	return r, ok
}

// Records returns all records in catalog order.
func (c *Catalog) Records() []*Record {
	if c == nil {
		return nil
	}
	out := make([]*Record, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.records[k])
	}
	return out
}

// ForAccession returns the first taxonomy, in catalog order, whose key is a
// substring of the accession id.
func (c *Catalog) ForAccession(accessionID string) (*Record, bool) {
	if c == nil || accessionID == "" {
		return nil, false
	}
	for _, k := range c.keys {
		if strings.Contains(accessionID, k) {
			return c.records[k], true
		}
	}
	return nil, false
}

// Ontology is the name/version metadata of the loaded ontology.
type Ontology struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
