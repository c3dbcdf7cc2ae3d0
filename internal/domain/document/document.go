package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind classifies a document by the entity it was extracted from.
type Kind string

// Document kinds.
const (
	KindIndividual Kind = "individual"
	KindClass      Kind = "class"
	KindReference  Kind = "reference"
	KindTaxonomy   Kind = "taxonomy"
	KindDataset    Kind = "dataset"
	KindOntology   Kind = "ontology"
)

// Type values written to the search collection for seeded entities.
const (
	TypeTaxonomy = "taxonomy"
	TypeDataset  = "dataset"
)

// Document is one flat, search-ready entity. Field names match the search
// collection schema. Relations holds relation-typed marker buckets
// (relation label -> marker IRIs) and is flattened into top-level keys.
type Document struct {
	Kind Kind `json:"-"`

	ID          string `json:"id"`
	IRI         string `json:"iri"`
	Curie       string `json:"curie,omitempty"`
	Label       string `json:"label,omitempty"`
	Type        string `json:"type,omitempty"`
	ShortForm   string `json:"short_form,omitempty"`
	AccessionID string `json:"accession_id,omitempty"`

	Comment       string   `json:"comment,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PrefLabel     string   `json:"prefLabel,omitempty"`
	LabelRDFS     []string `json:"label_rdfs,omitempty"`
	ExactSynonyms []string `json:"has_exact_synonym,omitempty"`
	Aliases       []string `json:"aliases,omitempty"`
	OBONamespace  []string `json:"hasOBONamespace,omitempty"`
	Definition    string   `json:"definition,omitempty"`
	VersionInfo   string   `json:"versionInfo,omitempty"`
	Symbol        string   `json:"symbol,omitempty"`
	ResolvedIRI   string   `json:"resolved_iri,omitempty"`

	Individual   string `json:"individual,omitempty"`
	CommentAllen string `json:"comment_allen,omitempty"`
	Rank         string `json:"rank,omitempty"`
	CellSetColor string `json:"cell_set_color,omitempty"`

	Parents              []string `json:"parents,omitempty"`
	ParentLabels         []string `json:"parent_labels,omitempty"`
	Markers              []string `json:"markers,omitempty"`
	MarkerLabels         []string `json:"marker_labels,omitempty"`
	NSForestMarkers      []string `json:"nsforest_markers,omitempty"`
	NSForestMarkerLabels []string `json:"nsforest_marker_labels,omitempty"`
	References           []string `json:"references,omitempty"`
	HomologousTo         []string `json:"homologous_to,omitempty"`
	HomologousToNames    []string `json:"homologous_to_names,omitempty"`
	ParentClusters       []string `json:"parent_clusters,omitempty"`
	ParentClusterNames   []string `json:"parent_cluster_names,omitempty"`
	AnatomicRegion       []string `json:"anatomic_region,omitempty"`

	Species     string `json:"species,omitempty"`
	TaxonomyIRI string `json:"taxonomy_iri,omitempty"`
	TaxonomyID  string `json:"taxonomy_id,omitempty"`

	// Bibliographic references.
	Creator               []string `json:"creator,omitempty"`
	ExactMatch            string   `json:"exactMatch,omitempty"`
	Description           []string `json:"description,omitempty"`
	Abstract              string   `json:"abstract,omitempty"`
	BibliographicCitation string   `json:"bibliographicCitation,omitempty"`
	Identifier            []string `json:"identifier,omitempty"`
	Date                  string   `json:"date,omitempty"`

	// Taxonomies.
	SpeciesLabel        string   `json:"species_label,omitempty"`
	CellTypesCount      string   `json:"cell_types_count,omitempty"`
	CellSubclassesCount string   `json:"cell_subclasses_count,omitempty"`
	CellClassesCount    string   `json:"cell_classes_count,omitempty"`
	Sex                 string   `json:"sex,omitempty"`
	Age                 string   `json:"age,omitempty"`
	PrimaryCitation     string   `json:"primary_citation,omitempty"`
	Header              string   `json:"header,omitempty"`
	MainDescription     string   `json:"mainDescription,omitempty"`
	Attribution         string   `json:"attribution,omitempty"`
	SubDescription      string   `json:"subDescription,omitempty"`
	Anatomy             string   `json:"anatomy,omitempty"`
	AnatomyImage        string   `json:"anatomy_image,omitempty"`
	Datasets            []string `json:"datasets,omitempty"`

	// Datasets.
	Taxonomy      string `json:"taxonomy,omitempty"`
	NucleiCount   string `json:"nuclei_count,omitempty"`
	CellCount     string `json:"cell_count,omitempty"`
	DownloadLink  string `json:"download_link,omitempty"`
	ExploreLink   string `json:"explore_link,omitempty"`
	Dataset       string `json:"dataset,omitempty"`
	Region        string `json:"region,omitempty"`
	DatasetNumber string `json:"dataset_number,omitempty"`

	// Ontology metadata.
	Version string `json:"version,omitempty"`

	Relations map[string][]string `json:"-"`
}

// New creates a document whose id and iri are both set to iri.
func New(kind Kind, iri string) *Document {
	return &Document{Kind: kind, ID: iri, IRI: iri}
}

// AddParent appends a parent class unless its IRI is already listed.
func (d *Document) AddParent(iri, label string) {
	if Contains(d.Parents, iri) {
		return
	}
	d.Parents = append(d.Parents, iri)
	d.ParentLabels = append(d.ParentLabels, label)
}

// AddMarker appends a marker unless its IRI is already listed. It reports
// whether the marker was new.
func (d *Document) AddMarker(iri, label string) bool {
	if Contains(d.Markers, iri) {
		return false
	}
	d.Markers = append(d.Markers, iri)
	d.MarkerLabels = append(d.MarkerLabels, label)
	return true
}

// AddRelation appends iri to the bucket named by relation.
func (d *Document) AddRelation(relation, iri string) {
	if d.Relations == nil {
		d.Relations = make(map[string][]string)
	}
	d.Relations[relation] = AppendUnique(d.Relations[relation], iri)
}

// AddReference appends a reference IRI unless already listed.
func (d *Document) AddReference(iri string) {
	d.References = AppendUnique(d.References, iri)
}

// AddHomolog appends a homologous entity unless its IRI is already listed.
func (d *Document) AddHomolog(iri, label string) {
	if Contains(d.HomologousTo, iri) {
		return
	}
	d.HomologousTo = append(d.HomologousTo, iri)
	d.HomologousToNames = append(d.HomologousToNames, label)
}

// SetParentCluster replaces the parent cluster with a single ancestor.
// Empty values leave the corresponding list empty.
func (d *Document) SetParentCluster(iri, name string) {
	d.ParentClusters = nil
	d.ParentClusterNames = nil
	if iri != "" {
		d.ParentClusters = []string{iri}
	}
	if name != "" {
		d.ParentClusterNames = []string{name}
	}
}

// fixedFields is the set of JSON names the struct owns; relation buckets
// never shadow them.
var fixedFields = func() map[string]bool {
	m := make(map[string]bool)
	t := reflect.TypeOf(Document{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			m[name] = true
		}
	}
	return m
}()

// documentFields drops the custom marshaler so the struct encodes normally.
type documentFields Document

// MarshalJSON encodes the fixed fields in declaration order followed by the
// relation buckets sorted by relation label. HTML characters are written raw.
func (d *Document) MarshalJSON() ([]byte, error) {
	base, err := encodeRaw((*documentFields)(d))
	if err != nil {
		return nil, err
	}
	if len(d.Relations) == 0 {
		return base, nil
	}

	names := make([]string, 0, len(d.Relations))
	for name, iris := range d.Relations {
		if name == "" || fixedFields[name] || len(iris) == 0 {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return base, nil
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, name := range names {
		key, err := encodeRaw(name)
		if err != nil {
			return nil, err
		}
		val, err := encodeRaw(d.Relations[name])
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", name, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeRaw is json.Marshal without HTML escaping.
func encodeRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Contains reports whether list holds v.
func Contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// AppendUnique appends v unless list already holds it.
func AppendUnique(list []string, v string) []string {
	if Contains(list, v) {
		return list
	}
	return append(list, v)
}
