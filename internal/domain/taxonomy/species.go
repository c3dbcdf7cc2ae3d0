package taxonomy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSpecies maps the abbreviations used in the taxonomy details file to
// NCBITaxon species labels.
var DefaultSpecies = map[string]string{
	"mouse":    "Mus musculus",
	"human":    "Homo sapiens",
	"marmoset": "Callithrix jacchus",
}

// NormalizeID strips the CCN/CS prefixes so taxonomy labels and accession
// fragments compare on the numeric part only.
func NormalizeID(id string) string {
	return strings.ReplaceAll(strings.ReplaceAll(id, "CCN", ""), "CS", "")
}

// SpeciesMapping maps a normalised taxonomy id to a species label.
type SpeciesMapping map[string]string

// Lookup resolves a taxonomy id, normalising it first.
func (m SpeciesMapping) Lookup(taxonomyID string) (string, bool) {
	s, ok := m[NormalizeID(taxonomyID)]
	return s, ok
}

// detailsEntry is one element of taxonomy_details.yaml.
type detailsEntry struct {
	TaxonomyID  string   `yaml:"Taxonomy_id"`
	SpeciesAbbv []string `yaml:"Species_abbv"`
}

// ParseDetails builds a species mapping from taxonomy details YAML.
// abbreviations maps lower-cased species abbreviations to species labels.
func ParseDetails(data []byte, abbreviations map[string]string) (SpeciesMapping, error) {
	var entries []detailsEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse taxonomy details: %w", err)
	}

	m := make(SpeciesMapping, len(entries))
	for i, e := range entries {
		if e.TaxonomyID == "" {
			return nil, fmt.Errorf("taxonomy details entry %d: Taxonomy_id is required", i)
		}
		if len(e.SpeciesAbbv) == 0 {
			return nil, fmt.Errorf("taxonomy details %s: Species_abbv is required", e.TaxonomyID)
		}
		abbv := strings.ToLower(e.SpeciesAbbv[0])
		species, ok := abbreviations[abbv]
		if !ok {
			return nil, fmt.Errorf("taxonomy details %s: unknown species abbreviation %q", e.TaxonomyID, abbv)
		}
		m[NormalizeID(e.TaxonomyID)] = species
	}
	return m, nil
}

// LoadDetails reads taxonomy details from a local path or an http(s) URL.
func LoadDetails(ctx context.Context, location string, abbreviations map[string]string) (SpeciesMapping, error) {
	data, err := readLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	return ParseDetails(data, abbreviations)
}

func readLocation(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(filepath.Clean(location))
		if err != nil {
			return nil, fmt.Errorf("read taxonomy details %s: %w", location, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch taxonomy details: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch taxonomy details: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy details body: %w", err)
	}
	return data, nil
}
