// Command catalogdiff runs the same manifest of lookup requests against two
// catalog configurations ("baseline" and "candidate") and reports where
// their resolved URIs diverge, e.g. before/after a catalog file edit.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oasiscat/xmlresolve/pkg/catalog"
)

// RequestSpec is one line of the manifest: a named lookup request.
type RequestSpec struct {
	ID         string `json:"id"`
	EntityName string `json:"entity_name,omitempty"`
	SystemID   string `json:"system_id,omitempty"`
	PublicID   string `json:"public_id,omitempty"`
	URI        string `json:"uri,omitempty"`
	Nature     string `json:"nature,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
}

// Discrepancy reports one manifest entry whose resolution differs between
// the baseline and candidate catalog sets.
type Discrepancy struct {
	ID            string `json:"id"`
	BaselineFound bool   `json:"baseline_found"`
	BaselineURI   string `json:"baseline_uri,omitempty"`
	CandidateFound bool  `json:"candidate_found"`
	CandidateURI  string `json:"candidate_uri,omitempty"`
}

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: catalogdiff <manifest.json> <baseline-catalog> <candidate-catalog> [more-catalogs...]")
		os.Exit(2)
	}
	manifestPath := os.Args[1]
	baselineCatalogs := []string{os.Args[2]}
	candidateCatalogs := os.Args[3:]

	specs, err := loadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalogdiff: %v\n", err)
		os.Exit(2)
	}

	baseline := newManager(baselineCatalogs)
	candidate := newManager(candidateCatalogs)

	var discrepancies []Discrepancy
	for _, s := range specs {
		b := lookup(baseline, s)
		c := lookup(candidate, s)
		if b.Found != c.Found || b.ResolvedURI != c.ResolvedURI {
			discrepancies = append(discrepancies, Discrepancy{
				ID:             s.ID,
				BaselineFound:  b.Found,
				BaselineURI:    b.ResolvedURI,
				CandidateFound: c.Found,
				CandidateURI:   c.ResolvedURI,
			})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(discrepancies)

	fmt.Fprintf(os.Stderr, "catalogdiff: %d/%d requests diverged\n", len(discrepancies), len(specs))
	if len(discrepancies) > 0 {
		os.Exit(1)
	}
}

func newManager(catalogFiles []string) *catalog.CatalogManager {
	cfg := catalog.NewConfig()
	cfg.CatalogFiles = catalogFiles
	return catalog.NewManager(cfg, catalog.NewLoader(nil))
}

func lookup(m *catalog.CatalogManager, s RequestSpec) catalog.LookupResult {
	if s.URI != "" && s.SystemID == "" && s.PublicID == "" && s.EntityName == "" {
		return m.LookupURI(s.URI, s.Nature, s.Purpose)
	}
	return m.LookupEntity(&catalog.Request{
		EntityName: s.EntityName,
		SystemID:   s.SystemID,
		PublicID:   s.PublicID,
		Nature:     s.Nature,
		Purpose:    s.Purpose,
	})
}

func loadManifest(path string) ([]RequestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs []RequestSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}
