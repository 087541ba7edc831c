// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"askliberia/internal/models"
)

// DefaultSeeds returns the compiled-in sponsored cards used when no registry
// file is configured or the configured one cannot be loaded.
func DefaultSeeds() []models.SponsoredItem {
	return []models.SponsoredItem{
		{
			ID:          "1",
			Title:       "Explore Kpatawee",
			Description: `The "Wonder of Bong" awaits. Official guide by the Ministry of Tourism.`,
			ImageURL:    "https://images.unsplash.com/photo-1518182170546-0766bb6f5656?q=80&w=2070&auto=format&fit=crop",
			Tag:         "TOURISM",
			ButtonText:  "Plan Trip",
		},
		{
			ID:          "2",
			Title:       "University of Liberia",
			Description: "2025 Admissions Open. Join the Department of Digital Arts & Sciences.",
			ImageURL:    "https://images.unsplash.com/photo-1523050854058-8df90110c9f1?q=80&w=2070&auto=format&fit=crop",
			Tag:         "EDUCATION",
			ButtonText:  "Apply Now",
		},
		{
			ID:          "3",
			Title:       "Boulevard Palace",
			Description: "Luxury stays in Sinkor. Book your business suite today.",
			ImageURL:    "https://images.unsplash.com/photo-1560185893-a55cbc8c57e8?q=80&w=2070&auto=format&fit=crop",
			Tag:         "SPONSORED",
			ButtonText:  "View Rates",
		},
	}
}

// LoadRegistry reads and validates a seed registry file. The document is
// checked against the schema before unmarshalling so a malformed file is
// rejected with a field-level message instead of half-applied.
func LoadRegistry(path string) (*SeedRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}

	schemaLoader := gojsonschema.NewGoLoader(seedSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate registry %s: %w", path, err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("registry %s invalid: %s", path, strings.Join(problems, "; "))
	}

	var reg SeedRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadSeeds resolves the sponsored seed set: the validated registry file when
// path is non-empty and loadable, otherwise the compiled-in defaults. The
// second return reports whether the file was used.
func LoadSeeds(path string) ([]models.SponsoredItem, bool, error) {
	if path == "" {
		return DefaultSeeds(), false, nil
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		return DefaultSeeds(), false, err
	}
	return reg.Sponsored, true, nil
}
