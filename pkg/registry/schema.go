// pkg/registry/schema.go
package registry

import "askliberia/internal/models"

// SeedRegistry is the on-disk catalogue of homepage content cards the server
// seeds storage with when no admin has ever managed the section.
type SeedRegistry struct {
	Version     string                 `json:"version"`
	LastUpdated string                 `json:"lastUpdated"`
	Sponsored   []models.SponsoredItem `json:"sponsored"`
}

// seedSchema constrains a registry document before it is trusted. Kept as a
// plain map so it loads straight into gojsonschema.
var seedSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version", "sponsored"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string"},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"sponsored": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id", "title", "description", "imageUrl", "tag"},
				"properties": map[string]interface{}{
					"id":          map[string]interface{}{"type": "string", "minLength": 1},
					"title":       map[string]interface{}{"type": "string", "minLength": 1},
					"description": map[string]interface{}{"type": "string"},
					"imageUrl":    map[string]interface{}{"type": "string"},
					"tag":         map[string]interface{}{"type": "string"},
					"linkUrl":     map[string]interface{}{"type": "string"},
					"buttonText":  map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}
