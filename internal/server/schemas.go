// internal/server/schemas.go
package server

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"askliberia/internal/common/errors"
)

// Request payload schemas for the write endpoints that accept free-form
// client input. Validated before the body is trusted.

var apiRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"email", "type"},
	"properties": map[string]interface{}{
		"email":        map[string]interface{}{"type": "string", "format": "email", "minLength": 3},
		"organization": map[string]interface{}{"type": "string"},
		"type":         map[string]interface{}{"type": "string", "enum": []interface{}{"free", "pro", "partner"}},
	},
}

var donationSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"amount", "method"},
	"properties": map[string]interface{}{
		"amount": map[string]interface{}{"type": "string", "minLength": 1},
		"method": map[string]interface{}{"type": "string", "enum": []interface{}{"local", "international"}},
	},
}

var sponsoredSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"title", "description", "imageUrl", "tag"},
	"properties": map[string]interface{}{
		"title":       map[string]interface{}{"type": "string", "minLength": 1},
		"description": map[string]interface{}{"type": "string"},
		"imageUrl":    map[string]interface{}{"type": "string", "minLength": 1},
		"tag":         map[string]interface{}{"type": "string", "minLength": 1},
		"linkUrl":     map[string]interface{}{"type": "string"},
		"buttonText":  map[string]interface{}{"type": "string"},
	},
}

// validatePayload checks a decoded body against its schema and folds any
// violations into one ValidationFailed error.
func validatePayload(schema map[string]interface{}, payload interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewValidationFailedError(err.Error())
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return errors.NewValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}
