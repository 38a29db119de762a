// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (r *ValidationResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return out
}

var hexColor = map[string]interface{}{
	"type":    "string",
	"pattern": "^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$",
}

// BusinessConfigSchema describes the shape of a site config.json. Every key is
// optional; defaults fill the gaps, so the schema only catches wrong types.
var BusinessConfigSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"business": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":           map[string]interface{}{"type": "string"},
				"tagline":        map[string]interface{}{"type": "string"},
				"logo":           map[string]interface{}{"type": []interface{}{"string", "null"}},
				"primaryColor":   hexColor,
				"secondaryColor": hexColor,
				"industry":       map[string]interface{}{"type": "string"},
			},
		},
		"locations": map[string]interface{}{
			"type": []interface{}{"array", "null"},
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":       map[string]interface{}{"type": []interface{}{"string", "number"}},
					"name":     map[string]interface{}{"type": "string"},
					"lat":      map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
					"lon":      map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
					"color":    map[string]interface{}{"type": "string"},
					"category": map[string]interface{}{"type": "string"},
				},
			},
		},
		"custom":       map[string]interface{}{"type": []interface{}{"object", "null"}},
		"integrations": map[string]interface{}{"type": []interface{}{"object", "null"}},
		"vault": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"enabled":      map[string]interface{}{"type": "boolean"},
				"allowedTypes": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"maxSize":      map[string]interface{}{"type": "string"},
			},
		},
		"chat": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"enabled":      map[string]interface{}{"type": "boolean"},
				"systemPrompt": map[string]interface{}{"type": "string"},
				"providers":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			},
		},
		"ui": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"showTicker":      map[string]interface{}{"type": "boolean"},
				"showSidebar":     map[string]interface{}{"type": "boolean"},
				"showChat":        map[string]interface{}{"type": "boolean"},
				"showVault":       map[string]interface{}{"type": "boolean"},
				"globeAutoRotate": map[string]interface{}{"type": "boolean"},
			},
		},
		"deployment": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"mode": map[string]interface{}{"type": "string", "enum": []interface{}{"local", "cdn"}},
			},
		},
	},
}

// ValidateDocument checks doc against schema. A schema that fails to compile
// is reported as a single error on the root field.
func ValidateDocument(doc interface{}, schema map[string]interface{}) *ValidationResult {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "SCHEMA_ERROR"}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out
}

// ValidateBusinessConfig checks a decoded config.json document.
func ValidateBusinessConfig(doc map[string]interface{}) *ValidationResult {
	return ValidateDocument(doc, BusinessConfigSchema)
}
