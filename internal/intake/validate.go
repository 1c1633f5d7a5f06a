// internal/intake/validate.go
package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"blueprint-leads/internal/lead"
	"blueprint-leads/internal/quiz"
)

// submitSchemaJSON builds the JSON schema for lead submissions. Enumerated
// fields are closed sets: anything outside them is rejected at the boundary
// rather than stored verbatim.
func submitSchemaJSON() string {
	archetypes := make([]string, 0, len(quiz.Archetypes()))
	for _, a := range quiz.Archetypes() {
		archetypes = append(archetypes, string(a))
	}

	ratingProps := make(map[string]interface{}, len(lead.RatingKeys))
	for _, k := range lead.RatingKeys {
		ratingProps[k] = map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 5,
		}
	}

	schema := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]interface{}{
			"name":          map[string]interface{}{"type": "string"},
			"contactHandle": map[string]interface{}{"type": "string"},
			"email":         map[string]interface{}{"type": "string"},
			"archetype":     map[string]interface{}{"type": "string", "enum": archetypes},
			"faithJourney":  map[string]interface{}{"type": "string", "enum": lead.FaithJourneyOptions},
			"churchStatus":  map[string]interface{}{"type": "string", "enum": lead.ChurchStatusOptions},
			"opennessToContact": map[string]interface{}{
				"type": "string",
				"enum": lead.OpennessOptions,
			},
			"availability": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
					"enum": lead.AvailabilityOptions,
				},
			},
			"ratings": map[string]interface{}{
				"type":                 "object",
				"properties":           ratingProps,
				"additionalProperties": false,
			},
			"followUpRequested": map[string]interface{}{"type": "boolean"},
			"freeTextAnswers": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"q7": map[string]interface{}{"type": "string"},
					"q8": map[string]interface{}{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
	}

	raw, _ := json.Marshal(schema)
	return string(raw)
}

// compileSubmitSchema compiles the submission schema once at service
// construction.
func compileSubmitSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(submitSchemaJSON()))
	if err != nil {
		return nil, fmt.Errorf("compile submit schema: %w", err)
	}
	return schema, nil
}

// validateAgainstSchema runs the payload through the compiled schema and
// collapses violations into one detail string.
func validateAgainstSchema(schema *gojsonschema.Schema, raw []byte) (string, bool) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return err.Error(), false
	}
	if result.Valid() {
		return "", true
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return strings.Join(details, "; "), false
}
