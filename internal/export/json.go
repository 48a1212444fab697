package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// BuildAmenitiesJSONSchema describes the JSON artifact: an array of records.
func BuildAmenitiesJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	isoDate := map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}

	record := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 36, "maxLength": 36},
			"name":        map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			"address":     map[string]any{"type": "string", "minLength": 1},
			"district":    map[string]any{"type": "string", "minLength": 1},
			"category":    map[string]any{"type": "string", "enum": constants.AsStringSlice()},
			"status":      map[string]any{"type": "string", "enum": constants.StatusStrings()},
			"description": map[string]any{"type": "string", "maxLength": 2000},
			"coordinates": map[string]any{
				"type":     "object",
				"required": []string{"lat", "lng"},
				"properties": map[string]any{
					"lat": map[string]any{"type": "number", "minimum": -90, "maximum": 90},
					"lng": map[string]any{"type": "number", "minimum": -180, "maximum": 180},
				},
			},
			"budget":         decimalProp(),
			"contractor":     str,
			"customer":       str,
			"startDate":      isoDate,
			"endDate":        isoDate,
			"photos":         map[string]any{"type": "array", "items": str},
			"sourceLabel":    map[string]any{"type": "string", "minLength": 1},
			"sourceUrl":      str,
			"objectNumber":   map[string]any{"type": "integer", "minimum": 1},
			"region":         str,
			"statusDetailed": str,
			"areaSqM":        decimalProp(),
			"photoHint":      map[string]any{"type": "boolean"},
			"mapHint":        map[string]any{"type": "boolean"},
		},
		"required": []string{
			"id", "name", "address", "district", "category", "status",
			"coordinates", "photos", "sourceLabel", "photoHint", "mapHint",
		},
	}
	return map[string]any{"type": "array", "items": record}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d+)?$`,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("amenities.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("amenities.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// WriteJSON writes records as an indented JSON array after validating it.
// Nothing is written when validation fails.
func WriteJSON(w io.Writer, records []entity.AmenityRecord) error {
	if records == nil {
		records = []entity.AmenityRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := ValidateJSONAgainstSchema(BuildAmenitiesJSONSchema(), data); err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
