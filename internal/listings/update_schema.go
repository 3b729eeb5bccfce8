package listings

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/listing_update.json
var listingUpdateSchemaJSON []byte

const listingUpdateSchemaURL = "https://anuncios.example.com/schemas/listing-update.json"

// updateDenyList names fields that are silently dropped from update payloads.
var updateDenyList = []string{"id", "created_at", "updated_at", "slug"}

// UpdateValidator checks update payloads against the embedded schema.
type UpdateValidator struct {
	schema *jsonschema.Schema
}

// NewUpdateValidator compiles the embedded listing update schema.
func NewUpdateValidator() (*UpdateValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(listingUpdateSchemaURL, bytes.NewReader(listingUpdateSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add listing update schema: %w", err)
	}
	schema, err := compiler.Compile(listingUpdateSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile listing update schema: %w", err)
	}
	return &UpdateValidator{schema: schema}, nil
}

// Sanitize returns a copy of payload without deny-listed fields.
func (v *UpdateValidator) Sanitize(payload map[string]any) map[string]any {
	clean := make(map[string]any, len(payload))
	for key, value := range payload {
		clean[key] = value
	}
	for _, key := range updateDenyList {
		delete(clean, key)
	}
	return clean
}

// Validate returns a field -> message map describing schema violations, or nil.
func (v *UpdateValidator) Validate(payload map[string]any) (map[string]string, error) {
	err := v.schema.Validate(toSchemaValue(payload))
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	details := map[string]string{}
	collectViolations(verr, details)
	if len(details) == 0 {
		details["body"] = verr.Message
	}
	return details, nil
}

func collectViolations(verr *jsonschema.ValidationError, details map[string]string) {
	if len(verr.Causes) == 0 {
		field := fieldFromLocation(verr.InstanceLocation)
		if _, exists := details[field]; !exists {
			details[field] = verr.Message
		}
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, details)
	}
}

func fieldFromLocation(location string) string {
	if len(location) > 1 && location[0] == '/' {
		location = location[1:]
	}
	for i := 0; i < len(location); i++ {
		if location[i] == '/' {
			return location[:i]
		}
	}
	if location == "" {
		return "body"
	}
	return location
}

// toSchemaValue converts map[string]any produced by encoding/json into the
// []interface{} shapes the validator expects.
func toSchemaValue(payload map[string]any) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := payload[k].(type) {
		case []string:
			items := make([]interface{}, len(val))
			for i, item := range val {
				items[i] = item
			}
			out[k] = items
		default:
			out[k] = val
		}
	}
	return out
}
