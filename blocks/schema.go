package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrPayloadInvalid wraps jsonschema validation failures for block payloads.
var ErrPayloadInvalid = errors.New("blocks: payload invalid")

// SchemaRegistry validates block payloads against per-collection JSON
// schemas. Unknown tags validate as a no-op so unsupported blocks stay
// recoverable.
type SchemaRegistry struct {
	schemas map[string]*jsonschema.Schema
}

// NewSchemaRegistry starts with the built-in schemas for the known block
// collections.
func NewSchemaRegistry() (*SchemaRegistry, error) {
	registry := &SchemaRegistry{schemas: map[string]*jsonschema.Schema{}}
	for tag, schema := range builtinSchemas() {
		if err := registry.Register(tag, schema); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register compiles and installs a schema for a collection tag, replacing any
// previous one.
func (r *SchemaRegistry) Register(tag string, schema map[string]any) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("blocks: encode schema for %s: %w", tag, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := tag + ".schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("blocks: register schema for %s: %w", tag, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("blocks: compile schema for %s: %w", tag, err)
	}
	r.schemas[tag] = compiled
	return nil
}

// Validate checks a raw item payload against the schema registered for its
// tag. Tags without a schema pass.
func (r *SchemaRegistry) Validate(tag string, payload map[string]any) error {
	schema, ok := r.schemas[tag]
	if !ok {
		return nil
	}
	if err := schema.Validate(normalizePayload(payload)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPayloadInvalid, tag, err)
	}
	return nil
}

// normalizePayload round-trips through encoding/json so numeric types match
// what the validator expects regardless of how the payload was produced.
func normalizePayload(payload map[string]any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return payload
	}
	return out
}

func builtinSchemas() map[string]map[string]any {
	stringOrNull := map[string]any{"type": []string{"string", "null"}}
	return map[string]map[string]any{
		CollectionRichText: {
			"type": "object",
			"properties": map[string]any{
				"tagline":   stringOrNull,
				"headline":  stringOrNull,
				"content":   stringOrNull,
				"alignment": stringOrNull,
			},
		},
		CollectionGallery: {
			"type": "object",
			"properties": map[string]any{
				"tagline":  stringOrNull,
				"headline": stringOrNull,
				"items":    map[string]any{"type": []string{"array", "null"}},
			},
		},
		CollectionHero: {
			"type": "object",
			"properties": map[string]any{
				"tagline":     stringOrNull,
				"headline":    stringOrNull,
				"description": stringOrNull,
				"layout":      stringOrNull,
				"image":       stringOrNull,
			},
		},
		CollectionPricing: {
			"type": "object",
			"properties": map[string]any{
				"tagline":       stringOrNull,
				"headline":      stringOrNull,
				"pricing_cards": map[string]any{"type": []string{"array", "null"}},
			},
		},
		CollectionPosts: {
			"type": "object",
			"properties": map[string]any{
				"tagline":    stringOrNull,
				"headline":   stringOrNull,
				"collection": stringOrNull,
				"limit":      map[string]any{"type": []string{"integer", "null"}, "minimum": 0},
			},
		},
		CollectionForm: {
			"type": "object",
			"properties": map[string]any{
				"tagline":  stringOrNull,
				"headline": stringOrNull,
				"form":     map[string]any{"type": []string{"object", "null"}},
			},
		},
	}
}
