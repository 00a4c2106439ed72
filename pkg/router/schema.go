package router

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

var (
	timeType       = reflect.TypeOf(time.Time{})
	rawMessageType = reflect.TypeOf(json.RawMessage{})
)

// schemaRegistry tracks schema definitions to enable reuse
type schemaRegistry struct {
	schemas map[string]map[string]any
}

func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{
		schemas: make(map[string]map[string]any),
	}
}

func (r *schemaRegistry) register(typeName string, schema map[string]any) {
	r.schemas[typeName] = schema
}

func (r *schemaRegistry) has(typeName string) bool {
	_, ok := r.schemas[typeName]
	return ok
}

// getSchemas returns a copy of all registered schemas
func (r *schemaRegistry) getSchemas() map[string]any {
	result := make(map[string]any, len(r.schemas))
	for name, schema := range r.schemas {
		result[name] = schema
	}
	return result
}

// schemaGenerator converts Go types to JSON Schema. Named struct types are
// registered once and referenced everywhere else, which also terminates
// recursive types.
type schemaGenerator struct {
	registry   *schemaRegistry
	processing map[reflect.Type]bool
}

func newSchemaGenerator(registry *schemaRegistry) *schemaGenerator {
	return &schemaGenerator{
		registry:   registry,
		processing: make(map[reflect.Type]bool),
	}
}

// schemaRef returns the schema for the type of t, as a reference when the
// type is a named struct
func (g *schemaGenerator) schemaRef(t any) map[string]any {
	if t == nil {
		return nil
	}
	return g.typeSchema(reflect.TypeOf(t))
}

func (g *schemaGenerator) typeSchema(typ reflect.Type) map[string]any {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ {
	case timeType:
		return map[string]any{"type": "string", "format": "date-time"}
	case rawMessageType:
		return map[string]any{"type": "object"}
	}

	if schema := basicTypeSchema(typ.Kind()); schema != nil {
		return schema
	}

	switch typ.Kind() {
	case reflect.Struct:
		return g.structRef(typ)
	case reflect.Slice, reflect.Array:
		if typ.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "format": "byte"}
		}
		return map[string]any{
			"type":  "array",
			"items": g.typeSchema(typ.Elem()),
		}
	case reflect.Map:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": g.typeSchema(typ.Elem()),
		}
	default:
		return map[string]any{"type": "object"}
	}
}

func (g *schemaGenerator) structRef(typ reflect.Type) map[string]any {
	name := typ.Name()
	if name == "" {
		return g.structSchema(typ)
	}

	if !g.registry.has(name) && !g.processing[typ] {
		g.processing[typ] = true
		g.registry.register(name, g.structSchema(typ))
		delete(g.processing, typ)
	}

	return map[string]any{
		"$ref": fmt.Sprintf("#/components/schemas/%s", name),
	}
}

// structSchema converts a struct type to an inline object schema
func (g *schemaGenerator) structSchema(typ reflect.Type) map[string]any {
	properties := make(map[string]any)
	required := []string{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// skip unexported fields
		if field.PkgPath != "" {
			continue
		}

		tag, ok := field.Tag.Lookup("form")
		if !ok {
			tag = field.Tag.Get("json")
		}
		if tag == "-" {
			continue
		}

		name, isRequired := parseFieldTag(tag, field.Name)
		if isRequired {
			required = append(required, name)
		}

		fieldSchema := g.typeSchema(field.Type)
		if _, isRef := fieldSchema["$ref"]; !isRef {
			addFieldMetadata(fieldSchema, field)
		}
		properties[name] = fieldSchema
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// parseFieldTag extracts name and required status from a json or form tag
func parseFieldTag(tag, fieldName string) (string, bool) {
	if tag == "" {
		return fieldName, true
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = fieldName
	}

	return name, !slices.Contains(parts[1:], "omitempty")
}

// addFieldMetadata adds documentation from struct tags to a schema
func addFieldMetadata(schema map[string]any, field reflect.StructField) {
	if docTag := field.Tag.Get("doc"); docTag != "" {
		schema["description"] = docTag
	}

	if exampleTag := field.Tag.Get("example"); exampleTag != "" {
		schema["example"] = exampleTag
	}

	if enumTag := field.Tag.Get("enum"); enumTag != "" {
		schema["enum"] = strings.Split(enumTag, ",")
	}
}

// basicTypeSchema creates a schema for a basic Go type
func basicTypeSchema(kind reflect.Kind) map[string]any {
	switch kind {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return map[string]any{"type": "integer"}
	case reflect.Int64, reflect.Uint64:
		return map[string]any{"type": "integer", "format": "int64"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	default:
		return nil
	}
}
