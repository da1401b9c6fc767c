// Package openapi imports OpenAPI 3 component schemas as domap schemas,
// so a service can declare its documents once in an API document and
// validate and store them through the same definition.
//
// The importer maps JSON Schema keywords onto field options and
// validators: required lists, nullable, readOnly/writeOnly, numeric and
// length bounds, patterns and enums. Storage concerns ride on vendor
// extensions: "x-domap-store-as" renames the storage attribute and
// "x-domap-unique" demands a unique index.
package openapi

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/reoring/domap"
	"github.com/reoring/domap/fields"
	"github.com/reoring/domap/validate"
)

// Vendor extension keys understood by the importer.
const (
	ExtStoreAs = "x-domap-store-as"
	ExtUnique  = "x-domap-unique"
)

// Import builds the named component schema from an OpenAPI 3 document
// (JSON or YAML).
func Import(ctx context.Context, data []byte, component string) (*domap.Schema, error) {
	spec, err := load(ctx, data)
	if err != nil {
		return nil, err
	}
	ref, err := componentRef(spec, component)
	if err != nil {
		return nil, err
	}
	return buildSchema(component, ref.Value)
}

// ImportAll builds every component schema of an OpenAPI 3 document.
func ImportAll(ctx context.Context, data []byte) (map[string]*domap.Schema, error) {
	spec, err := load(ctx, data)
	if err != nil {
		return nil, err
	}
	if spec.Components == nil {
		return map[string]*domap.Schema{}, nil
	}
	out := make(map[string]*domap.Schema, len(spec.Components.Schemas))
	for name, ref := range spec.Components.Schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		s, err := buildSchema(name, ref.Value)
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

func load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return spec, nil
}

func componentRef(spec *openapi3.T, component string) (*openapi3.SchemaRef, error) {
	if spec.Components == nil || spec.Components.Schemas == nil {
		return nil, fmt.Errorf("openapi: document declares no component schemas")
	}
	ref, ok := spec.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi: component schema %q not found", component)
	}
	return ref, nil
}

func buildSchema(name string, src *openapi3.Schema) (*domap.Schema, error) {
	if !hasType(src.Type, "object") && src.Type != nil {
		return nil, fmt.Errorf("openapi: component %q: expected an object schema, got %v", name, src.Type.Slice())
	}
	required := make(map[string]bool, len(src.Required))
	for _, r := range src.Required {
		required[r] = true
	}

	names := make([]string, 0, len(src.Properties))
	for prop := range src.Properties {
		names = append(names, prop)
	}
	sort.Strings(names)

	fs := make([]*domap.Field, 0, len(names))
	for _, prop := range names {
		ref := src.Properties[prop]
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("openapi: component %q: property %q has no schema", name, prop)
		}
		f, err := buildField(prop, ref.Value, required[prop])
		if err != nil {
			return nil, fmt.Errorf("openapi: component %q: %w", name, err)
		}
		fs = append(fs, f)
	}
	return domap.NewSchema(name, fs...)
}

func buildField(name string, src *openapi3.Schema, required bool) (*domap.Field, error) {
	opts, err := fieldOptions(src, required)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}

	switch {
	case hasType(src.Type, "string"):
		switch src.Format {
		case "date-time":
			return fields.DateTime(name, opts...), nil
		case "uuid":
			return fields.UUID(name, opts...), nil
		default:
			return fields.Str(name, opts...), nil
		}
	case hasType(src.Type, "integer"):
		return fields.Int(name, opts...), nil
	case hasType(src.Type, "number"):
		return fields.Float(name, opts...), nil
	case hasType(src.Type, "boolean"):
		return fields.Bool(name, opts...), nil
	case hasType(src.Type, "array"):
		if src.Items == nil || src.Items.Value == nil {
			return nil, fmt.Errorf("property %q: array without items", name)
		}
		elem, err := buildField("", src.Items.Value, false)
		if err != nil {
			return nil, err
		}
		return fields.List(name, elem, opts...), nil
	case hasType(src.Type, "object"):
		if len(src.Properties) > 0 {
			sub, err := buildSchema(name, src)
			if err != nil {
				return nil, err
			}
			return fields.Embedded(name, sub, opts...), nil
		}
		var elem *domap.Field
		if ap := src.AdditionalProperties.Schema; ap != nil && ap.Value != nil {
			elem, err = buildField("", ap.Value, false)
			if err != nil {
				return nil, err
			}
		}
		return fields.Dict(name, elem, opts...), nil
	case src.Type == nil:
		return fields.Any(name, opts...), nil
	default:
		return nil, fmt.Errorf("property %q: unsupported type %v", name, src.Type.Slice())
	}
}

func fieldOptions(src *openapi3.Schema, required bool) ([]domap.FieldOption, error) {
	var opts []domap.FieldOption
	if required {
		opts = append(opts, domap.Required())
	}
	if src.Nullable || hasType(src.Type, "null") {
		opts = append(opts, domap.AllowNone())
	}
	if src.ReadOnly {
		opts = append(opts, domap.DumpOnly())
	}
	if src.WriteOnly {
		opts = append(opts, domap.LoadOnly())
	}
	if src.Default != nil {
		opts = append(opts, domap.OnMissing(coerceDefault(src, src.Default)))
	}
	if src.Description != "" {
		opts = append(opts, domap.Meta("description", src.Description))
	}

	if alias, ok := src.Extensions[ExtStoreAs].(string); ok && alias != "" {
		opts = append(opts, domap.StoreAs(alias))
	}
	if uniq, ok := src.Extensions[ExtUnique].(bool); ok && uniq {
		opts = append(opts, domap.Unique())
	}

	if src.Min != nil || src.Max != nil {
		opts = append(opts, domap.Validate(&validate.Range{Min: src.Min, Max: src.Max}))
	}
	if src.MinLength != 0 || src.MaxLength != nil {
		var min, max *int
		if src.MinLength != 0 {
			v := int(src.MinLength)
			min = &v
		}
		if src.MaxLength != nil {
			v := int(*src.MaxLength)
			max = &v
		}
		opts = append(opts, domap.Validate(&validate.Length{Min: min, Max: max}))
	}
	if src.Pattern != "" {
		re, err := regexp.Compile(src.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		opts = append(opts, domap.Validate(&validate.Regexp{Re: re}))
	}
	if len(src.Enum) > 0 {
		opts = append(opts, domap.Validate(&validate.OneOf{Choices: append([]any(nil), src.Enum...)}))
	}
	return opts, nil
}

// coerceDefault aligns a JSON-decoded default with the loaded value type
// of its field, so substituted values match what Load would produce.
func coerceDefault(src *openapi3.Schema, def any) any {
	if !hasType(src.Type, "integer") {
		return def
	}
	switch n := def.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return def
}

func hasType(types *openapi3.Types, t string) bool {
	if types == nil {
		return false
	}
	for _, v := range types.Slice() {
		if v == t {
			return true
		}
	}
	return false
}
