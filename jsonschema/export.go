package jsonschema

import (
	gojson "github.com/goccy/go-json"

	"github.com/reoring/domap"
	"github.com/reoring/domap/fields"
	"github.com/reoring/domap/validate"
)

// Export renders a schema as a JSON Schema object: one property per
// field in declaration order, required names collected, validators
// translated into the matching keywords. Storage concerns surface as
// x-domap annotations so the export stays importable.
func Export(s *domap.Schema) *Schema {
	out := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema, len(s.Fields())),
	}
	for _, f := range s.Fields() {
		out.Properties[f.Name()] = exportField(f)
		if f.Required() {
			out.Required = append(out.Required, f.Name())
		}
	}
	return out
}

// Marshal is Export plus indented JSON encoding.
func Marshal(s *domap.Schema) ([]byte, error) {
	return gojson.MarshalIndent(Export(s), "", "  ")
}

func exportField(f *domap.Field) *Schema {
	out := &Schema{}
	switch f.TypeName() {
	case "str":
		out.Type = "string"
	case "int":
		out.Type = "integer"
	case "float":
		out.Type = "number"
	case "bool":
		out.Type = "boolean"
	case "datetime":
		out.Type = "string"
		out.Format = "date-time"
	case "uuid", "ref":
		out.Type = "string"
		out.Format = "uuid"
	case "list":
		out.Type = "array"
		if elem := f.Elem(); elem != nil {
			out.Items = exportField(elem)
		}
	case "dict":
		out.Type = "object"
		if elem := f.Elem(); elem != nil {
			out.AdditionalProperties = exportField(elem)
		} else {
			out.AdditionalProperties = true
		}
	case "embedded":
		if sub := f.Sub(); sub != nil {
			nested := Export(sub)
			nested.applyFieldAnnotations(f)
			return nested
		}
		out.Type = "object"
	}

	out.applyFieldAnnotations(f)
	out.applyValidators(f)
	return out
}

func (out *Schema) applyFieldAnnotations(f *domap.Field) {
	out.Nullable = f.AllowNone()
	out.ReadOnly = f.DumpOnly()
	out.WriteOnly = f.LoadOnly()
	out.StoreAs = f.StoreAs()
	out.Unique = f.Unique()
	if desc, ok := f.Meta("description"); ok {
		out.Description = desc
	}
	if target, ok := f.Meta(fields.RefMetaKey); ok {
		out.RefTo = target
	}
	// Producer functions have no serializable form; only constants export.
	if def := f.OnMissing(); def != nil {
		if _, isFn := def.(func() any); !isFn {
			out.Default = def
		}
	}
}

func (out *Schema) applyValidators(f *domap.Field) {
	for _, v := range f.Validators() {
		switch val := v.(type) {
		case *validate.Range:
			out.Minimum = val.Min
			out.Maximum = val.Max
		case *validate.Length:
			if out.Type == "array" {
				out.MinItems = val.Min
				out.MaxItems = val.Max
			} else {
				out.MinLength = val.Min
				out.MaxLength = val.Max
			}
		case *validate.Regexp:
			if val.Re != nil {
				out.Pattern = val.Re.String()
			}
		case *validate.OneOf:
			out.Enum = append([]any(nil), val.Choices...)
		case *validate.Equal:
			out.Const = val.Comparable
		}
	}
}
