package fields

import (
	"github.com/reoring/domap"
)

// RefMetaKey is the field annotation naming the collection a "ref" field
// points at.
const RefMetaKey = "ref"

// Str declares a string field.
func Str(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "str", opts...)
}

// Int declares an integer field. Loading accepts Go integer types,
// integral floats and json.Number; the loaded value is int64.
func Int(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "int", opts...)
}

// Float declares a float field; the loaded value is float64.
func Float(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "float", opts...)
}

// Bool declares a boolean field.
func Bool(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "bool", opts...)
}

// Any declares a field that accepts any value and stores it unchanged.
func Any(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "any", opts...)
}

// DateTime declares a timestamp field. The object world holds time.Time;
// storage holds the canonical RFC 3339 string (UTC, nanosecond
// precision), so conversion round-trips exactly.
func DateTime(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "datetime", opts...)
}

// UUID declares an identifier field. The object world holds uuid.UUID;
// storage holds the canonical string form.
func UUID(name string, opts ...domap.FieldOption) *domap.Field {
	return domap.NewField(name, "uuid", opts...)
}

// Ref declares a reference to a document in another collection. It
// behaves like a UUID field and carries the target collection as the
// RefMetaKey annotation for drivers and exporters.
func Ref(name, collection string, opts ...domap.FieldOption) *domap.Field {
	opts = append([]domap.FieldOption{domap.Meta(RefMetaKey, collection)}, opts...)
	return domap.NewField(name, "ref", opts...)
}

// List declares a homogeneous list field; elem describes the elements.
// Element failures are reported under the element index.
func List(name string, elem *domap.Field, opts ...domap.FieldOption) *domap.Field {
	opts = append([]domap.FieldOption{domap.Elem(elem)}, opts...)
	return domap.NewField(name, "list", opts...)
}

// Dict declares a string-keyed mapping field. A non-nil elem validates
// and converts every value; a nil elem leaves values untouched.
func Dict(name string, elem *domap.Field, opts ...domap.FieldOption) *domap.Field {
	if elem != nil {
		opts = append([]domap.FieldOption{domap.Elem(elem)}, opts...)
	}
	return domap.NewField(name, "dict", opts...)
}

// Embedded declares a sub-document validated by its own schema. Nested
// failures carry the nested path; storage conversion applies the
// sub-schema's attribute names.
func Embedded(name string, sub *domap.Schema, opts ...domap.FieldOption) *domap.Field {
	opts = append([]domap.FieldOption{domap.Sub(sub)}, opts...)
	return domap.NewField(name, "embedded", opts...)
}
