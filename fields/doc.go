// Package fields provides the built-in field constructors and registers
// their kinds and storage converters with the domap registry.
//
// Scalar constructors (Str, Int, Float, Bool, Any) map one-to-one onto a
// vschema kind and store their values unchanged. DateTime and UUID carry
// real converters: the object world holds time.Time and uuid.UUID, the
// storage world their canonical string forms. Container constructors
// (List, Dict, Embedded) compose element fields and whole schemas and
// convert element-wise.
//
// Importing the package for side effects is enough to make every
// built-in type name resolvable:
//
//	import _ "github.com/reoring/domap/fields"
package fields
