// Package domap defines document schemas that live in two worlds at once:
// the object world an application manipulates and the storage world a
// document database persists. A Schema is an ordered set of Fields; each
// Field declares its value type, storage attribute name, validation rules
// and uniqueness requirement, and carries the conversion pipeline between
// the two representations.
//
// Validation semantics come from the vschema package: issues are
// collected, not short-circuited, and absence is a first-class state
// (vschema.Missing) distinct from an explicit null. domap adds what a
// storage layer needs on top of that: exact, invertible document
// conversion (ToStore / FromStore), storage-key query translation,
// index-requirement discovery, and projection of a storage-aware schema
// into a plain vschema.Schema for callers that validate without
// persisting.
//
//	user, err := domap.NewSchema("User",
//		fields.Str("email", domap.Required(), domap.Unique()),
//		fields.Int("age", domap.StoreAs("a"), domap.Validate(&validate.Range{Min: validate.F(0), Max: validate.F(150)})),
//	)
//	if err != nil { ... }
//	data, err := user.Load(ctx, raw)        // object world in, issues out
//	doc, err := user.ToStore(ctx, data)     // {"email": ..., "a": ...}
//	back, err := user.FromStore(ctx, doc)   // inverse, exactly
//
// Schemas and fields are definition-time artifacts: immutable once built
// and safe to share across goroutines. Per-document state belongs to the
// document package. This package performs no I/O; drivers such as
// driver/dynamo consume its output.
package domap
