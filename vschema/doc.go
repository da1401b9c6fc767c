// Package vschema is a storage-agnostic validation framework: field
// descriptors, type-coercion kinds, validators, and a load/dump engine
// that aggregates localized issues instead of stopping at the first
// failure.
//
// A Schema is a reusable descriptor built once from ordered Fields and
// shared read-only afterward. Load coerces and validates raw input
// (typically decoded JSON) into object-world values; Dump renders
// object-world values back out. Both report failures as Issues, an error
// implementation carrying one entry per offending value with a stable code
// and a slash-separated path.
//
//	s, _ := vschema.NewSchema("user",
//	    &vschema.Field{Name: "name", Kind: vschema.StringKind{}, Required: true},
//	    &vschema.Field{Name: "age", Kind: vschema.IntegerKind{}},
//	)
//	data, err := s.Load(ctx, raw)
//	if iss, ok := vschema.AsIssues(err); ok { ... }
//
// Absence is explicit: a field that never appeared in the input stays
// absent from the loaded result (see Missing), which is distinct from an
// explicit null value. Error messages are stored as untranslated templates
// and resolved through the i18n translator at issue-construction time, so
// catalog swaps remain observable after schemas are built.
//
// Nothing in this package knows about storage attributes, indexes, or
// document stores; the parent package layers storage awareness on top.
package vschema
