package vschema

import "context"

// Validator is the stateless predicate contract attached to fields. A nil
// return means the value passed; otherwise the error carries the failure,
// ideally as a *Violation so the engine can localize it, though any error
// value is accepted. Implementations must not keep state between calls.
type Validator interface {
	Validate(v any) error
}

// Projector is implemented by validators that can rebuild themselves with
// replaced constructor parameters. Projection never changes the predicate
// semantics, only its parameters.
type Projector interface {
	Project(overrides map[string]any) (Validator, error)
}

// Field describes one named value in a Schema. Fields are plain
// descriptors: built once, never mutated afterward, safe to share.
type Field struct {
	// Name is the declared identifier: the key of the loaded result and
	// of the dump input.
	Name string
	// DataKey, when non-empty, is the external key instead of Name: Load
	// reads input by it and Dump keys its output by it. Storage-aware
	// projections use it to validate storage-attribute-keyed documents.
	DataKey string
	// Kind coerces raw input into the object-world value and back.
	Kind Kind

	Required  bool
	AllowNone bool
	LoadOnly  bool
	DumpOnly  bool

	// Default substitutes absent values on Dump; OnMissing substitutes
	// absent values on Load. Each is either a constant or a func() any
	// producer; nil means no substitution, and a producer returning
	// Missing leaves the value absent.
	Default   any
	OnMissing any

	// Validators all run on the coerced value; every failure is collected.
	Validators []Validator

	// Messages overrides the built-in templates; nil serves the defaults.
	Messages *Messages
}

func (f *Field) dataKey() string {
	if f.DataKey != "" {
		return f.DataKey
	}
	return f.Name
}

// issue builds a localized Issue at path using f's template for code.
func (f *Field) issue(path, code string, params map[string]any) Issue {
	return NewIssue(path, code, f.Messages.Template(code), params)
}

// Produce resolves a default/missing declaration: zero-argument producers
// are invoked, anything else is returned as-is.
func Produce(v any) any {
	if fn, ok := v.(func() any); ok {
		return fn()
	}
	return v
}

// LoadValue runs the single-value load pipeline for one field: null
// policy, kind coercion, then every validator, collecting all failures.
// The returned error, when non-nil, is Issues with paths relative to the
// value itself.
func LoadValue(ctx context.Context, f *Field, v any) (any, error) {
	lv, iss := loadValue(ctx, f, v)
	if len(iss) > 0 {
		return nil, iss
	}
	return lv, nil
}

// DumpValue runs the single-value dump pipeline for one field. Null passes
// through; everything else goes through the kind.
func DumpValue(ctx context.Context, f *Field, v any) (any, error) {
	dv, iss := dumpValue(ctx, f, v)
	if len(iss) > 0 {
		return nil, iss
	}
	return dv, nil
}

func loadValue(ctx context.Context, f *Field, v any) (any, Issues) {
	if v == nil {
		if f.AllowNone {
			return nil, nil
		}
		return nil, Issues{f.issue("", CodeNull, nil)}
	}
	lv, err := f.Kind.Load(ctx, v)
	if err != nil {
		return nil, IssuesAt("", f, err)
	}
	var iss Issues
	for _, val := range f.Validators {
		if err := val.Validate(lv); err != nil {
			iss = append(iss, IssuesAt("", f, err)...)
			if IsFailFast(ctx) {
				break
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return lv, nil
}

func dumpValue(ctx context.Context, f *Field, v any) (any, Issues) {
	if v == nil {
		return nil, nil
	}
	dv, err := f.Kind.Dump(ctx, v)
	if err != nil {
		return nil, IssuesAt("", f, err)
	}
	return dv, nil
}
