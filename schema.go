package domap

import (
	"context"
	"fmt"
	"sync"

	"github.com/reoring/domap/vschema"
)

// Schema is an ordered, named collection of Fields with storage
// awareness: it loads and dumps object-world data, converts whole
// documents to and from the storage representation, discovers index
// requirements, and projects itself into a plain vschema.Schema for
// callers that validate without persisting.
//
// A Schema is immutable once built and safe to share across goroutines;
// the projection cache is the only synchronized state.
type Schema struct {
	name    string
	fields  []*Field
	byName  map[string]*Field
	byStore map[string]*Field
	checks  []namedCheck
	obj     *vschema.Schema

	proj *projCache
}

type namedCheck struct {
	name string
	fn   vschema.Check
}

type projCache struct {
	mu sync.RWMutex
	m  map[projKey]*vschema.Schema
}

type projKey struct {
	name         string
	storageAware bool
	checkUnknown bool
}

// NewSchema builds a Schema. Construction fails on nil or unnamed
// fields, duplicate names, duplicate storage keys, and fields whose type
// has no registered kind; all failures wrap ErrConstruction.
func NewSchema(name string, fields ...*Field) (*Schema, error) {
	s := &Schema{
		name:    name,
		fields:  make([]*Field, 0, len(fields)),
		byName:  make(map[string]*Field, len(fields)),
		byStore: make(map[string]*Field, len(fields)),
		proj:    &projCache{m: map[projKey]*vschema.Schema{}},
	}
	pure := make([]*vschema.Field, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: schema %q: nil field", ErrConstruction, name)
		}
		if f.name == "" {
			return nil, fmt.Errorf("%w: schema %q: field with empty name", ErrConstruction, name)
		}
		if _, dup := s.byName[f.name]; dup {
			return nil, fmt.Errorf("%w: %q in schema %q", ErrDuplicateField, f.name, name)
		}
		if prev, dup := s.byStore[f.StoreKey()]; dup {
			return nil, fmt.Errorf("%w: %q shared by %q and %q in schema %q",
				ErrDuplicateStoreKey, f.StoreKey(), prev.name, f.name, name)
		}
		if err := f.resolve(); err != nil {
			return nil, err
		}
		s.fields = append(s.fields, f)
		s.byName[f.name] = f
		s.byStore[f.StoreKey()] = f
		pure = append(pure, f.pure)
	}
	obj, err := vschema.NewSchema(name, pure...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	s.obj = obj
	return s, nil
}

// MustSchema is NewSchema for package-level schema variables; it panics
// on construction errors.
func MustSchema(name string, fields ...*Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithCheck returns a copy of the schema with a whole-document check
// appended. Checks run on load after every field validated, and are
// carried into projections.
func (s *Schema) WithCheck(name string, fn vschema.Check) *Schema {
	ns := *s
	ns.checks = append(append([]namedCheck(nil), s.checks...), namedCheck{name: name, fn: fn})
	ns.obj = s.obj.WithCheck(name, fn)
	ns.proj = &projCache{m: map[projKey]*vschema.Schema{}}
	return &ns
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the fields in declaration order. The slice is shared;
// callers must not mutate it.
func (s *Schema) Fields() []*Field { return s.fields }

// Field looks a field up by declared name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldByStoreKey looks a field up by effective storage attribute.
func (s *Schema) FieldByStoreKey(key string) (*Field, bool) {
	f, ok := s.byStore[key]
	return f, ok
}

// Load validates raw object-world input and returns the loaded data.
// Issues are collected across all fields; unknown keys are rejected.
// On any issue the returned data is nil.
func (s *Schema) Load(ctx context.Context, raw map[string]any) (map[string]any, error) {
	return s.obj.Load(ctx, raw)
}

// LoadWithMeta is Load plus per-field presence metadata.
func (s *Schema) LoadWithMeta(ctx context.Context, raw map[string]any) (vschema.Decoded[map[string]any], error) {
	return s.obj.LoadWithMeta(ctx, raw)
}

// Dump serializes loaded data back to the object-world external shape.
func (s *Schema) Dump(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.obj.Dump(ctx, data)
}

// ToStore converts validated object-world data into the storage
// representation: pre-storage hooks run first, then each present value
// goes through its field converter and is keyed by the storage
// attribute. Absent fields stay absent, explicit nulls stay null.
func (s *Schema) ToStore(ctx context.Context, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	var iss vschema.Issues
	for _, f := range s.fields {
		v, ok := data[f.name]
		if !ok || vschema.IsMissing(v) {
			continue
		}
		path := "/" + f.name
		if f.ioValidate != nil {
			if err := f.ioValidate(ctx, v); err != nil {
				iss = append(iss, vschema.IssuesAt(path, f.pure, err)...)
				continue
			}
		}
		if v == nil {
			out[f.StoreKey()] = nil
			continue
		}
		cv, err := f.conv.ToStore(ctx, v)
		if err != nil {
			iss = append(iss, vschema.IssuesAt(path, f.pure, err)...)
			continue
		}
		out[f.StoreKey()] = cv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// FromStore converts a storage document back to object-world data keyed
// by declared names. Storage attributes matching no field are ignored:
// hydration is driven by the schema, not by the stored blob.
func (s *Schema) FromStore(ctx context.Context, doc map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(doc))
	var iss vschema.Issues
	for _, f := range s.fields {
		v, ok := doc[f.StoreKey()]
		if !ok || vschema.IsMissing(v) {
			continue
		}
		if v == nil {
			out[f.name] = nil
			continue
		}
		ov, err := f.conv.FromStore(ctx, v)
		if err != nil {
			iss = append(iss, vschema.IssuesAt("/"+f.StoreKey(), f.pure, err)...)
			continue
		}
		out[f.name] = ov
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// ProjectOptions configures Schema.Project.
type ProjectOptions struct {
	// Name names the produced schema; empty keeps the source name.
	Name string
	// Base contributes leading fields and checks; fields sharing a name
	// with a projected field are shadowed by the projection.
	Base *vschema.Schema
	// Overrides holds per-field projection options, by declared name.
	Overrides map[string][]ProjectOption
	// CheckUnknown rejects unrecognized keys like Load does; otherwise
	// the projected schema strips them silently.
	CheckUnknown bool
	// StorageAware keys the projected fields by their storage attributes
	// instead of the declared names.
	StorageAware bool
}

// Project builds the storage-agnostic descriptor of the schema: every
// field contributes its validation-relevant parameters and none of its
// storage behavior. Whole-document checks are carried along. Projections
// without Base or Overrides are cached per (name, StorageAware,
// CheckUnknown).
func (s *Schema) Project(opts ProjectOptions) (*vschema.Schema, error) {
	cacheable := len(opts.Overrides) == 0 && opts.Base == nil
	key := projKey{name: opts.Name, storageAware: opts.StorageAware, checkUnknown: opts.CheckUnknown}
	if cacheable {
		s.proj.mu.RLock()
		cached, ok := s.proj.m[key]
		s.proj.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	name := opts.Name
	if name == "" {
		name = s.name
	}
	pfs := make([]*vschema.Field, 0, len(s.fields))
	for _, f := range s.fields {
		pf, err := f.project(opts.StorageAware, opts.Overrides[f.name])
		if err != nil {
			return nil, err
		}
		pfs = append(pfs, pf)
	}

	var out *vschema.Schema
	var err error
	if opts.Base != nil {
		out, err = vschema.NewSchemaFrom(opts.Base, name, pfs...)
	} else {
		out, err = vschema.NewSchema(name, pfs...)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	if opts.CheckUnknown {
		out = out.WithUnknown(vschema.UnknownError)
	} else {
		out = out.WithUnknown(vschema.UnknownStrip)
	}
	for _, c := range s.checks {
		out = out.WithCheck(c.name, c.fn)
	}

	if cacheable {
		s.proj.mu.Lock()
		s.proj.m[key] = out
		s.proj.mu.Unlock()
	}
	return out, nil
}

// TranslateQuery rewrites an object-world filter into storage attribute
// keys. Dotted paths translate segment by segment through embedded
// schemas; keys matching no field pass through unchanged. Predicates are
// never inspected.
func (s *Schema) TranslateQuery(filter map[string]any) map[string]any {
	out := make(map[string]any, len(filter))
	for k, pred := range filter {
		out[s.translateKey(k)] = pred
	}
	return out
}
