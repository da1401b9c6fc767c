package document

import (
	"context"
	"sort"

	"github.com/reoring/domap"
	"github.com/reoring/domap/vschema"
)

// Doc is one document instance bound to a schema: validated field values
// keyed by declared name, a per-field dirty set, and a persistence flag.
// Doc is not safe for concurrent use; unlike schemas, instances are
// per-request state.
type Doc struct {
	schema    *domap.Schema
	data      map[string]any
	dirty     map[string]bool
	persisted bool
}

var _ Object = (*Doc)(nil)

// New returns an empty, unpersisted document bound to s.
func New(s *domap.Schema) *Doc {
	return &Doc{
		schema: s,
		data:   map[string]any{},
		dirty:  map[string]bool{},
	}
}

// Load validates raw through the schema and returns a document holding
// the result. Every loaded field counts as modified: the document has
// never been written.
func Load(ctx context.Context, s *domap.Schema, raw map[string]any) (*Doc, error) {
	data, err := s.Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	d := New(s)
	d.data = data
	for name := range data {
		d.dirty[name] = true
	}
	return d, nil
}

// BuildFromStore hydrates a document from its storage representation.
// The result is clean and persisted: it mirrors what the store holds.
func BuildFromStore(ctx context.Context, s *domap.Schema, doc map[string]any) (*Doc, error) {
	data, err := s.FromStore(ctx, doc)
	if err != nil {
		return nil, err
	}
	d := New(s)
	d.data = data
	d.persisted = true
	return d, nil
}

// Schema returns the bound schema.
func (d *Doc) Schema() *domap.Schema { return d.schema }

// Get returns the current value of name and whether it is present.
// An explicit null is present with a nil value.
func (d *Doc) Get(name string) (any, bool) {
	v, ok := d.data[name]
	return v, ok
}

// Set validates value through the field's load pipeline and assigns it.
// Unknown names and dump-only fields are rejected; failures leave the
// document untouched.
func (d *Doc) Set(ctx context.Context, name string, value any) error {
	f, ok := d.schema.Field(name)
	if !ok {
		return vschema.Issues{vschema.NewIssue("/"+name, vschema.CodeUnknownField,
			"Unknown field.", map[string]any{"field": name})}
	}
	lv, err := f.Deserialize(ctx, value)
	if err != nil {
		if iss, isIss := vschema.AsIssues(err); isIss {
			return vschema.Rebase("/"+name, iss)
		}
		return err
	}
	if vschema.IsMissing(lv) {
		return nil
	}
	d.data[name] = lv
	d.dirty[name] = true
	return nil
}

// Update applies several assignments through Set, visiting keys in
// sorted order and collecting all failures before reporting.
func (d *Doc) Update(ctx context.Context, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var iss vschema.Issues
	for _, k := range keys {
		if err := d.Set(ctx, k, values[k]); err != nil {
			if more, ok := vschema.AsIssues(err); ok {
				iss = append(iss, more...)
				continue
			}
			return err
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Delete removes name from the document, returning whether it was
// present. Removal is a modification: the stored attribute must go away
// on the next write.
func (d *Doc) Delete(name string) bool {
	if _, ok := d.data[name]; !ok {
		return false
	}
	delete(d.data, name)
	d.dirty[name] = true
	return true
}

// Data returns a shallow copy of the current field values.
func (d *Doc) Data() map[string]any {
	out := make(map[string]any, len(d.data))
	for k, v := range d.data {
		out[k] = v
	}
	return out
}

// IsModified reports whether any field changed since the last
// ClearModified (or since hydration).
func (d *Doc) IsModified() bool { return len(d.dirty) > 0 }

// SetModified force-marks the document dirty as a whole.
func (d *Doc) SetModified() { d.dirty["*"] = true }

// ClearModified resets the dirty set, typically after a successful
// write.
func (d *Doc) ClearModified() { d.dirty = map[string]bool{} }

// Modified returns the changed field names in sorted order.
func (d *Doc) Modified() []string {
	out := make([]string, 0, len(d.dirty))
	for k := range d.dirty {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Persisted reports whether the document mirrors a stored one.
func (d *Doc) Persisted() bool { return d.persisted }

// MarkPersisted records a successful write: the document is now stored
// and clean.
func (d *Doc) MarkPersisted() {
	d.persisted = true
	d.ClearModified()
}

// Dump renders the document for output through the schema.
func (d *Doc) Dump(ctx context.Context) (map[string]any, error) {
	return d.schema.Dump(ctx, d.data)
}

// ToStore converts the document to its storage representation. Absent
// fields first receive their load-side substitutes, then every required
// field must be present; failures are collected across fields.
func (d *Doc) ToStore(ctx context.Context) (map[string]any, error) {
	var iss vschema.Issues
	for _, f := range d.schema.Fields() {
		if _, ok := d.data[f.Name()]; ok {
			continue
		}
		mv, err := f.Deserialize(ctx, vschema.Missing)
		if err != nil {
			if more, ok := vschema.AsIssues(err); ok {
				iss = append(iss, vschema.Rebase("/"+f.Name(), more)...)
				continue
			}
			return nil, err
		}
		if !vschema.IsMissing(mv) {
			d.data[f.Name()] = mv
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return d.schema.ToStore(ctx, d.data)
}
