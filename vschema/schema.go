package vschema

import (
	"context"
	"fmt"
	"sort"
)

// UnknownPolicy controls how Load treats input keys that match no loadable
// field name.
type UnknownPolicy int

const (
	// UnknownError reports one issue per unrecognized key (the default).
	UnknownError UnknownPolicy = iota
	// UnknownStrip drops unrecognized keys silently.
	UnknownStrip
	// UnknownAllow copies unrecognized keys through untouched.
	UnknownAllow
)

// Check is a whole-schema invariant run after per-field loading. It
// receives the data loaded so far and returns issues to append to the same
// aggregated set.
type Check func(ctx context.Context, data map[string]any) Issues

type namedCheck struct {
	name string
	fn   Check
}

// Schema is an ordered, named collection of Fields plus whole-schema
// checks: a reusable descriptor, built once and shared read-only.
type Schema struct {
	name    string
	fields  []*Field
	byName  map[string]*Field
	unknown UnknownPolicy
	checks  []namedCheck
}

// NewSchema builds a Schema descriptor. Field names must be unique and
// every field needs a Kind.
func NewSchema(name string, fields ...*Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make([]*Field, 0, len(fields)),
		byName: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSchemaFrom builds a Schema that starts from base's fields, policy and
// checks, then appends the given fields; a field whose name matches a base
// field shadows it in place of the base declaration. The base is left
// untouched.
func NewSchemaFrom(base *Schema, name string, fields ...*Field) (*Schema, error) {
	s := &Schema{name: name, byName: map[string]*Field{}}
	if base != nil {
		s.unknown = base.unknown
		s.checks = append(s.checks, base.checks...)
		shadowed := make(map[string]bool, len(fields))
		for _, f := range fields {
			if f != nil {
				shadowed[f.Name] = true
			}
		}
		for _, f := range base.fields {
			if shadowed[f.Name] {
				continue
			}
			if err := s.add(f); err != nil {
				return nil, err
			}
		}
	}
	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) add(f *Field) error {
	if f == nil {
		return fmt.Errorf("vschema: schema %q: nil field", s.name)
	}
	if f.Name == "" {
		return fmt.Errorf("vschema: schema %q: field with empty name", s.name)
	}
	if f.Kind == nil {
		return fmt.Errorf("vschema: schema %q: field %q has no kind", s.name, f.Name)
	}
	if _, dup := s.byName[f.Name]; dup {
		return fmt.Errorf("vschema: schema %q: duplicate field %q", s.name, f.Name)
	}
	s.fields = append(s.fields, f)
	s.byName[f.Name] = f
	return nil
}

// WithUnknown returns a copy of s using the given unknown-key policy.
func (s *Schema) WithUnknown(p UnknownPolicy) *Schema {
	c := *s
	c.unknown = p
	return &c
}

// WithCheck returns a copy of s with fn appended as a named whole-schema
// check.
func (s *Schema) WithCheck(name string, fn Check) *Schema {
	c := *s
	c.checks = append(append([]namedCheck{}, s.checks...), namedCheck{name: name, fn: fn})
	return &c
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the declared fields in order. Treat the slice as
// read-only.
func (s *Schema) Fields() []*Field { return s.fields }

// FieldByName looks a field up by declared name.
func (s *Schema) FieldByName(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Unknown returns the unknown-key policy.
func (s *Schema) Unknown() UnknownPolicy { return s.unknown }

// Load coerces and validates raw into object-world values. Per-field
// failures are collected, not short-circuited; the unknown-key check runs
// after per-field loading and contributes to the same issue set; no data
// is returned when any issue was found.
func (s *Schema) Load(ctx context.Context, raw map[string]any) (map[string]any, error) {
	dec, err := s.LoadWithMeta(ctx, raw)
	if err != nil {
		return nil, err
	}
	return dec.Value, nil
}

// LoadWithMeta is Load plus per-field presence metadata.
func (s *Schema) LoadWithMeta(ctx context.Context, raw map[string]any) (Decoded[map[string]any], error) {
	out := make(map[string]any, len(s.fields))
	pm := make(PresenceMap, len(raw))
	var iss Issues
	failFast := IsFailFast(ctx)

	for _, f := range s.fields {
		if f.DumpOnly {
			continue
		}
		path := "/" + f.dataKey()
		v, ok := raw[f.dataKey()]
		if !ok {
			if f.OnMissing != nil {
				if mv := Produce(f.OnMissing); !IsMissing(mv) {
					out[f.Name] = mv
					pm[path] |= PresenceDefaultApplied
				}
				continue
			}
			if f.Required {
				iss = AppendIssues(iss, f.issue(path, CodeRequired, nil))
				if failFast {
					break
				}
			}
			continue
		}
		pm[path] |= PresenceSeen
		if v == nil {
			pm[path] |= PresenceWasNull
		}
		lv, fiss := loadValue(ctx, f, v)
		if len(fiss) > 0 {
			iss = append(iss, Rebase(path, fiss)...)
			if failFast {
				break
			}
			continue
		}
		out[f.Name] = lv
	}

	if failFast && len(iss) > 0 {
		return Decoded[map[string]any]{}, iss
	}

	iss = append(iss, s.applyUnknown(raw, out)...)

	for _, c := range s.checks {
		iss = append(iss, c.fn(ctx, out)...)
		if failFast && len(iss) > 0 {
			break
		}
	}

	if len(iss) > 0 {
		return Decoded[map[string]any]{}, iss
	}
	return Decoded[map[string]any]{Value: out, Presence: pm}, nil
}

// applyUnknown enforces the unknown-key policy: input keys matching no
// loadable field's data key are reported, stripped, or copied through.
// Keys are visited in sorted order so issue ordering stays deterministic.
func (s *Schema) applyUnknown(raw, out map[string]any) Issues {
	loadable := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		if !f.DumpOnly {
			loadable[f.dataKey()] = true
		}
	}
	var extra []string
	for k := range raw {
		if loadable[k] {
			continue
		}
		extra = append(extra, k)
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	switch s.unknown {
	case UnknownAllow:
		for _, k := range extra {
			out[k] = raw[k]
		}
		return nil
	case UnknownStrip:
		return nil
	default:
		iss := make(Issues, 0, len(extra))
		for _, k := range extra {
			iss = append(iss, NewIssue("/"+k, CodeUnknownField, defaultTemplates[CodeUnknownField], map[string]any{"field": k}))
		}
		return iss
	}
}

// Dump renders loaded data for output: declared order, Default
// substitution for absent values, still-missing fields omitted, loadOnly
// fields excluded. Output is keyed by each field's data key.
func (s *Schema) Dump(ctx context.Context, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.fields))
	var iss Issues
	for _, f := range s.fields {
		if f.LoadOnly {
			continue
		}
		path := "/" + f.Name
		v, ok := data[f.Name]
		if !ok || IsMissing(v) {
			if f.Default == nil {
				continue
			}
			v = Produce(f.Default)
			if IsMissing(v) {
				continue
			}
		}
		dv, fiss := dumpValue(ctx, f, v)
		if len(fiss) > 0 {
			iss = append(iss, Rebase(path, fiss)...)
			continue
		}
		out[f.dataKey()] = dv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// DumpPreserving renders like Dump but keeps the input's absence shape:
// fields that exist only because a missing substitution ran are omitted
// instead of echoed back. Explicit nulls were seen and stay.
func (s *Schema) DumpPreserving(ctx context.Context, dec Decoded[map[string]any]) (map[string]any, error) {
	out, err := s.Dump(ctx, dec.Value)
	if err != nil {
		return nil, err
	}
	for _, f := range s.fields {
		p := dec.Presence["/"+f.dataKey()]
		if p&PresenceDefaultApplied != 0 && p&PresenceSeen == 0 {
			delete(out, f.dataKey())
		}
	}
	return out, nil
}
