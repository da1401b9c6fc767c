package vschema

import (
	"context"
	"sort"
	"strconv"
)

// ListKind validates every element of a []any against Elem. Element
// failures are reported under the element index ("/2").
type ListKind struct {
	Elem *Field
}

func (ListKind) Name() string { return "list" }

func (k ListKind) Load(ctx context.Context, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, typeViolation("Not a valid list.", v)
	}
	out := make([]any, len(items))
	var iss Issues
	for i, item := range items {
		if k.Elem == nil {
			out[i] = item
			continue
		}
		lv, eiss := loadValue(ctx, k.Elem, item)
		if len(eiss) > 0 {
			iss = append(iss, Rebase("/"+strconv.Itoa(i), eiss)...)
			if IsFailFast(ctx) {
				break
			}
			continue
		}
		out[i] = lv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (k ListKind) Dump(ctx context.Context, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, typeViolation("Not a valid list.", v)
	}
	out := make([]any, len(items))
	var iss Issues
	for i, item := range items {
		if k.Elem == nil {
			out[i] = item
			continue
		}
		dv, eiss := dumpValue(ctx, k.Elem, item)
		if len(eiss) > 0 {
			iss = append(iss, Rebase("/"+strconv.Itoa(i), eiss)...)
			continue
		}
		out[i] = dv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// MapKind validates the values of a map[string]any against Elem; a nil
// Elem passes values through. Keys are visited in sorted order so issue
// ordering stays deterministic.
type MapKind struct {
	Elem *Field
}

func (MapKind) Name() string { return "map" }

func (k MapKind) Load(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeViolation("Not a valid mapping.", v)
	}
	out := make(map[string]any, len(m))
	var iss Issues
	for _, key := range sortedKeys(m) {
		if k.Elem == nil {
			out[key] = m[key]
			continue
		}
		lv, eiss := loadValue(ctx, k.Elem, m[key])
		if len(eiss) > 0 {
			iss = append(iss, Rebase("/"+key, eiss)...)
			if IsFailFast(ctx) {
				break
			}
			continue
		}
		out[key] = lv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (k MapKind) Dump(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeViolation("Not a valid mapping.", v)
	}
	out := make(map[string]any, len(m))
	var iss Issues
	for _, key := range sortedKeys(m) {
		if k.Elem == nil {
			out[key] = m[key]
			continue
		}
		dv, eiss := dumpValue(ctx, k.Elem, m[key])
		if len(eiss) > 0 {
			iss = append(iss, Rebase("/"+key, eiss)...)
			continue
		}
		out[key] = dv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// NestedKind embeds a whole Schema as a single value; failures carry the
// nested path.
type NestedKind struct {
	Schema *Schema
}

func (NestedKind) Name() string { return "nested" }

func (k NestedKind) Load(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeViolation("Not a valid mapping.", v)
	}
	return k.Schema.Load(ctx, m)
}

func (k NestedKind) Dump(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeViolation("Not a valid mapping.", v)
	}
	return k.Schema.Dump(ctx, m)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
