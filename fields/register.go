package fields

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/domap"
	"github.com/reoring/domap/vschema"
)

func init() {
	domap.RegisterKind("str", domap.KindEntry{Kind: scalarKind(vschema.StringKind{})})
	domap.RegisterKind("int", domap.KindEntry{
		Kind:      scalarKind(vschema.IntegerKind{}),
		Converter: func(*domap.Field) domap.Converter { return intConv{} },
	})
	domap.RegisterKind("float", domap.KindEntry{
		Kind:      scalarKind(vschema.FloatKind{}),
		Converter: func(*domap.Field) domap.Converter { return floatConv{} },
	})
	domap.RegisterKind("bool", domap.KindEntry{Kind: scalarKind(vschema.BooleanKind{})})
	domap.RegisterKind("any", domap.KindEntry{Kind: scalarKind(vschema.AnyKind{})})
	domap.RegisterKind("datetime", domap.KindEntry{
		Kind:      scalarKind(vschema.DateTimeKind{}),
		Converter: func(*domap.Field) domap.Converter { return datetimeConv{} },
	})
	domap.RegisterKind("uuid", domap.KindEntry{
		Kind:      scalarKind(vschema.UUIDKind{}),
		Converter: func(*domap.Field) domap.Converter { return uuidConv{} },
	})
	domap.RegisterKind("ref", domap.KindEntry{
		Kind:      scalarKind(vschema.UUIDKind{}),
		Converter: func(*domap.Field) domap.Converter { return uuidConv{} },
	})
	domap.RegisterKind("list", domap.KindEntry{
		Kind:      listKind,
		Converter: func(f *domap.Field) domap.Converter { return listConv{elem: f.Elem()} },
	})
	domap.RegisterKind("dict", domap.KindEntry{
		Kind:      dictKind,
		Converter: func(f *domap.Field) domap.Converter { return dictConv{elem: f.Elem()} },
	})
	domap.RegisterKind("embedded", domap.KindEntry{
		Kind:      embeddedKind,
		Converter: func(f *domap.Field) domap.Converter { return embeddedConv{sub: f.Sub()} },
	})
}

func scalarKind(k vschema.Kind) func(*domap.Field, bool) (vschema.Kind, error) {
	return func(*domap.Field, bool) (vschema.Kind, error) { return k, nil }
}

func listKind(f *domap.Field, storageAware bool) (vschema.Kind, error) {
	elem := f.Elem()
	if elem == nil {
		return nil, errors.New("list field requires an element declaration")
	}
	pe, err := elem.Project(storageAware)
	if err != nil {
		return nil, err
	}
	return vschema.ListKind{Elem: pe}, nil
}

func dictKind(f *domap.Field, storageAware bool) (vschema.Kind, error) {
	elem := f.Elem()
	if elem == nil {
		return vschema.MapKind{}, nil
	}
	pe, err := elem.Project(storageAware)
	if err != nil {
		return nil, err
	}
	return vschema.MapKind{Elem: pe}, nil
}

func embeddedKind(f *domap.Field, storageAware bool) (vschema.Kind, error) {
	sub := f.Sub()
	if sub == nil {
		return nil, errors.New("embedded field requires a schema")
	}
	ps, err := sub.Project(domap.ProjectOptions{StorageAware: storageAware, CheckUnknown: true})
	if err != nil {
		return nil, err
	}
	return vschema.NestedKind{Schema: ps}, nil
}

// intConv widens whatever numeric representation the storage driver
// hands back into int64. Storing is a passthrough: loaded values are
// already int64.
type intConv struct{}

func (intConv) ToStore(_ context.Context, v any) (any, error) { return v, nil }

func (intConv) FromStore(_ context.Context, v any) (any, error) {
	n, ok := vschema.ToInt64(v)
	if !ok {
		return nil, fmt.Errorf("int: cannot hydrate %T", v)
	}
	return n, nil
}

type floatConv struct{}

func (floatConv) ToStore(_ context.Context, v any) (any, error) { return v, nil }

func (floatConv) FromStore(_ context.Context, v any) (any, error) {
	f, ok := vschema.ToFloat64(v)
	if !ok {
		return nil, fmt.Errorf("float: cannot hydrate %T", v)
	}
	return f, nil
}

// datetimeConv stores times as canonical RFC 3339 strings: UTC,
// nanosecond precision. Parsing its own output reproduces the stored
// instant exactly.
type datetimeConv struct{}

func (datetimeConv) ToStore(_ context.Context, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("datetime: cannot store %T", v)
	}
	return vschema.FormatRFC3339(t), nil
}

func (datetimeConv) FromStore(_ context.Context, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := vschema.ParseRFC3339(t)
		if err != nil {
			return nil, fmt.Errorf("datetime: %w", err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("datetime: cannot hydrate %T", v)
	}
}

// uuidConv stores identifiers in their canonical string form.
type uuidConv struct{}

func (uuidConv) ToStore(_ context.Context, v any) (any, error) {
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("uuid: cannot store %T", v)
	}
	return id.String(), nil
}

func (uuidConv) FromStore(_ context.Context, v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			return nil, fmt.Errorf("uuid: %w", err)
		}
		return id, nil
	default:
		return nil, fmt.Errorf("uuid: cannot hydrate %T", v)
	}
}

type listConv struct{ elem *domap.Field }

func (c listConv) ToStore(ctx context.Context, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("list: cannot store %T", v)
	}
	if c.elem == nil {
		return items, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := c.elem.ToStore(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out[i] = cv
	}
	return out, nil
}

func (c listConv) FromStore(ctx context.Context, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("list: cannot hydrate %T", v)
	}
	if c.elem == nil {
		return items, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		ov, err := c.elem.FromStore(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out[i] = ov
	}
	return out, nil
}

type dictConv struct{ elem *domap.Field }

func (c dictConv) ToStore(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dict: cannot store %T", v)
	}
	if c.elem == nil {
		return m, nil
	}
	out := make(map[string]any, len(m))
	for key, val := range m {
		cv, err := c.elem.ToStore(ctx, val)
		if err != nil {
			return nil, fmt.Errorf("dict value %q: %w", key, err)
		}
		out[key] = cv
	}
	return out, nil
}

func (c dictConv) FromStore(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dict: cannot hydrate %T", v)
	}
	if c.elem == nil {
		return m, nil
	}
	out := make(map[string]any, len(m))
	for key, val := range m {
		ov, err := c.elem.FromStore(ctx, val)
		if err != nil {
			return nil, fmt.Errorf("dict value %q: %w", key, err)
		}
		out[key] = ov
	}
	return out, nil
}

// embeddedConv delegates whole-document conversion to the sub-schema, so
// nested storage aliases apply at every depth.
type embeddedConv struct{ sub *domap.Schema }

func (c embeddedConv) ToStore(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("embedded: cannot store %T", v)
	}
	return c.sub.ToStore(ctx, m)
}

func (c embeddedConv) FromStore(ctx context.Context, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("embedded: cannot hydrate %T", v)
	}
	return c.sub.FromStore(ctx, m)
}
