package domap

import "context"

// Converter transforms one present value between its object-world and
// storage-world representations. Implementations never see nil or the
// absent sentinel; the field pipeline passes those through untouched.
// FromStore must invert ToStore exactly for every value the field's kind
// accepts.
type Converter interface {
	ToStore(ctx context.Context, v any) (any, error)
	FromStore(ctx context.Context, v any) (any, error)
}

// identityConverter backs every field type whose object and storage
// representations coincide.
type identityConverter struct{}

func (identityConverter) ToStore(_ context.Context, v any) (any, error)   { return v, nil }
func (identityConverter) FromStore(_ context.Context, v any) (any, error) { return v, nil }

// FuncConverter adapts a pair of functions into a Converter. A nil
// function passes the value through unchanged.
type FuncConverter struct {
	To   func(ctx context.Context, v any) (any, error)
	From func(ctx context.Context, v any) (any, error)
}

func (c FuncConverter) ToStore(ctx context.Context, v any) (any, error) {
	if c.To == nil {
		return v, nil
	}
	return c.To(ctx, v)
}

func (c FuncConverter) FromStore(ctx context.Context, v any) (any, error) {
	if c.From == nil {
		return v, nil
	}
	return c.From(ctx, v)
}
