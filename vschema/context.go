package vschema

import "context"

type failFastKey struct{}

// WithFailFast marks the context so Load stops at the first issue instead
// of collecting everything. The default is to collect.
func WithFailFast(ctx context.Context) context.Context {
	return context.WithValue(ctx, failFastKey{}, true)
}

// IsFailFast reports whether fail-fast mode was requested on ctx.
func IsFailFast(ctx context.Context) bool {
	v, _ := ctx.Value(failFastKey{}).(bool)
	return v
}
