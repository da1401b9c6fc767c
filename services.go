package domap

import (
	"context"

	"github.com/reoring/domap/vschema"
)

// serviceKey is a distinct context key per type parameter.
type serviceKey[T any] struct{}

// WithService stores a typed collaborator in the context for io-validators
// to pick up: a repository handle for existence probes, a clock, a client.
// The engine itself never touches services; it only carries the context
// into the hooks that run before storage.
func WithService[T any](ctx context.Context, svc T) context.Context {
	return context.WithValue(ctx, serviceKey[T]{}, any(svc))
}

// Service retrieves a typed collaborator from the context.
func Service[T any](ctx context.Context) (T, bool) {
	var zero T
	v := ctx.Value(serviceKey[T]{})
	if v == nil {
		return zero, false
	}
	if tv, ok := v.(T); ok {
		return tv, true
	}
	return zero, false
}

// RequireService returns the collaborator or an error that surfaces as a
// dependency_unavailable issue when returned from an io-validator.
func RequireService[T any](ctx context.Context) (T, error) {
	if v, ok := Service[T](ctx); ok {
		return v, nil
	}
	var zero T
	return zero, vschema.Issues{vschema.NewIssue(
		"", vschema.CodeDependency, "Required service not provided.", nil,
	)}
}
