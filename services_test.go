package domap_test

import (
	"context"
	"testing"

	"github.com/reoring/domap"
	"github.com/reoring/domap/fields"
	"github.com/reoring/domap/vschema"
)

type emailDirectory struct{ taken map[string]bool }

func TestServiceInjection(t *testing.T) {
	s := mustSchema(t, "User",
		fields.Str("email", domap.Required(), domap.Unique(),
			domap.IOValidate(func(ctx context.Context, v any) error {
				dir, err := domap.RequireService[*emailDirectory](ctx)
				if err != nil {
					return err
				}
				if dir.taken[v.(string)] {
					return &vschema.Violation{Code: vschema.CodeUnique}
				}
				return nil
			}),
		),
	)
	data := map[string]any{"email": "ann@example.com"}

	// No directory in scope: the dependency failure surfaces at the field.
	_, err := s.ToStore(context.Background(), data)
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != vschema.CodeDependency || iss[0].Path != "/email" {
		t.Fatalf("err = %v, want %s at /email", err, vschema.CodeDependency)
	}

	ctx := domap.WithService(context.Background(), &emailDirectory{
		taken: map[string]bool{"ann@example.com": true},
	})
	_, err = s.ToStore(ctx, data)
	iss, ok = vschema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != vschema.CodeUnique || iss[0].Path != "/email" {
		t.Fatalf("err = %v, want unique at /email", err)
	}

	free := domap.WithService(context.Background(), &emailDirectory{taken: map[string]bool{}})
	doc, err := s.ToStore(free, data)
	if err != nil {
		t.Fatalf("ToStore: %v", err)
	}
	if doc["email"] != "ann@example.com" {
		t.Fatalf("doc = %v", doc)
	}
}

func TestService_TypedLookup(t *testing.T) {
	type clock struct{ now string }
	ctx := domap.WithService(context.Background(), &clock{now: "t0"})

	got, ok := domap.Service[*clock](ctx)
	if !ok || got.now != "t0" {
		t.Fatalf("Service = %#v, %v", got, ok)
	}
	if _, ok := domap.Service[*emailDirectory](ctx); ok {
		t.Fatalf("lookup for an unregistered type succeeded")
	}
}
