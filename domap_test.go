package domap_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/domap"
	"github.com/reoring/domap/fields"
	"github.com/reoring/domap/i18n"
	"github.com/reoring/domap/vschema"
)

func mustSchema(t *testing.T, name string, fs ...*domap.Field) *domap.Schema {
	t.Helper()
	s, err := domap.NewSchema(name, fs...)
	if err != nil {
		t.Fatalf("NewSchema(%s): %v", name, err)
	}
	return s
}

func userSchema(t *testing.T) *domap.Schema {
	t.Helper()
	profile := mustSchema(t, "Profile",
		fields.Str("bio"),
		fields.Str("site", domap.StoreAs("s")),
	)
	return mustSchema(t, "User",
		fields.UUID("id", domap.Required()),
		fields.Str("email", domap.Required(), domap.StoreAs("e")),
		fields.Int("age", domap.AllowNone()),
		fields.Float("score"),
		fields.Bool("active"),
		fields.DateTime("created"),
		fields.List("tags", fields.Str("")),
		fields.Dict("attrs", nil),
		fields.Embedded("profile", profile, domap.StoreAs("p")),
		fields.Ref("org", "orgs"),
	)
}

func TestSchema_LoadToStoreFromStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := userSchema(t)

	id := uuid.MustParse("4be0643f-1d98-573b-97cd-ca98a65347dd")
	org := uuid.MustParse("0f0e0d0c-0b0a-4908-8706-050403020100")
	raw := map[string]any{
		"id":      id.String(),
		"email":   "jo@example.com",
		"age":     nil,
		"score":   12.5,
		"active":  true,
		"created": "2023-04-05T06:07:08.9Z",
		"tags":    []any{"go", "db"},
		"attrs":   map[string]any{"plan": "free"},
		"profile": map[string]any{"bio": "hi", "site": "example.com"},
		"org":     org.String(),
	}

	data, err := s.Load(ctx, raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data["id"] != id {
		t.Fatalf("id not coerced to uuid.UUID: %#v", data["id"])
	}
	if _, ok := data["created"].(time.Time); !ok {
		t.Fatalf("created not coerced to time.Time: %#v", data["created"])
	}

	doc, err := s.ToStore(ctx, data)
	if err != nil {
		t.Fatalf("ToStore: %v", err)
	}
	if doc["id"] != id.String() {
		t.Fatalf("uuid must store as its canonical string: %#v", doc["id"])
	}
	if doc["e"] != "jo@example.com" {
		t.Fatalf("aliased field must store under its alias: %v", doc)
	}
	if _, ok := doc["email"]; ok {
		t.Fatalf("declared name must not leak into storage: %v", doc)
	}
	if doc["created"] != "2023-04-05T06:07:08.9Z" {
		t.Fatalf("datetime must store canonically: %#v", doc["created"])
	}
	if v, present := doc["age"]; !present || v != nil {
		t.Fatalf("explicit null must store as null: %v", doc)
	}
	sub, ok := doc["p"].(map[string]any)
	if !ok || sub["s"] != "example.com" {
		t.Fatalf("embedded aliases must apply at depth: %#v", doc["p"])
	}

	back, err := s.FromStore(ctx, doc)
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if diff := cmp.Diff(data, back); diff != "" {
		t.Fatalf("FromStore(ToStore(data)) != data (-want +got):\n%s", diff)
	}
}

func TestSchema_AbsenceIsPreserved(t *testing.T) {
	ctx := context.Background()
	s := userSchema(t)

	data, err := s.Load(ctx, map[string]any{
		"id":    "4be0643f-1d98-573b-97cd-ca98a65347dd",
		"email": "jo@example.com",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	doc, err := s.ToStore(ctx, data)
	if err != nil {
		t.Fatalf("ToStore: %v", err)
	}
	if len(doc) != 2 {
		t.Fatalf("absent fields must stay absent from storage, got %v", doc)
	}

	back, err := s.FromStore(ctx, doc)
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if diff := cmp.Diff(data, back); diff != "" {
		t.Fatalf("absence must survive the round trip (-want +got):\n%s", diff)
	}
}

func TestSchema_LoadRejectsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Doc", fields.Str("title"))

	_, err := s.Load(ctx, map[string]any{"title": "x", "typo": 1})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Path != "/typo" || iss[0].Code != vschema.CodeUnknownField {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestSchema_FromStoreIgnoresUnknownAttributes(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Doc", fields.Str("title", domap.StoreAs("t")))

	back, err := s.FromStore(ctx, map[string]any{"t": "x", "_legacy": 1})
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"title": "x"}, back); diff != "" {
		t.Fatalf("hydration must be schema-driven (-want +got):\n%s", diff)
	}
}

func TestSchema_Directionality(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Account",
		fields.Str("name"),
		fields.Str("password", domap.LoadOnly()),
		fields.Int("version", domap.DumpOnly(), domap.Default(int64(1))),
	)

	// Dump-only fields are not accepted as input.
	_, err := s.Load(ctx, map[string]any{"name": "jo", "version": 3})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/version" || iss[0].Code != vschema.CodeUnknownField {
		t.Fatalf("dump-only input must be rejected, got %v", err)
	}

	data, err := s.Load(ctx, map[string]any{"name": "jo", "password": "s3cret"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Load-only fields never appear in dump output; dump-only defaults do.
	out, err := s.Dump(ctx, data)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if _, leaked := out["password"]; leaked {
		t.Fatalf("load-only field leaked into dump: %v", out)
	}
	if out["version"] != int64(1) {
		t.Fatalf("dump-only default not applied: %v", out)
	}
}

func TestSchema_IOValidateRunsOnlyBeforeStorage(t *testing.T) {
	ctx := context.Background()
	calls := 0
	hook := func(_ context.Context, v any) error {
		calls++
		if v == "taken@example.com" {
			return errors.New("already claimed")
		}
		return nil
	}
	s := mustSchema(t, "User", fields.Str("email", domap.Required(), domap.IOValidate(hook)))

	data, err := s.Load(ctx, map[string]any{"email": "taken@example.com"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if calls != 0 {
		t.Fatalf("hook must not run during Load, ran %d times", calls)
	}

	_, err = s.ToStore(ctx, data)
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Path != "/email" || iss[0].Code != vschema.CodeValidation || iss[0].Message != "already claimed" {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
	if calls != 1 {
		t.Fatalf("hook must run once per ToStore, ran %d times", calls)
	}

	data["email"] = "free@example.com"
	if _, err := s.ToStore(ctx, data); err != nil {
		t.Fatalf("ToStore: %v", err)
	}
	if calls != 2 {
		t.Fatalf("hook must run for accepted values too, ran %d times", calls)
	}
}

func TestSchema_WithCheckRunsOnLoad(t *testing.T) {
	ctx := context.Background()
	s := mustSchema(t, "Window",
		fields.Int("start", domap.Required()),
		fields.Int("end", domap.Required()),
	).WithCheck("ordered", func(_ context.Context, data map[string]any) vschema.Issues {
		st, _ := data["start"].(int64)
		en, _ := data["end"].(int64)
		if st > en {
			return vschema.Issues{vschema.NewIssue("", vschema.CodeValidation, "Start must precede end.", nil)}
		}
		return nil
	})

	if _, err := s.Load(ctx, map[string]any{"start": 1, "end": 2}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err := s.Load(ctx, map[string]any{"start": 3, "end": 2})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Message != "Start must precede end." {
		t.Fatalf("expected the check to fire, got %v", err)
	}
}

func TestNewSchema_ConstructionErrors(t *testing.T) {
	_, err := domap.NewSchema("Bad", fields.Str("a"), fields.Int("a"))
	if !errors.Is(err, domap.ErrDuplicateField) || !errors.Is(err, domap.ErrConstruction) {
		t.Fatalf("expected duplicate-field construction error, got %v", err)
	}

	_, err = domap.NewSchema("Bad", fields.Str("a", domap.StoreAs("x")), fields.Str("b", domap.StoreAs("x")))
	if !errors.Is(err, domap.ErrDuplicateStoreKey) {
		t.Fatalf("expected duplicate-store-key error, got %v", err)
	}

	// A declared name colliding with another field's alias is the same
	// defect: both target one storage attribute.
	_, err = domap.NewSchema("Bad", fields.Str("x"), fields.Str("b", domap.StoreAs("x")))
	if !errors.Is(err, domap.ErrDuplicateStoreKey) {
		t.Fatalf("expected duplicate-store-key error, got %v", err)
	}

	_, err = domap.NewSchema("Bad", domap.NewField("z", "no-such-type"))
	if !errors.Is(err, domap.ErrUnknownKind) {
		t.Fatalf("expected unknown-kind error, got %v", err)
	}

	_, err = domap.NewSchema("Bad", fields.List("xs", nil))
	if !errors.Is(err, domap.ErrConstruction) {
		t.Fatalf("expected construction error for list without element, got %v", err)
	}
}

func TestUniquenessError(t *testing.T) {
	e := domap.NewUniquenessError(fields.Str("email", domap.Unique()))
	if e.Error() != "unique: Field value must be unique." {
		t.Fatalf("unexpected error text: %q", e.Error())
	}
	iss := e.Issues()
	if len(iss) != 1 || iss[0].Path != "/email" || iss[0].Code != vschema.CodeUnique {
		t.Fatalf("unexpected issues: %+v", iss)
	}

	ce := domap.NewCompoundUniquenessError(fields.Str("org"), fields.Str("name"))
	if ce.Message() != "Values of fields org, name must be unique together." {
		t.Fatalf("unexpected compound message: %q", ce.Message())
	}
	if ciss := ce.Issues(); len(ciss) != 1 || ciss[0].Path != "" || ciss[0].Code != vschema.CodeUniqueCompound {
		t.Fatalf("unexpected compound issues: %+v", ce.Issues())
	}
}

func TestUniquenessError_TranslatesLazily(t *testing.T) {
	e := domap.NewUniquenessError(fields.Str("email", domap.Unique()))

	i18n.SetTranslator(i18n.Catalog{"Field value must be unique.": "Wert muss eindeutig sein."})
	defer i18n.SetTranslator(nil)

	if e.Message() != "Wert muss eindeutig sein." {
		t.Fatalf("message must translate at read time: %q", e.Message())
	}
}
