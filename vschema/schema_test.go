package vschema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/reoring/domap/i18n"
	"github.com/reoring/domap/vschema"
)

// minLen is a test validator; the real ones live in the validate package.
type minLen struct{ n int }

func (v minLen) Validate(val any) error {
	s, _ := val.(string)
	if len(s) < v.n {
		return &vschema.Violation{
			Code:     vschema.CodeTooShort,
			Template: "Shorter than minimum length {min}.",
			Params:   map[string]any{"min": v.n},
		}
	}
	return nil
}

func userSchema(t *testing.T) *vschema.Schema {
	t.Helper()
	s, err := vschema.NewSchema("user",
		&vschema.Field{Name: "name", Kind: vschema.StringKind{}, Required: true, Validators: []vschema.Validator{minLen{2}}},
		&vschema.Field{Name: "age", Kind: vschema.IntegerKind{}},
		&vschema.Field{Name: "nick", Kind: vschema.StringKind{}, AllowNone: true},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func TestSchema_LoadBasic(t *testing.T) {
	ctx := context.Background()
	s := userSchema(t)

	got, err := s.Load(ctx, map[string]any{"name": "ada", "age": 36, "nick": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"name": "ada", "age": int64(36), "nick": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("loaded data mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_LoadCollectsEveryIssue(t *testing.T) {
	ctx := context.Background()
	s := userSchema(t)

	_, err := s.Load(ctx, map[string]any{"age": "old", "nick": 7, "ghost": 1})
	iss, ok := vschema.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	// required name, invalid age, invalid nick, unknown ghost — all at once,
	// the unknown-key issue last.
	if len(iss) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(iss), iss)
	}
	byPath := map[string]string{}
	for _, it := range iss {
		byPath[it.Path] = it.Code
	}
	want := map[string]string{
		"/name":  vschema.CodeRequired,
		"/age":   vschema.CodeInvalidType,
		"/nick":  vschema.CodeInvalidType,
		"/ghost": vschema.CodeUnknownField,
	}
	if diff := cmp.Diff(want, byPath); diff != "" {
		t.Fatalf("issue codes mismatch (-want +got):\n%s", diff)
	}
	if last := iss[len(iss)-1]; last.Code != vschema.CodeUnknownField {
		t.Fatalf("unknown-key issue should come after per-field issues, got %+v", last)
	}
}

func TestSchema_UnknownKeyRejectedEvenWhenAllFieldsOptional(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("thing",
		&vschema.Field{Name: "name", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	_, err = s.Load(ctx, map[string]any{"ghost": 1})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Path != "/ghost" || iss[0].Code != vschema.CodeUnknownField {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
	if iss[0].Params["field"] != "ghost" {
		t.Fatalf("issue should cite the offending key, got %+v", iss[0].Params)
	}
}

func TestSchema_UnknownPolicies(t *testing.T) {
	ctx := context.Background()
	base := userSchema(t)
	raw := map[string]any{"name": "ada", "extra": true}

	if got, err := base.WithUnknown(vschema.UnknownStrip).Load(ctx, raw); err != nil {
		t.Fatalf("strip: unexpected error: %v", err)
	} else if _, ok := got["extra"]; ok {
		t.Fatalf("strip: extra key leaked into result")
	}

	got, err := base.WithUnknown(vschema.UnknownAllow).Load(ctx, raw)
	if err != nil {
		t.Fatalf("allow: unexpected error: %v", err)
	}
	if got["extra"] != true {
		t.Fatalf("allow: extra key should pass through, got %v", got)
	}
}

func TestSchema_DumpOnlyRejectedOnLoad(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("doc",
		&vschema.Field{Name: "id", Kind: vschema.StringKind{}, DumpOnly: true},
		&vschema.Field{Name: "body", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	_, err = s.Load(ctx, map[string]any{"id": "x", "body": "hi"})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/id" || iss[0].Code != vschema.CodeUnknownField {
		t.Fatalf("dump-only field must not accept input, got %v", err)
	}
}

func TestSchema_LoadOnlyExcludedFromDump(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("account",
		&vschema.Field{Name: "email", Kind: vschema.StringKind{}},
		&vschema.Field{Name: "password", Kind: vschema.StringKind{}, LoadOnly: true},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	out, err := s.Dump(ctx, map[string]any{"email": "a@b.c", "password": "hunter2"})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if _, ok := out["password"]; ok {
		t.Fatalf("load-only field leaked into dump: %v", out)
	}
	if out["email"] != "a@b.c" {
		t.Fatalf("unexpected dump: %v", out)
	}
}

func TestSchema_MissingSubstitutionAndDefaults(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("prefs",
		&vschema.Field{Name: "theme", Kind: vschema.StringKind{}, OnMissing: "dark"},
		&vschema.Field{Name: "limit", Kind: vschema.IntegerKind{}, Default: func() any { return int64(10) }},
		&vschema.Field{Name: "note", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	got, err := s.Load(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["theme"] != "dark" {
		t.Fatalf("missing substitution not applied: %v", got)
	}
	if _, ok := got["note"]; ok {
		t.Fatalf("absent field must stay absent: %v", got)
	}

	out, err := s.Dump(ctx, got)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if out["limit"] != int64(10) {
		t.Fatalf("dump default not applied: %v", out)
	}
	if _, ok := out["note"]; ok {
		t.Fatalf("still-missing field must be omitted from dump: %v", out)
	}
}

func TestSchema_DumpPreserving(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("prefs",
		&vschema.Field{Name: "theme", Kind: vschema.StringKind{}, OnMissing: "dark"},
		&vschema.Field{Name: "nick", Kind: vschema.StringKind{}, AllowNone: true},
		&vschema.Field{Name: "note", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	dec, err := s.LoadWithMeta(ctx, map[string]any{"nick": nil, "note": "hi"})
	if err != nil {
		t.Fatalf("LoadWithMeta: %v", err)
	}
	if dec.Value["theme"] != "dark" {
		t.Fatalf("missing substitution not applied: %v", dec.Value)
	}

	out, err := s.DumpPreserving(ctx, dec)
	if err != nil {
		t.Fatalf("DumpPreserving: %v", err)
	}
	// The substituted theme was never in the input and must not be echoed
	// back; the explicit null was.
	want := map[string]any{"nick": nil, "note": "hi"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("preserved dump mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_DataKeyRouting(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("user",
		&vschema.Field{Name: "email", DataKey: "email_address", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	// Load reads input by DataKey and keys the result by declared name.
	got, err := s.Load(ctx, map[string]any{"email_address": "a@b.c"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["email"] != "a@b.c" {
		t.Fatalf("expected name-keyed result, got %v", got)
	}

	// The declared name is not an accepted input key.
	_, err = s.Load(ctx, map[string]any{"email": "a@b.c"})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != vschema.CodeUnknownField {
		t.Fatalf("expected unknown_field for declared name, got %v", err)
	}

	// Dump reads by declared name and keys output by DataKey.
	out, err := s.Dump(ctx, got)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if out["email_address"] != "a@b.c" {
		t.Fatalf("expected DataKey-keyed dump, got %v", out)
	}
}

func TestSchema_ListElementIssuesCarryIndexPaths(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("post",
		&vschema.Field{Name: "tags", Kind: vschema.ListKind{
			Elem: &vschema.Field{Name: "", Kind: vschema.StringKind{}, Validators: []vschema.Validator{minLen{2}}},
		}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	_, err = s.Load(ctx, map[string]any{"tags": []any{"ok", "x", 3}})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %v", err)
	}
	if iss[0].Path != "/tags/1" || iss[0].Code != vschema.CodeTooShort {
		t.Fatalf("unexpected first issue: %+v", iss[0])
	}
	if iss[1].Path != "/tags/2" || iss[1].Code != vschema.CodeInvalidType {
		t.Fatalf("unexpected second issue: %+v", iss[1])
	}
}

func TestSchema_NestedIssuesCarryNestedPaths(t *testing.T) {
	ctx := context.Background()
	inner, err := vschema.NewSchema("address",
		&vschema.Field{Name: "city", Kind: vschema.StringKind{}, Required: true},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	s, err := vschema.NewSchema("user",
		&vschema.Field{Name: "address", Kind: vschema.NestedKind{Schema: inner}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	_, err = s.Load(ctx, map[string]any{"address": map[string]any{"zip": "123"}})
	iss, ok := vschema.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %v", err)
	}
	paths := []string{iss[0].Path, iss[1].Path}
	want := []string{"/address/city", "/address/zip"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_FailFastStopsAtFirstIssue(t *testing.T) {
	ctx := vschema.WithFailFast(context.Background())
	s := userSchema(t)
	_, err := s.Load(ctx, map[string]any{"age": "old", "nick": 7})
	iss, ok := vschema.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 1 {
		t.Fatalf("fail-fast should stop at the first issue, got %d: %v", len(iss), iss)
	}
}

func TestSchema_LoadWithMetaPresence(t *testing.T) {
	ctx := context.Background()
	s, err := vschema.NewSchema("prefs",
		&vschema.Field{Name: "theme", Kind: vschema.StringKind{}, OnMissing: "dark"},
		&vschema.Field{Name: "nick", Kind: vschema.StringKind{}, AllowNone: true},
		&vschema.Field{Name: "name", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	dec, err := s.LoadWithMeta(ctx, map[string]any{"nick": nil, "name": "ada"})
	if err != nil {
		t.Fatalf("LoadWithMeta: %v", err)
	}
	if dec.Presence["/theme"]&vschema.PresenceDefaultApplied == 0 {
		t.Fatalf("expected default-applied for /theme: %v", dec.Presence)
	}
	if p := dec.Presence["/nick"]; p&vschema.PresenceSeen == 0 || p&vschema.PresenceWasNull == 0 {
		t.Fatalf("expected seen+null for /nick: %v", dec.Presence)
	}
	if p := dec.Presence["/name"]; p&vschema.PresenceSeen == 0 || p&vschema.PresenceWasNull != 0 {
		t.Fatalf("expected seen-only for /name: %v", dec.Presence)
	}
}

func TestSchema_WholeSchemaCheck(t *testing.T) {
	ctx := context.Background()
	s := userSchema(t).WithCheck("name-not-nick", func(_ context.Context, data map[string]any) vschema.Issues {
		if data["name"] == data["nick"] {
			return vschema.Issues{vschema.NewIssue("", vschema.CodeValidation, "Name and nick must differ.", nil)}
		}
		return nil
	})
	if _, err := s.Load(ctx, map[string]any{"name": "ada", "nick": "ada"}); err == nil {
		t.Fatalf("expected schema-level check to fail")
	}
	if _, err := s.Load(ctx, map[string]any{"name": "ada", "nick": "al"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewSchemaFrom_BaseFieldsAndShadowing(t *testing.T) {
	ctx := context.Background()
	base, err := vschema.NewSchema("base",
		&vschema.Field{Name: "id", Kind: vschema.StringKind{}},
		&vschema.Field{Name: "age", Kind: vschema.IntegerKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	s, err := vschema.NewSchemaFrom(base, "derived",
		&vschema.Field{Name: "age", Kind: vschema.IntegerKind{}, Required: true},
		&vschema.Field{Name: "name", Kind: vschema.StringKind{}},
	)
	if err != nil {
		t.Fatalf("NewSchemaFrom: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", s.Len())
	}
	if _, err := s.Load(ctx, map[string]any{"id": "a", "name": "b"}); err == nil {
		t.Fatalf("shadowed field should be required now")
	}
}

func TestNewSchema_DuplicateFieldName(t *testing.T) {
	_, err := vschema.NewSchema("bad",
		&vschema.Field{Name: "x", Kind: vschema.StringKind{}},
		&vschema.Field{Name: "x", Kind: vschema.IntegerKind{}},
	)
	if err == nil {
		t.Fatalf("expected duplicate-name error")
	}
}

func TestMessages_LazyTranslation(t *testing.T) {
	defer i18n.SetTranslator(nil)

	s, err := vschema.NewSchema("user",
		&vschema.Field{Name: "name", Kind: vschema.StringKind{}, Required: true},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	// Catalog installed after the schema was built must still apply.
	i18n.SetTranslator(i18n.Catalog{"Missing data for required field.": "Pflichtfeld fehlt."})
	_, lerr := s.Load(context.Background(), map[string]any{})
	iss, _ := vschema.AsIssues(lerr)
	if len(iss) != 1 || iss[0].Message != "Pflichtfeld fehlt." {
		t.Fatalf("expected translated message, got %v", lerr)
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := vschema.Issues{
		{Path: "/a", Code: vschema.CodeRequired},
		{Path: "/b", Code: vschema.CodeInvalidType},
		{Path: "/c", Code: vschema.CodeNull},
		{Path: "/d", Code: vschema.CodeTooShort},
	}
	got := iss.Error()
	want := "required at /a; invalid_type at /b; null at /c; ... (total 4)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
