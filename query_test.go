package domap_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/domap"
	"github.com/reoring/domap/fields"
)

func TestField_TranslateQuery(t *testing.T) {
	aliased := fields.Str("email", domap.StoreAs("e"))
	got := aliased.TranslateQuery("email", map[string]any{"$ne": nil})
	want := map[string]any{"e": map[string]any{"$ne": nil}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TranslateQuery mismatch (-want +got):\n%s", diff)
	}

	plain := fields.Str("bio")
	if diff := cmp.Diff(map[string]any{"bio": "x"}, plain.TranslateQuery("bio", "x")); diff != "" {
		t.Fatalf("unaliased field must keep the caller's key:\n%s", diff)
	}
}

func TestSchema_TranslateQuery(t *testing.T) {
	contact := mustSchema(t, "Contact",
		fields.Str("phone", domap.StoreAs("ph")),
		fields.Str("city"),
	)
	device := mustSchema(t, "Device",
		fields.Str("serial", domap.StoreAs("sn")),
	)
	s := mustSchema(t, "User",
		fields.Str("email", domap.StoreAs("e")),
		fields.Int("age"),
		fields.Embedded("contact", contact, domap.StoreAs("c")),
		fields.List("devices", fields.Embedded("", device), domap.StoreAs("d")),
	)

	got := s.TranslateQuery(map[string]any{
		"email":                 "jo@example.com",
		"age":                   map[string]any{"$gte": 18},
		"contact.phone":         "555",
		"contact.city":          "Kyoto",
		"devices.serial":        "abc",
		"contact.missing.inner": 1,
		"not_a_field":           true,
	})
	want := map[string]any{
		"e":                     "jo@example.com",
		"age":                   map[string]any{"$gte": 18},
		"c.ph":                  "555",
		"c.city":                "Kyoto",
		"d.sn":                  "abc",
		"c.missing.inner":       1,
		"not_a_field":           true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TranslateQuery mismatch (-want +got):\n%s", diff)
	}
}
