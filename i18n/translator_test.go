package i18n

import "testing"

func TestTranslator_PassthroughByDefault(t *testing.T) {
	const tmpl = "Missing data for required field."
	if got := T(tmpl); got != tmpl {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestSetTranslator_SwapTakesEffect(t *testing.T) {
	defer SetTranslator(nil)

	const tmpl = "Field may not be null."
	SetTranslator(Catalog{tmpl: "Le champ ne peut pas être nul."})
	if got := T(tmpl); got != "Le champ ne peut pas être nul." {
		t.Fatalf("expected translated message, got %q", got)
	}

	// entries missing from the catalog fall back to the template itself
	if got := T("Invalid value."); got != "Invalid value." {
		t.Fatalf("expected template fallback, got %q", got)
	}

	SetTranslator(nil)
	if got := T(tmpl); got != tmpl {
		t.Fatalf("expected passthrough after reset, got %q", got)
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	src := []byte("\"Unknown field.\": \"Champ inconnu.\"\n\"Invalid value.\": \"Valeur invalide.\"\n")
	c, err := LoadCatalogYAML(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Translate("Unknown field."); got != "Champ inconnu." {
		t.Fatalf("unexpected translation: %q", got)
	}

	if _, err := LoadCatalogYAML([]byte("- not\n- a\n- mapping\n")); err == nil {
		t.Fatalf("expected error for non-mapping catalog")
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate("Values of fields {fields} must be unique together.", map[string]any{
		"fields": []string{"owner", "name"},
	})
	want := "Values of fields owner, name must be unique together."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// no params: template untouched
	if got := Interpolate("Must be at least {min}.", nil); got != "Must be at least {min}." {
		t.Fatalf("got %q", got)
	}

	if got := Interpolate("Must be at least {min}.", map[string]any{"min": 3}); got != "Must be at least 3." {
		t.Fatalf("got %q", got)
	}
}
