package i18n

import (
	"fmt"
	"strings"
)

// Translator turns an untranslated message template into its localized
// form. Implementations typically look the template up in a catalog; a
// template with no catalog entry must come back unchanged.
type Translator interface {
	Translate(template string) string
}

// passthrough is the built-in Translator used when no catalog is installed.
type passthrough struct{}

func (passthrough) Translate(template string) string { return template }

var current Translator = passthrough{}

// SetTranslator replaces the process-wide Translator. Swap it during process
// initialization, before schemas are shared across goroutines; reads are not
// synchronized. Passing nil restores the passthrough behavior.
func SetTranslator(tr Translator) {
	if tr == nil {
		current = passthrough{}
		return
	}
	current = tr
}

// T translates a message template through the current Translator.
func T(template string) string { return current.Translate(template) }

// Catalog is a flat template-to-translation mapping. Missing entries
// translate to themselves.
type Catalog map[string]string

func (c Catalog) Translate(template string) string {
	if msg, ok := c[template]; ok {
		return msg
	}
	return template
}

// Interpolate substitutes {name} placeholders with the given parameters.
// Interpolation happens after translation so catalogs can reorder
// placeholders. Unknown placeholders are left in place.
func Interpolate(template string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", formatParam(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func formatParam(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	default:
		return fmt.Sprint(v)
	}
}
