package vschema

import "github.com/reoring/domap/i18n"

// defaultTemplates are the built-in message templates, keyed by issue code.
var defaultTemplates = map[string]string{
	CodeRequired:     "Missing data for required field.",
	CodeNull:         "Field may not be null.",
	CodeInvalidType:  "Invalid input type.",
	CodeValidation:   "Invalid value.",
	CodeUnknownField: "Unknown field.",
	CodeParseError:   "Invalid input.",
	CodeDuplicateKey: "Duplicate object key.",
	CodeDependency:   "Required service not provided.",
}

// Messages maps issue codes to untranslated message templates. Templates
// are resolved through the active translator on every read, never at
// construction, so catalog swaps after a schema is built keep taking
// effect. A nil *Messages is valid and serves the built-in defaults.
type Messages struct {
	templates map[string]string
}

// NewMessages builds a Messages over the built-in defaults with the given
// overrides applied.
func NewMessages(overrides map[string]string) *Messages {
	m := &Messages{templates: make(map[string]string, len(overrides))}
	for code, tmpl := range overrides {
		m.templates[code] = tmpl
	}
	return m
}

// Template returns the untranslated template for code, falling back to the
// built-in defaults and finally to the code itself.
func (m *Messages) Template(code string) string {
	if m != nil {
		if tmpl, ok := m.templates[code]; ok {
			return tmpl
		}
	}
	if tmpl, ok := defaultTemplates[code]; ok {
		return tmpl
	}
	return code
}

// Get returns the translated message for code.
func (m *Messages) Get(code string) string {
	return i18n.T(m.Template(code))
}

// Set installs a template for code and returns m for chaining. Intended for
// schema-definition time only; Messages are read-only once shared.
func (m *Messages) Set(code, template string) *Messages {
	if m.templates == nil {
		m.templates = map[string]string{}
	}
	m.templates[code] = template
	return m
}

// Clone returns an independent copy, so projected fields can adjust their
// templates without touching the source field.
func (m *Messages) Clone() *Messages {
	if m == nil {
		return nil
	}
	c := &Messages{templates: make(map[string]string, len(m.templates))}
	for code, tmpl := range m.templates {
		c.templates[code] = tmpl
	}
	return c
}
