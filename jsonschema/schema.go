// Package jsonschema exports domap schemas as JSON Schema documents, so
// the same definition that validates and stores documents can also be
// published to API consumers.
package jsonschema

// Schema is a minimal JSON Schema representation used for export. It
// carries only the keywords the field model can produce; extend it
// alongside the validators.
type Schema struct {
	// Core
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Nullable    bool   `json:"nullable,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
	WriteOnly   bool   `json:"writeOnly,omitempty"`

	// Value constraints
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	Const     any      `json:"const,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Storage annotations, mirrored by the openapi importer.
	StoreAs string `json:"x-domap-store-as,omitempty"`
	Unique  bool   `json:"x-domap-unique,omitempty"`
	RefTo   string `json:"x-domap-ref,omitempty"`
}
