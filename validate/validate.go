// Package validate provides the stock field validators: stateless
// predicates carrying one translatable message template each. Templates
// are stored untranslated and resolved through the i18n translator when a
// failure is reported (or when Message is read), so catalog swaps after
// schema construction keep taking effect.
//
// Every validator supports projection: Project returns an equivalent
// validator with selected constructor parameters replaced, keeping the
// predicate itself intact.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reoring/domap/i18n"
	"github.com/reoring/domap/vschema"
)

// ErrUnknownParam reports a projection override that names no constructor
// parameter of the validator.
var ErrUnknownParam = errors.New("validate: unknown override parameter")

// F returns a float bound for Range.
func F(v float64) *float64 { return &v }

// I returns an int bound for Length.
func I(v int) *int { return &v }

var (
	_ vschema.Validator = (*Range)(nil)
	_ vschema.Projector = (*Range)(nil)
	_ vschema.Validator = (*Length)(nil)
	_ vschema.Projector = (*Length)(nil)
	_ vschema.Validator = (*Regexp)(nil)
	_ vschema.Projector = (*Regexp)(nil)
	_ vschema.Validator = (*OneOf)(nil)
	_ vschema.Projector = (*OneOf)(nil)
	_ vschema.Validator = (*Equal)(nil)
	_ vschema.Projector = (*Equal)(nil)
)

// Range checks inclusive numeric bounds; nil bounds are open ends.
type Range struct {
	Min *float64
	Max *float64
	// Message overrides the default templates for both bounds.
	Message string
}

func (r *Range) Validate(v any) error {
	n, ok := vschema.ToFloat64(v)
	if !ok {
		return &vschema.Violation{Code: vschema.CodeInvalidType, Template: "Not a valid number."}
	}
	if r.Min != nil && n < *r.Min {
		return &vschema.Violation{
			Code:     vschema.CodeTooSmall,
			Template: r.template("Must be at least {min}."),
			Params:   map[string]any{"min": *r.Min, "got": n},
		}
	}
	if r.Max != nil && n > *r.Max {
		return &vschema.Violation{
			Code:     vschema.CodeTooBig,
			Template: r.template("Must be at most {max}."),
			Params:   map[string]any{"max": *r.Max, "got": n},
		}
	}
	return nil
}

func (r *Range) template(def string) string {
	if r.Message != "" {
		return r.Message
	}
	return def
}

// ErrorMessage returns the active translation of the validator's message
// template. Translation happens at read time, never at construction.
func (r *Range) ErrorMessage() string { return i18n.T(r.template("Must be at least {min}.")) }

func (r *Range) Project(overrides map[string]any) (vschema.Validator, error) {
	c := *r
	for k, v := range overrides {
		switch k {
		case "min":
			p, err := floatPtr(v)
			if err != nil {
				return nil, fmt.Errorf("validate: range override %q: %w", k, err)
			}
			c.Min = p
		case "max":
			p, err := floatPtr(v)
			if err != nil {
				return nil, fmt.Errorf("validate: range override %q: %w", k, err)
			}
			c.Max = p
		case "message":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("validate: range override %q: expected string, got %T", k, v)
			}
			c.Message = s
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, k)
		}
	}
	return &c, nil
}

// Length checks the element count of strings (in runes), slices and maps;
// nil bounds are open ends.
type Length struct {
	Min *int
	Max *int
	// Message overrides the default templates for both bounds.
	Message string
}

func (l *Length) Validate(v any) error {
	n, ok := lengthOf(v)
	if !ok {
		return &vschema.Violation{Code: vschema.CodeInvalidType, Template: "Value has no length."}
	}
	if l.Min != nil && n < *l.Min {
		return &vschema.Violation{
			Code:     vschema.CodeTooShort,
			Template: l.template("Shorter than minimum length {min}."),
			Params:   map[string]any{"min": *l.Min, "got": n},
		}
	}
	if l.Max != nil && n > *l.Max {
		return &vschema.Violation{
			Code:     vschema.CodeTooLong,
			Template: l.template("Longer than maximum length {max}."),
			Params:   map[string]any{"max": *l.Max, "got": n},
		}
	}
	return nil
}

func (l *Length) template(def string) string {
	if l.Message != "" {
		return l.Message
	}
	return def
}

// ErrorMessage returns the active translation of the validator's message
// template.
func (l *Length) ErrorMessage() string {
	return i18n.T(l.template("Shorter than minimum length {min}."))
}

func (l *Length) Project(overrides map[string]any) (vschema.Validator, error) {
	c := *l
	for k, v := range overrides {
		switch k {
		case "min":
			p, err := intPtr(v)
			if err != nil {
				return nil, fmt.Errorf("validate: length override %q: %w", k, err)
			}
			c.Min = p
		case "max":
			p, err := intPtr(v)
			if err != nil {
				return nil, fmt.Errorf("validate: length override %q: %w", k, err)
			}
			c.Max = p
		case "message":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("validate: length override %q: expected string, got %T", k, v)
			}
			c.Message = s
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, k)
		}
	}
	return &c, nil
}

func lengthOf(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len(), true
		}
		return 0, false
	}
}

// Regexp checks strings against a compiled pattern.
type Regexp struct {
	Re      *regexp.Regexp
	Message string
}

// Pattern compiles expr into a Regexp validator; a malformed expression
// panics, which is a schema-definition defect.
func Pattern(expr string) *Regexp {
	return &Regexp{Re: regexp.MustCompile(expr)}
}

func (r *Regexp) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return &vschema.Violation{Code: vschema.CodeInvalidType, Template: "Not a valid string."}
	}
	if !r.Re.MatchString(s) {
		tmpl := r.Message
		if tmpl == "" {
			tmpl = "String does not match expected pattern."
		}
		return &vschema.Violation{
			Code:     vschema.CodePattern,
			Template: tmpl,
			Params:   map[string]any{"pattern": r.Re.String(), "got": s},
		}
	}
	return nil
}

// ErrorMessage returns the active translation of the validator's message
// template.
func (r *Regexp) ErrorMessage() string {
	if r.Message != "" {
		return i18n.T(r.Message)
	}
	return i18n.T("String does not match expected pattern.")
}

func (r *Regexp) Project(overrides map[string]any) (vschema.Validator, error) {
	c := *r
	for k, v := range overrides {
		switch k {
		case "pattern":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("validate: regexp override %q: expected string, got %T", k, v)
			}
			re, err := regexp.Compile(s)
			if err != nil {
				return nil, fmt.Errorf("validate: regexp override %q: %w", k, err)
			}
			c.Re = re
		case "message":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("validate: regexp override %q: expected string, got %T", k, v)
			}
			c.Message = s
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, k)
		}
	}
	return &c, nil
}

// OneOf checks membership in a fixed set of choices. Numeric choices
// compare by value, so int64(2) matches 2.0 and json.Number("2").
type OneOf struct {
	Choices []any
	Message string
}

func (o *OneOf) Validate(v any) error {
	for _, c := range o.Choices {
		if looseEqual(v, c) {
			return nil
		}
	}
	tmpl := o.Message
	if tmpl == "" {
		tmpl = "Must be one of: {choices}."
	}
	return &vschema.Violation{
		Code:     vschema.CodeInvalidEnum,
		Template: tmpl,
		Params:   map[string]any{"choices": choiceList(o.Choices), "got": v},
	}
}

// ErrorMessage returns the active translation of the validator's message
// template.
func (o *OneOf) ErrorMessage() string {
	if o.Message != "" {
		return i18n.T(o.Message)
	}
	return i18n.T("Must be one of: {choices}.")
}

func (o *OneOf) Project(overrides map[string]any) (vschema.Validator, error) {
	c := *o
	for k, v := range overrides {
		switch k {
		case "choices":
			cs, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("validate: oneof override %q: expected []any, got %T", k, v)
			}
			c.Choices = cs
		case "message":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("validate: oneof override %q: expected string, got %T", k, v)
			}
			c.Message = s
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, k)
		}
	}
	return &c, nil
}

// Equal checks equality against one comparable value.
type Equal struct {
	Comparable any
	Message    string
}

func (e *Equal) Validate(v any) error {
	if looseEqual(v, e.Comparable) {
		return nil
	}
	tmpl := e.Message
	if tmpl == "" {
		tmpl = "Must be equal to {other}."
	}
	return &vschema.Violation{
		Code:     vschema.CodeNotEqual,
		Template: tmpl,
		Params:   map[string]any{"other": e.Comparable, "got": v},
	}
}

// ErrorMessage returns the active translation of the validator's message
// template.
func (e *Equal) ErrorMessage() string {
	if e.Message != "" {
		return i18n.T(e.Message)
	}
	return i18n.T("Must be equal to {other}.")
}

func (e *Equal) Project(overrides map[string]any) (vschema.Validator, error) {
	c := *e
	for k, v := range overrides {
		switch k {
		case "comparable":
			c.Comparable = v
		case "message":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("validate: equal override %q: expected string, got %T", k, v)
			}
			c.Message = s
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, k)
		}
	}
	return &c, nil
}

func looseEqual(a, b any) bool {
	if na, ok := vschema.ToFloat64(a); ok {
		if nb, ok := vschema.ToFloat64(b); ok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func choiceList(choices []any) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprint(c)
	}
	return strings.Join(parts, ", ")
}

func floatPtr(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*float64); ok {
		if p == nil {
			return nil, nil
		}
		f := *p
		return &f, nil
	}
	if f, ok := vschema.ToFloat64(v); ok {
		return &f, nil
	}
	return nil, fmt.Errorf("expected number, got %T", v)
}

func intPtr(v any) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*int); ok {
		if p == nil {
			return nil, nil
		}
		n := *p
		return &n, nil
	}
	if n, ok := vschema.ToInt64(v); ok {
		i := int(n)
		return &i, nil
	}
	return nil, fmt.Errorf("expected integer, got %T", v)
}
