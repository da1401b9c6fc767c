package domap

import (
	"context"
	"fmt"

	"github.com/reoring/domap/vschema"
)

// defaultFieldMessages extends the vschema defaults with the
// storage-level codes every domap field understands.
var defaultFieldMessages = map[string]string{
	vschema.CodeUnique:         "Field value must be unique.",
	vschema.CodeUniqueCompound: "Values of fields {fields} must be unique together.",
}

// IOValidator is the pre-storage validation hook. It runs in ToStore
// before the value is converted, independent of the field's regular
// validators, and may perform storage-aware checks such as uniqueness
// probes. It never runs during Load or Dump.
type IOValidator func(ctx context.Context, v any) error

// Field is the unit of schema definition. It declares the object-world
// value type (through its registered kind), the storage attribute name,
// validation rules, the uniqueness requirement, and the conversion
// pipeline between the object and storage representations.
//
// A Field is schema metadata: it never holds a document value, and it is
// immutable once its schema is built.
type Field struct {
	name     string
	typeName string
	storeAs  string

	required  bool
	allowNone bool
	loadOnly  bool
	dumpOnly  bool
	unique    bool

	defaultVal any
	missingVal any
	validators []vschema.Validator
	ioValidate IOValidator
	messages   *vschema.Messages
	meta       map[string]string

	elem *Field
	sub  *Schema

	conv Converter
	pure *vschema.Field // object-world projection, resolved once
}

// FieldOption configures a Field at construction.
type FieldOption func(*Field)

// Required makes absence of the field a load error.
func Required() FieldOption { return func(f *Field) { f.required = true } }

// AllowNone accepts an explicit null as the field value.
func AllowNone() FieldOption { return func(f *Field) { f.allowNone = true } }

// LoadOnly accepts the field on load but excludes it from dump output.
func LoadOnly() FieldOption { return func(f *Field) { f.loadOnly = true } }

// DumpOnly emits the field on dump but rejects it in load input.
func DumpOnly() FieldOption { return func(f *Field) { f.dumpOnly = true } }

// Unique requires distinct values across stored documents. The engine
// only records the requirement; enforcement belongs to the storage layer
// (see Schema.Indexes).
func Unique() FieldOption { return func(f *Field) { f.unique = true } }

// StoreAs stores the field under key instead of the declared name.
func StoreAs(key string) FieldOption { return func(f *Field) { f.storeAs = key } }

// Default supplies the dump-side fallback for absent values: a constant,
// or a func() any evaluated per dump.
func Default(v any) FieldOption { return func(f *Field) { f.defaultVal = v } }

// OnMissing supplies the load-side substitute for absent values: a
// constant, or a func() any evaluated per load.
func OnMissing(v any) FieldOption { return func(f *Field) { f.missingVal = v } }

// Validate appends validators, run in order after kind coercion.
func Validate(vs ...vschema.Validator) FieldOption {
	return func(f *Field) { f.validators = append(f.validators, vs...) }
}

// IOValidate installs the pre-storage validation hook.
func IOValidate(fn IOValidator) FieldOption { return func(f *Field) { f.ioValidate = fn } }

// Messages overrides message templates by code. Templates are stored
// untranslated; translation happens when an issue is rendered.
func Messages(overrides map[string]string) FieldOption {
	return func(f *Field) {
		for code, tmpl := range overrides {
			f.messages.Set(code, tmpl)
		}
	}
}

// Meta attaches an opaque annotation, e.g. for exporters.
func Meta(key, value string) FieldOption {
	return func(f *Field) {
		if f.meta == nil {
			f.meta = map[string]string{}
		}
		f.meta[key] = value
	}
}

// Elem declares the element field of a container type ("list", "dict").
func Elem(elem *Field) FieldOption { return func(f *Field) { f.elem = elem } }

// Sub declares the embedded schema of an "embedded" field.
func Sub(sub *Schema) FieldOption { return func(f *Field) { f.sub = sub } }

// WithConverter replaces the registered storage converter.
func WithConverter(c Converter) FieldOption { return func(f *Field) { f.conv = c } }

// NewField builds a field of the given registered type name. Resolution
// against the kind registry is attempted immediately and is best-effort
// here; NewSchema reports any field that stays unresolved.
func NewField(name, typeName string, opts ...FieldOption) *Field {
	f := &Field{
		name:     name,
		typeName: typeName,
		messages: vschema.NewMessages(defaultFieldMessages),
	}
	for _, o := range opts {
		o(f)
	}
	f.resolve()
	return f
}

// resolve binds the field to its registry entry: the object-world kind,
// the storage converter, and the cached pure projection. Idempotent.
func (f *Field) resolve() error {
	if f.pure != nil {
		return nil
	}
	ent, ok := kindEntry(f.typeName)
	if !ok {
		return fmt.Errorf("%w: field %q has type %q", ErrUnknownKind, f.name, f.typeName)
	}
	if f.conv == nil && ent.Converter != nil {
		f.conv = ent.Converter(f)
	}
	if f.conv == nil {
		f.conv = identityConverter{}
	}
	p, err := f.project(false, nil)
	if err != nil {
		return err
	}
	f.pure = p
	return nil
}

// project collects the validation-relevant parameters of the field and
// instantiates its storage-agnostic counterpart through the registry.
// Caller overrides are applied last, so they win over collected values.
func (f *Field) project(storageAware bool, overrides []ProjectOption) (*vschema.Field, error) {
	ent, ok := kindEntry(f.typeName)
	if !ok {
		return nil, fmt.Errorf("%w: field %q has type %q", ErrUnknownKind, f.name, f.typeName)
	}
	kind, err := ent.Kind(f, storageAware)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrConstruction, f.name, err)
	}
	pf := &vschema.Field{
		Name:       f.name,
		Kind:       kind,
		Required:   f.required,
		AllowNone:  f.allowNone,
		LoadOnly:   f.loadOnly,
		DumpOnly:   f.dumpOnly,
		Default:    f.defaultVal,
		OnMissing:  f.missingVal,
		Validators: append([]vschema.Validator(nil), f.validators...),
		Messages:   f.messages.Clone(),
	}
	if storageAware && f.storeAs != "" {
		pf.DataKey = f.storeAs
	}
	for _, o := range overrides {
		if err := o(pf); err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrConstruction, f.name, err)
		}
	}
	return pf, nil
}

// Project builds the storage-agnostic counterpart of the field. With
// storageAware set, nested data keys carry the storage aliases so the
// result validates storage-shaped input.
func (f *Field) Project(storageAware bool, overrides ...ProjectOption) (*vschema.Field, error) {
	return f.project(storageAware, overrides)
}

// Name returns the declared field name.
func (f *Field) Name() string { return f.name }

// TypeName returns the registered type name ("str", "int", ...).
func (f *Field) TypeName() string { return f.typeName }

// StoreAs returns the storage alias, or "" when none is declared.
func (f *Field) StoreAs() string { return f.storeAs }

// StoreKey returns the effective storage attribute: the alias when one is
// declared, the field name otherwise.
func (f *Field) StoreKey() string {
	if f.storeAs != "" {
		return f.storeAs
	}
	return f.name
}

func (f *Field) Required() bool  { return f.required }
func (f *Field) AllowNone() bool { return f.allowNone }
func (f *Field) LoadOnly() bool  { return f.loadOnly }
func (f *Field) DumpOnly() bool  { return f.dumpOnly }
func (f *Field) Unique() bool    { return f.unique }

// Elem returns the element field of a container type, or nil.
func (f *Field) Elem() *Field { return f.elem }

// Sub returns the embedded schema, or nil.
func (f *Field) Sub() *Schema { return f.sub }

// Default returns the dump-side fallback declaration, or nil.
func (f *Field) Default() any { return f.defaultVal }

// OnMissing returns the load-side substitute declaration, or nil.
func (f *Field) OnMissing() any { return f.missingVal }

// Validators returns a copy of the configured validators.
func (f *Field) Validators() []vschema.Validator {
	return append([]vschema.Validator(nil), f.validators...)
}

// Meta returns the annotation stored under key.
func (f *Field) Meta(key string) (string, bool) {
	v, ok := f.meta[key]
	return v, ok
}

// Deserialize runs the load pipeline for one raw value: directionality,
// missing substitution, the null policy, kind coercion and validators.
// Absent input is expressed by vschema.Missing; a Missing result means
// the value stays absent.
func (f *Field) Deserialize(ctx context.Context, raw any) (any, error) {
	if err := f.resolve(); err != nil {
		return nil, err
	}
	if f.dumpOnly {
		if vschema.IsMissing(raw) {
			return vschema.Missing, nil
		}
		return nil, vschema.Issues{vschema.NewIssue("", vschema.CodeUnknownField,
			f.messages.Template(vschema.CodeUnknownField), map[string]any{"field": f.name})}
	}
	if vschema.IsMissing(raw) {
		if f.missingVal != nil {
			if mv := vschema.Produce(f.missingVal); !vschema.IsMissing(mv) {
				return mv, nil
			}
			return vschema.Missing, nil
		}
		if f.required {
			return nil, vschema.Issues{vschema.NewIssue("", vschema.CodeRequired,
				f.messages.Template(vschema.CodeRequired), nil)}
		}
		return vschema.Missing, nil
	}
	return vschema.LoadValue(ctx, f.pure, raw)
}

// Serialize runs the dump pipeline for the value stored under attr in
// source. LoadOnly fields and still-absent values yield Missing.
func (f *Field) Serialize(ctx context.Context, attr string, source map[string]any) (any, error) {
	if err := f.resolve(); err != nil {
		return nil, err
	}
	if f.loadOnly {
		return vschema.Missing, nil
	}
	v, ok := source[attr]
	if !ok || vschema.IsMissing(v) {
		if f.defaultVal == nil {
			return vschema.Missing, nil
		}
		v = vschema.Produce(f.defaultVal)
		if vschema.IsMissing(v) {
			return vschema.Missing, nil
		}
	}
	return vschema.DumpValue(ctx, f.pure, v)
}

// ToStore converts one object-world value to its storage representation.
// The absent sentinel and nil pass through untouched.
func (f *Field) ToStore(ctx context.Context, v any) (any, error) {
	if vschema.IsMissing(v) {
		return vschema.Missing, nil
	}
	if v == nil {
		return nil, nil
	}
	if err := f.resolve(); err != nil {
		return nil, err
	}
	return f.conv.ToStore(ctx, v)
}

// FromStore converts one storage value back to the object world. It is
// the exact inverse of ToStore; the absent sentinel and nil pass through.
func (f *Field) FromStore(ctx context.Context, v any) (any, error) {
	if vschema.IsMissing(v) {
		return vschema.Missing, nil
	}
	if v == nil {
		return nil, nil
	}
	if err := f.resolve(); err != nil {
		return nil, err
	}
	return f.conv.FromStore(ctx, v)
}

// TranslateQuery maps an object-world filter entry for this field to its
// storage form: the predicate is kept as-is and keyed by the storage
// attribute when one is declared, by key otherwise.
func (f *Field) TranslateQuery(key string, pred any) map[string]any {
	k := f.storeAs
	if k == "" {
		k = key
	}
	return map[string]any{k: pred}
}

// ProjectOption adjusts one projected field; options run after parameter
// collection, so they always win.
type ProjectOption func(*vschema.Field) error

// ProjectRequired overrides the required flag.
func ProjectRequired(required bool) ProjectOption {
	return func(pf *vschema.Field) error { pf.Required = required; return nil }
}

// ProjectAllowNone overrides the null policy.
func ProjectAllowNone(allow bool) ProjectOption {
	return func(pf *vschema.Field) error { pf.AllowNone = allow; return nil }
}

// ProjectDefault overrides the dump-side default.
func ProjectDefault(v any) ProjectOption {
	return func(pf *vschema.Field) error { pf.Default = v; return nil }
}

// ProjectOnMissing overrides the load-side substitute.
func ProjectOnMissing(v any) ProjectOption {
	return func(pf *vschema.Field) error { pf.OnMissing = v; return nil }
}

// ProjectDataKey overrides the external data key.
func ProjectDataKey(key string) ProjectOption {
	return func(pf *vschema.Field) error { pf.DataKey = key; return nil }
}

// ProjectValidators replaces the validator list.
func ProjectValidators(vs ...vschema.Validator) ProjectOption {
	return func(pf *vschema.Field) error {
		pf.Validators = append([]vschema.Validator(nil), vs...)
		return nil
	}
}

// ProjectMessages overrides message templates by code.
func ProjectMessages(overrides map[string]string) ProjectOption {
	return func(pf *vschema.Field) error {
		if pf.Messages == nil {
			pf.Messages = vschema.NewMessages(nil)
		}
		for code, tmpl := range overrides {
			pf.Messages.Set(code, tmpl)
		}
		return nil
	}
}

// ProjectValidatorParams rebuilds each projectable validator with the
// given parameter overrides; validators that do not support projection
// are kept unchanged.
func ProjectValidatorParams(overrides map[string]any) ProjectOption {
	return func(pf *vschema.Field) error {
		for i, v := range pf.Validators {
			p, ok := v.(vschema.Projector)
			if !ok {
				continue
			}
			nv, err := p.Project(overrides)
			if err != nil {
				return err
			}
			pf.Validators[i] = nv
		}
		return nil
	}
}
