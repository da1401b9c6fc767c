package domap

import (
	"errors"
	"fmt"

	"github.com/reoring/domap/i18n"
	"github.com/reoring/domap/vschema"
)

// Construction-time defects. They surface while a schema hierarchy is
// being assembled and are never raised by Load, Dump or the storage
// conversions afterwards.
var (
	ErrConstruction      = errors.New("domap: construction error")
	ErrDuplicateField    = fmt.Errorf("%w: duplicate field name", ErrConstruction)
	ErrDuplicateStoreKey = fmt.Errorf("%w: duplicate storage key", ErrConstruction)
	ErrUnknownKind       = fmt.Errorf("%w: no kind registered for field type", ErrConstruction)
)

// UniquenessError reports a storage-level uniqueness violation. The
// engine never raises it itself; a storage driver does, after a unique
// index or probe rejects a write. Messages render lazily through the
// i18n translator, using the colliding fields' configured templates.
type UniquenessError struct {
	// Fields lists the declared names of the colliding fields.
	Fields []string
	// Code is CodeUnique for a single field, CodeUniqueCompound for a
	// compound constraint.
	Code string

	template string
}

// NewUniquenessError builds the single-field variant from f's message
// templates.
func NewUniquenessError(f *Field) *UniquenessError {
	return &UniquenessError{
		Fields:   []string{f.name},
		Code:     vschema.CodeUnique,
		template: f.messages.Template(vschema.CodeUnique),
	}
}

// NewCompoundUniquenessError builds the multi-field variant; the message
// template comes from the first field.
func NewCompoundUniquenessError(fs ...*Field) *UniquenessError {
	names := make([]string, 0, len(fs))
	tmpl := defaultFieldMessages[vschema.CodeUniqueCompound]
	for i, f := range fs {
		names = append(names, f.name)
		if i == 0 {
			tmpl = f.messages.Template(vschema.CodeUniqueCompound)
		}
	}
	return &UniquenessError{Fields: names, Code: vschema.CodeUniqueCompound, template: tmpl}
}

// Message returns the translated, interpolated message.
func (e *UniquenessError) Message() string {
	return i18n.Interpolate(i18n.T(e.template), map[string]any{"fields": e.Fields})
}

func (e *UniquenessError) Error() string {
	return e.Code + ": " + e.Message()
}

// Issues renders the violation in the validation error model: the
// single-field form points at the field, the compound form at the
// document root.
func (e *UniquenessError) Issues() vschema.Issues {
	path := ""
	if e.Code == vschema.CodeUnique && len(e.Fields) == 1 {
		path = "/" + e.Fields[0]
	}
	return vschema.Issues{{
		Path:    path,
		Code:    e.Code,
		Message: e.Message(),
		Params:  map[string]any{"fields": e.Fields},
	}}
}
