package vschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/domap/i18n"
)

// Issue codes.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeNull           = "null"
	CodeUnknownField   = "unknown_field"
	CodeValidation     = "validation"
	CodeParseError     = "parse_error"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodePattern        = "pattern"
	CodeInvalidEnum    = "invalid_enum"
	CodeNotEqual       = "not_equal"
	CodeUnique         = "unique"
	CodeUniqueCompound = "unique_compound"
	CodeDuplicateKey   = "duplicate_key"
	CodeDependency     = "dependency_unavailable"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // slash-separated path to the offending value (for example: /items/2/price)
	Code    string // one of the codes listed above
	Message string // localized at creation through the active translator
	Cause   error  // optional underlying error
	// Params carries structured parameters (e.g., {"min": 1, "got": 42})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// NewIssue builds an Issue at path, translating template through the active
// catalog and interpolating params into the translated text.
func NewIssue(path, code, template string, params map[string]any) Issue {
	return Issue{
		Path:    path,
		Code:    code,
		Message: i18n.Interpolate(i18n.T(template), params),
		Params:  params,
	}
}

// Rebase prefixes every issue path with prefix, so failures reported
// relative to a nested value end up addressed from the document root.
func Rebase(prefix string, iss Issues) Issues {
	if prefix == "" || len(iss) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = prefix + it.Path
		out[i] = it
	}
	return out
}

// Violation reports one failed check before it is anchored to a path. Kinds
// and validators return it; the engine resolves the message template
// (falling back to the field's templates when Template is empty) and
// attaches the path.
type Violation struct {
	Code     string
	Template string
	Params   map[string]any
	Cause    error
}

func (e *Violation) Error() string {
	if e.Template != "" {
		return e.Code + ": " + e.Template
	}
	return e.Code
}

func (e *Violation) Unwrap() error { return e.Cause }

// IssuesAt resolves err into Issues anchored at path, using f's message
// templates for Violations that carry none of their own. Nested Issues are
// rebased under path; any other error becomes a single generic validation
// issue whose message is the error text run through the translator.
func IssuesAt(path string, f *Field, err error) Issues {
	switch e := err.(type) {
	case *Violation:
		tmpl := e.Template
		if tmpl == "" {
			tmpl = f.Messages.Template(e.Code)
		}
		return Issues{{
			Path:    path,
			Code:    e.Code,
			Message: i18n.Interpolate(i18n.T(tmpl), e.Params),
			Cause:   e.Cause,
			Params:  e.Params,
		}}
	case Issues:
		return Rebase(path, e)
	default:
		if iss, ok := AsIssues(err); ok {
			return Rebase(path, iss)
		}
		return Issues{{Path: path, Code: CodeValidation, Message: i18n.T(err.Error()), Cause: err}}
	}
}
