package domap

// IndexKind classifies the storage index a field combination demands.
type IndexKind int

const (
	// IndexNone demands no index.
	IndexNone IndexKind = iota
	// IndexUnique demands a plain unique index.
	IndexUnique
	// IndexUniqueSparse demands a unique index that skips documents
	// where the attribute is absent.
	IndexUniqueSparse
)

func (k IndexKind) String() string {
	switch k {
	case IndexUnique:
		return "unique"
	case IndexUniqueSparse:
		return "unique,sparse"
	default:
		return "none"
	}
}

// IndexKindFor computes the index requirement from a field's flag
// combination. A non-unique field never demands an index. A unique field
// demands a sparse unique index only when it is optional and nullable,
// because only then may the attribute be legitimately absent from stored
// documents; every other unique combination demands a plain unique
// index.
func IndexKindFor(required, allowNone, unique bool) IndexKind {
	switch {
	case !unique:
		return IndexNone
	case !required && allowNone:
		return IndexUniqueSparse
	default:
		return IndexUnique
	}
}

// Index is one storage index requirement derived from a schema.
type Index struct {
	// Path is the dotted storage attribute path.
	Path string
	// Kind is the demanded index flavor, never IndexNone.
	Kind IndexKind
}

// VisitFunc receives each field with its effective dotted storage path
// and declared name. Returning false skips descent below the field.
type VisitFunc func(path, name string, f *Field) bool

// Visit walks the field tree depth-first in declaration order. Embedded
// schemas descend under the embedding field's storage path; list
// elements carrying an embedded schema descend under the list's own path
// (the element adds no segment).
func (s *Schema) Visit(fn VisitFunc) {
	visitFields(s.fields, "", fn)
}

func visitFields(fs []*Field, prefix string, fn VisitFunc) {
	for _, f := range fs {
		path := f.StoreKey()
		if prefix != "" {
			path = prefix + "." + path
		}
		if !fn(path, f.name, f) {
			continue
		}
		if f.sub != nil {
			visitFields(f.sub.fields, path, fn)
		}
		if f.elem != nil && f.elem.sub != nil {
			visitFields(f.elem.sub.fields, path, fn)
		}
	}
}

// Indexes lists the index requirements of the schema, depth-first in
// declaration order. The engine only reports them; creating and
// enforcing the indexes belongs to the storage layer.
func (s *Schema) Indexes() []Index {
	var out []Index
	s.Visit(func(path, _ string, f *Field) bool {
		if k := IndexKindFor(f.required, f.allowNone, f.unique); k != IndexNone {
			out = append(out, Index{Path: path, Kind: k})
		}
		return true
	})
	return out
}
