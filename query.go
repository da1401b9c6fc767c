package domap

import "strings"

// translateKey rewrites one filter key into storage form. The head
// segment resolves against this schema; the remainder recurses into the
// embedded schema when the field carries one (directly or as a list
// element), and passes through verbatim otherwise.
func (s *Schema) translateKey(key string) string {
	head, rest, dotted := strings.Cut(key, ".")
	f, ok := s.byName[head]
	if !ok {
		return key
	}
	sk := f.StoreKey()
	if !dotted {
		return sk
	}
	switch {
	case f.sub != nil:
		return sk + "." + f.sub.translateKey(rest)
	case f.elem != nil && f.elem.sub != nil:
		return sk + "." + f.elem.sub.translateKey(rest)
	default:
		return sk + "." + rest
	}
}
