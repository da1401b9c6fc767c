package document

// List wraps a slice value inside a document so that element mutations
// participate in dirty tracking. Like Doc, it is per-request state and
// not safe for concurrent use.
type List struct {
	items    []any
	modified bool
}

var _ Object = (*List)(nil)

// NewList builds a tracked list over items; the backing slice is copied.
func NewList(items ...any) *List {
	return &List{items: append([]any(nil), items...)}
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// Get returns the element at i.
func (l *List) Get(i int) any { return l.items[i] }

// Set replaces the element at i and marks the list modified.
func (l *List) Set(i int, v any) {
	l.items[i] = v
	l.modified = true
}

// Append adds elements and marks the list modified.
func (l *List) Append(vs ...any) {
	l.items = append(l.items, vs...)
	l.modified = true
}

// Remove deletes the element at i and marks the list modified.
func (l *List) Remove(i int) {
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.modified = true
}

// Items returns a copy of the elements.
func (l *List) Items() []any { return append([]any(nil), l.items...) }

func (l *List) IsModified() bool { return l.modified }
func (l *List) SetModified()     { l.modified = true }
func (l *List) ClearModified()   { l.modified = false }
