package domap

import (
	"sync"

	"github.com/reoring/domap/vschema"
)

// KindEntry declares, for one field type name, how to obtain its pure
// validation kind and its storage converter. The registry is the explicit
// capability mapping consulted at definition time; a field type with no
// entry is a construction error, never a runtime failure.
type KindEntry struct {
	// Kind builds the vschema kind for f. storageAware selects the
	// storage-keyed flavor: nested fields expose their storage aliases as
	// data keys so the projected schema validates storage-shaped input.
	Kind func(f *Field, storageAware bool) (vschema.Kind, error)
	// Converter builds the storage converter for f. A nil factory, or a
	// nil result, means the identity conversion.
	Converter func(f *Field) Converter
}

var (
	regMu    sync.RWMutex
	registry = map[string]KindEntry{}
)

// RegisterKind installs the entry for typeName. The built-in types
// register from the fields package at init. Registering a taken name or
// a nil Kind factory panics: both are programmer defects.
func RegisterKind(typeName string, e KindEntry) {
	regMu.Lock()
	defer regMu.Unlock()
	if typeName == "" {
		panic("domap: RegisterKind with empty type name")
	}
	if e.Kind == nil {
		panic("domap: RegisterKind: nil Kind factory for type " + typeName)
	}
	if _, dup := registry[typeName]; dup {
		panic("domap: RegisterKind called twice for type " + typeName)
	}
	registry[typeName] = e
}

// RegisteredKinds returns the registered type names, for diagnostics.
func RegisteredKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

func kindEntry(typeName string) (KindEntry, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	e, ok := registry[typeName]
	return e, ok
}
