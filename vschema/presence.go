package vschema

// Presence is the per-field bit flag collected by LoadWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // field appeared in the input
	PresenceWasNull                             // field value was null
	PresenceDefaultApplied                      // missing substitution was applied
)

// PresenceMap maps field paths to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries a loaded value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}
