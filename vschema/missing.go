package vschema

// missingType is the type of the Missing sentinel.
type missingType struct{}

func (missingType) String() string { return "<missing>" }

// Missing marks "no value supplied". It is distinct from an explicit nil,
// which is a present null value. Load never stores it in results; a field
// that was absent from the input is simply left out, and Dump omits fields
// whose value is still absent after default substitution.
var Missing any = missingType{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingType)
	return ok
}
