// Package document implements the mutable side of domap: schema-bound
// containers that hold one document's data, track which fields changed
// since the last persistence boundary, and convert themselves through
// their schema.
//
// The dirty-tracking contract is the Object interface. Base deliberately
// implements none of it: embedding Base states that a type participates
// in the contract without supporting change tracking, and calling those
// methods is a programming error that panics. Doc is the full
// implementation.
package document

// Object is the contract a schema-bound mutable container fulfills:
// whether it changed since the last ClearModified, and explicit control
// over that flag. Storage drivers consult it to skip no-op writes.
type Object interface {
	IsModified() bool
	SetModified()
	ClearModified()
}

// Base is the non-implementation of Object. Types that embed it satisfy
// the interface but panic when change tracking is actually exercised;
// they must override the methods to opt in.
type Base struct{}

func (Base) IsModified() bool { panic("document: IsModified not implemented") }
func (Base) SetModified()     { panic("document: SetModified not implemented") }
func (Base) ClearModified()   { panic("document: ClearModified not implemented") }

var _ Object = Base{}
