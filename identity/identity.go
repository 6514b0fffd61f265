// Package identity provides the routing identity used to address targeted
// and broadcast messages. An identity wraps a stable 64-bit value taken
// from whatever handle the host system already has (an entity id, an
// object address, a database key) and compares solely on that value.
//
// The zero value is the invalid sentinel: it never matches a live
// identity and must never be used as a dispatch target or source.
package identity

import (
	"fmt"
	"strconv"
)

// ID is an opaque, value-comparable routing identity.
//
// Equality and ordering are defined only over the underlying integer.
// The optional back-reference carries the owning external entity for
// diagnostics and is never consulted for comparison, so two IDs built
// from the same handle are equal regardless of how they were created.
type ID struct {
	value int64
	ref   any
}

// Invalid is the reserved sentinel identity. It routes nothing.
var Invalid = ID{}

// New creates an identity from a stable integer handle.
// A zero handle yields the invalid sentinel.
func New(value int64) ID {
	return ID{value: value}
}

// FromHandle creates an identity from a stable integer handle and keeps
// an opaque back-reference to the owning entity. The reference is
// carried for diagnostics only and does not participate in equality.
func FromHandle(value int64, ref any) ID {
	return ID{value: value, ref: ref}
}

// Valid reports whether the identity refers to a live routing key.
func (id ID) Valid() bool {
	return id.value != 0
}

// Value returns the underlying integer handle.
func (id ID) Value() int64 {
	return id.value
}

// Ref returns the opaque back-reference, or nil if none was attached.
func (id ID) Ref() any {
	return id.ref
}

// Equal reports whether two identities share the same underlying value.
// Back-references are ignored.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

// Less reports whether id orders before other.
func (id ID) Less(other ID) bool {
	return id.value < other.value
}

// Compare returns -1, 0, or 1 ordering identities by underlying value.
func (id ID) Compare(other ID) int {
	switch {
	case id.value < other.value:
		return -1
	case id.value > other.value:
		return 1
	default:
		return 0
	}
}

// Key returns the identity's map key. IDs carrying back-references are
// intentionally reduced to their integer so that every construction of
// the same handle lands in the same registry slot.
func (id ID) Key() int64 {
	return id.value
}

// String returns a human-readable form for logs and diagnostics.
func (id ID) String() string {
	if !id.Valid() {
		return "identity(invalid)"
	}
	return "identity(" + strconv.FormatInt(id.value, 10) + ")"
}

// GoString implements fmt.GoStringer for %#v debugging output.
func (id ID) GoString() string {
	return fmt.Sprintf("identity.New(%d)", id.value)
}
