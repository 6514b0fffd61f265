package bus

import "github.com/google/uuid"

// Handle is an opaque correlation token identifying a single live
// registration. Handles are freshly minted per registration and never
// reused, so a stale handle can only ever miss.
type Handle struct {
	id uuid.UUID
}

// NewHandle mints a fresh handle. Exposed for the registration token,
// which correlates staged definitions with their bus-side activations.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

// Valid reports whether the handle was minted (as opposed to zero).
func (h Handle) Valid() bool {
	return h.id != uuid.Nil
}

// String returns the handle's UUID form for logs and diagnostics.
func (h Handle) String() string {
	if !h.Valid() {
		return "handle(invalid)"
	}
	return h.id.String()
}
