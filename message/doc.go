// Package message defines the payload contract for the RouteKit routing
// engine: every message type carries exactly one of three capability tags
// that determines how it is addressed.
//
// # Capability Tags
//
// A payload declares its routing mode by implementing exactly one of:
//
//   - Untargeted: delivered to every listener registered for the type.
//   - Targeted: delivered to listeners registered for a specific
//     destination identity, plus any-key observers.
//   - Broadcast: delivered to listeners registered for a specific
//     origin identity, plus any-key observers.
//
// Each tag is a single one-line method that dispatches the payload back
// into a Visitor (implemented by the bus). This closed set replaces
// runtime type-method lookup: the untyped dispatch entry points classify
// a message with an ordinary type switch over the three interfaces.
//
//	type Ping struct{ Value int }
//
//	func (p Ping) AcceptUntargeted(v message.Visitor) error {
//	    return v.EmitUntargeted(p)
//	}
//
// A type implementing more than one tag is reported by KindOf as
// ambiguous and rejected at registration time.
//
// # Type Identity
//
// The stable type identity used as a registry key is the payload's
// reflect.Type, obtained once at registration via TypeOf. How a host
// produces payload types (code generation, hand-written structs) is
// outside this package's concern.
package message
