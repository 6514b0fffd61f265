package message

import (
	"reflect"

	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
)

// Kind identifies the routing mode a message type carries.
type Kind uint8

const (
	// KindUnknown marks a value with no recognized capability tag.
	KindUnknown Kind = iota
	// KindUntargeted marks messages delivered to every listener of their type.
	KindUntargeted
	// KindTargeted marks messages addressed to a destination identity.
	KindTargeted
	// KindBroadcast marks messages attributed to an origin identity.
	KindBroadcast
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUntargeted:
		return "untargeted"
	case KindTargeted:
		return "targeted"
	case KindBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Visitor is the narrow emit surface a payload dispatches itself into.
// *bus.Bus satisfies it; payloads never need a wider bus reference.
type Visitor interface {
	// EmitUntargeted routes an untargeted message to all listeners of its type.
	EmitUntargeted(msg Untargeted) error
	// EmitTargeted routes a message to listeners of the target identity.
	EmitTargeted(target identity.ID, msg Targeted) error
	// EmitBroadcast routes a message from the source identity to its listeners.
	EmitBroadcast(source identity.ID, msg Broadcast) error
}

// Untargeted is the capability tag for globally routed messages.
// Implementations are one-liners that hand the concrete payload back to
// the visitor:
//
//	func (p Ping) AcceptUntargeted(v Visitor) error { return v.EmitUntargeted(p) }
type Untargeted interface {
	AcceptUntargeted(v Visitor) error
}

// Targeted is the capability tag for point-to-point messages addressed
// to a destination identity.
type Targeted interface {
	AcceptTargeted(v Visitor, target identity.ID) error
}

// Broadcast is the capability tag for messages attributed to an origin
// identity and delivered to that origin's listeners.
type Broadcast interface {
	AcceptBroadcast(v Visitor, source identity.ID) error
}

// KindOf classifies a value by its capability tag. A value carrying no
// tag returns ErrUnsupportedShape; a value carrying more than one tag
// returns ErrAmbiguousShape. Both are construction bugs in the payload
// type, not recoverable dispatch conditions.
func KindOf(msg any) (Kind, error) {
	if msg == nil {
		return KindUnknown, errors.WrapInvalid(
			errors.ErrUnsupportedShape, "Message", "KindOf", "nil message classification")
	}

	kind := KindUnknown
	count := 0
	if _, ok := msg.(Untargeted); ok {
		kind = KindUntargeted
		count++
	}
	if _, ok := msg.(Targeted); ok {
		kind = KindTargeted
		count++
	}
	if _, ok := msg.(Broadcast); ok {
		kind = KindBroadcast
		count++
	}

	switch count {
	case 0:
		return KindUnknown, errors.WrapInvalid(
			errors.ErrUnsupportedShape, "Message", "KindOf", "capability tag classification")
	case 1:
		return kind, nil
	default:
		return KindUnknown, errors.WrapInvalid(
			errors.ErrAmbiguousShape, "Message", "KindOf", "capability tag classification")
	}
}

// TypeOf returns the stable type identity for a payload type.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// ConcreteType returns the registry key for a message value, unwrapping
// one level of pointer so that a *Ping emitted through an untyped entry
// point lands in the same slot as a Ping.
func ConcreteType(msg any) reflect.Type {
	t := reflect.TypeOf(msg)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// TypeName returns a readable name for diagnostics records.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
