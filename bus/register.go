package bus

import (
	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

// The functions below are the typed convenience surface: each one
// builds the matching Descriptor and applies it in a single call.
// Methods cannot carry type parameters, so they live at package level
// and take the bus as their first argument.

func apply(b *Bus, d Descriptor) (Registration, error) {
	if b == nil {
		return Registration{}, errors.WrapFatal(errors.ErrNilBus, "Bus", "Register", "bus validation")
	}
	return b.Register(d)
}

// RegisterUntargeted registers a handler for every untargeted message
// of type T. The handler receives the payload by mutable reference.
func RegisterUntargeted[T message.Untargeted](b *Bus, fn func(*T), priority int) (Registration, error) {
	return apply(b, NewUntargetedHandler[T](fn, priority))
}

// RegisterUntargetedView registers a read-only untargeted handler.
func RegisterUntargetedView[T message.Untargeted](b *Bus, fn func(T), priority int) (Registration, error) {
	return apply(b, NewUntargetedView[T](fn, priority))
}

// RegisterTargeted registers a handler for messages of type T addressed
// to the given destination identity.
func RegisterTargeted[T message.Targeted](b *Bus, target identity.ID, fn func(identity.ID, *T), priority int) (Registration, error) {
	if !target.Valid() {
		return Registration{}, errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Bus", "RegisterTargeted", "target validation")
	}
	return apply(b, NewTargetedHandler[T](target, fn, priority))
}

// RegisterTargetedView registers a read-only exact-key targeted handler.
func RegisterTargetedView[T message.Targeted](b *Bus, target identity.ID, fn func(identity.ID, T), priority int) (Registration, error) {
	if !target.Valid() {
		return Registration{}, errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Bus", "RegisterTargetedView", "target validation")
	}
	return apply(b, NewTargetedView[T](target, fn, priority))
}

// RegisterTargetedObserver registers a handler that fires for targeted
// messages of type T at every destination identity.
func RegisterTargetedObserver[T message.Targeted](b *Bus, fn func(identity.ID, *T), priority int) (Registration, error) {
	return apply(b, NewTargetedObserver[T](fn, priority))
}

// RegisterBroadcast registers a handler for messages of type T
// attributed to the given origin identity.
func RegisterBroadcast[T message.Broadcast](b *Bus, source identity.ID, fn func(identity.ID, *T), priority int) (Registration, error) {
	if !source.Valid() {
		return Registration{}, errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Bus", "RegisterBroadcast", "source validation")
	}
	return apply(b, NewBroadcastHandler[T](source, fn, priority))
}

// RegisterBroadcastView registers a read-only exact-key broadcast handler.
func RegisterBroadcastView[T message.Broadcast](b *Bus, source identity.ID, fn func(identity.ID, T), priority int) (Registration, error) {
	if !source.Valid() {
		return Registration{}, errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Bus", "RegisterBroadcastView", "source validation")
	}
	return apply(b, NewBroadcastView[T](source, fn, priority))
}

// RegisterBroadcastObserver registers a handler that fires for
// broadcast messages of type T from every origin identity.
func RegisterBroadcastObserver[T message.Broadcast](b *Bus, fn func(identity.ID, *T), priority int) (Registration, error) {
	return apply(b, NewBroadcastObserver[T](fn, priority))
}

// RegisterUntargetedInterceptor registers a veto-capable pre-dispatch
// hook for untargeted messages of type T.
func RegisterUntargetedInterceptor[T message.Untargeted](b *Bus, fn func(*T) bool, priority int) (Registration, error) {
	return apply(b, NewUntargetedInterceptor[T](fn, priority))
}

// RegisterTargetedInterceptor registers a veto-capable pre-dispatch
// hook for targeted messages of type T.
func RegisterTargetedInterceptor[T message.Targeted](b *Bus, fn func(identity.ID, *T) bool, priority int) (Registration, error) {
	return apply(b, NewTargetedInterceptor[T](fn, priority))
}

// RegisterBroadcastInterceptor registers a veto-capable pre-dispatch
// hook for broadcast messages of type T.
func RegisterBroadcastInterceptor[T message.Broadcast](b *Bus, fn func(identity.ID, *T) bool, priority int) (Registration, error) {
	return apply(b, NewBroadcastInterceptor[T](fn, priority))
}

// RegisterUntargetedPostProcessor registers a post-dispatch observer
// for untargeted messages of type T.
func RegisterUntargetedPostProcessor[T message.Untargeted](b *Bus, fn func(*T), priority int) (Registration, error) {
	return apply(b, NewUntargetedPostProcessor[T](fn, priority))
}

// RegisterTargetedPostProcessor registers a post-dispatch observer for
// targeted messages of type T. The invalid identity observes every
// destination.
func RegisterTargetedPostProcessor[T message.Targeted](b *Bus, target identity.ID, fn func(identity.ID, *T), priority int) (Registration, error) {
	return apply(b, NewTargetedPostProcessor[T](target, fn, priority))
}

// RegisterBroadcastPostProcessor registers a post-dispatch observer for
// broadcast messages of type T. The invalid identity observes every
// origin.
func RegisterBroadcastPostProcessor[T message.Broadcast](b *Bus, source identity.ID, fn func(identity.ID, *T), priority int) (Registration, error) {
	return apply(b, NewBroadcastPostProcessor[T](source, fn, priority))
}

// RegisterGlobalObserver registers a sink receiving every message of
// every type and addressing mode.
func (b *Bus) RegisterGlobalObserver(sink GlobalSink, priority int) (Registration, error) {
	return b.Register(NewGlobalObserver(sink, priority))
}

// EmitUntargeted is the typed fast path for untargeted emission: no
// reflection on the payload, pointer taken directly.
func EmitUntargeted[T message.Untargeted](b *Bus, msg T) error {
	if b == nil {
		return errors.WrapFatal(errors.ErrNilBus, "Bus", "EmitUntargeted", "bus validation")
	}
	return b.emit(message.KindUntargeted, message.TypeOf[T](), identity.Invalid, &msg)
}

// EmitTargeted is the typed fast path for targeted emission.
func EmitTargeted[T message.Targeted](b *Bus, target identity.ID, msg T) error {
	if b == nil {
		return errors.WrapFatal(errors.ErrNilBus, "Bus", "EmitTargeted", "bus validation")
	}
	if !target.Valid() {
		return errors.WrapInvalid(errors.ErrInvalidIdentity, "Bus", "EmitTargeted", "target validation")
	}
	return b.emit(message.KindTargeted, message.TypeOf[T](), target, &msg)
}

// EmitBroadcast is the typed fast path for broadcast emission.
func EmitBroadcast[T message.Broadcast](b *Bus, source identity.ID, msg T) error {
	if b == nil {
		return errors.WrapFatal(errors.ErrNilBus, "Bus", "EmitBroadcast", "bus validation")
	}
	if !source.Valid() {
		return errors.WrapInvalid(errors.ErrInvalidIdentity, "Bus", "EmitBroadcast", "source validation")
	}
	return b.emit(message.KindBroadcast, message.TypeOf[T](), source, &msg)
}
