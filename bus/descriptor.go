package bus

import (
	"reflect"

	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

// Role identifies which dispatch stage a registration participates in.
type Role uint8

const (
	// RoleInvalid marks an uninitialized descriptor.
	RoleInvalid Role = iota
	// RoleHandler participates in the handler passes.
	RoleHandler
	// RoleInterceptor runs before any handler and may veto.
	RoleInterceptor
	// RolePostProcessor runs after all handlers and cannot veto.
	RolePostProcessor
	// RoleGlobalObserver observes every message of every type and kind.
	RoleGlobalObserver
)

// String returns the lowercase name of the role.
func (r Role) String() string {
	switch r {
	case RoleHandler:
		return "handler"
	case RoleInterceptor:
		return "interceptor"
	case RolePostProcessor:
		return "post-processor"
	case RoleGlobalObserver:
		return "global-observer"
	default:
		return "invalid"
	}
}

// GlobalSink receives every message routed through the bus, one callback
// per addressing mode. Nil callbacks are skipped for that mode.
type GlobalSink struct {
	Untargeted func(msg message.Untargeted)
	Targeted   func(target identity.ID, msg message.Targeted)
	Broadcast  func(source identity.ID, msg message.Broadcast)
}

func (s GlobalSink) empty() bool {
	return s.Untargeted == nil && s.Targeted == nil && s.Broadcast == nil
}

// Descriptor is the data record describing one registration: what stage
// it joins, which message type and routing key it matches, its priority,
// and the owner it is attributed to. Descriptors are inert until applied
// with Bus.Register, which makes staging and replaying them (the
// registration token's enable/disable cycle) a pure data transformation.
//
// Descriptors are built with the New* constructors; the prepared callback
// adapters are unexported.
type Descriptor struct {
	// Role selects the dispatch stage.
	Role Role
	// Kind is the addressing mode the registration matches.
	Kind message.Kind
	// Type is the payload type identity.
	Type reflect.Type
	// Key is the routing key. The invalid identity means "any key"
	// (an observer registration) for targeted and broadcast kinds.
	Key identity.ID
	// Priority orders dispatch; lower runs earlier, ties run in
	// registration order.
	Priority int
	// Owner attributes the registration to a routing identity. Owned
	// handler registrations are deduplicated per (owner, type, key) and
	// delivered through the owner's handler table.
	Owner identity.ID

	invoke    func(key identity.ID, ptr any)
	intercept func(key identity.ID, ptr any) bool
	global    GlobalSink
}

// WithOwner returns a copy of the descriptor attributed to the given
// owner identity.
func (d Descriptor) WithOwner(owner identity.ID) Descriptor {
	d.Owner = owner
	return d
}

// observer reports whether the descriptor matches any routing key.
func (d Descriptor) observer() bool {
	return d.Kind != message.KindUntargeted && !d.Key.Valid()
}

// NewUntargetedHandler describes a handler receiving every untargeted
// message of type T by mutable reference.
func NewUntargetedHandler[T message.Untargeted](fn func(*T), priority int) Descriptor {
	d := Descriptor{
		Role:     RoleHandler,
		Kind:     message.KindUntargeted,
		Type:     message.TypeOf[T](),
		Priority: priority,
	}
	if fn != nil {
		d.invoke = func(_ identity.ID, ptr any) { fn(ptr.(*T)) }
	}
	return d
}

// NewUntargetedView is the read-only variant of NewUntargetedHandler:
// the handler receives the payload by value.
func NewUntargetedView[T message.Untargeted](fn func(T), priority int) Descriptor {
	if fn == nil {
		return Descriptor{Role: RoleHandler, Kind: message.KindUntargeted, Type: message.TypeOf[T](), Priority: priority}
	}
	return NewUntargetedHandler[T](func(p *T) { fn(*p) }, priority)
}

// NewTargetedHandler describes a handler receiving targeted messages of
// type T addressed to the given destination identity.
func NewTargetedHandler[T message.Targeted](target identity.ID, fn func(identity.ID, *T), priority int) Descriptor {
	d := Descriptor{
		Role:     RoleHandler,
		Kind:     message.KindTargeted,
		Type:     message.TypeOf[T](),
		Key:      target,
		Priority: priority,
	}
	if fn != nil {
		d.invoke = func(key identity.ID, ptr any) { fn(key, ptr.(*T)) }
	}
	return d
}

// NewTargetedView is the read-only variant of NewTargetedHandler.
func NewTargetedView[T message.Targeted](target identity.ID, fn func(identity.ID, T), priority int) Descriptor {
	if fn == nil {
		d := NewTargetedHandler[T](target, nil, priority)
		return d
	}
	return NewTargetedHandler[T](target, func(key identity.ID, p *T) { fn(key, *p) }, priority)
}

// NewTargetedObserver describes a handler receiving targeted messages of
// type T for every destination identity.
func NewTargetedObserver[T message.Targeted](fn func(identity.ID, *T), priority int) Descriptor {
	return NewTargetedHandler[T](identity.Invalid, fn, priority)
}

// NewBroadcastHandler describes a handler receiving broadcast messages
// of type T attributed to the given origin identity.
func NewBroadcastHandler[T message.Broadcast](source identity.ID, fn func(identity.ID, *T), priority int) Descriptor {
	d := Descriptor{
		Role:     RoleHandler,
		Kind:     message.KindBroadcast,
		Type:     message.TypeOf[T](),
		Key:      source,
		Priority: priority,
	}
	if fn != nil {
		d.invoke = func(key identity.ID, ptr any) { fn(key, ptr.(*T)) }
	}
	return d
}

// NewBroadcastView is the read-only variant of NewBroadcastHandler.
func NewBroadcastView[T message.Broadcast](source identity.ID, fn func(identity.ID, T), priority int) Descriptor {
	if fn == nil {
		return NewBroadcastHandler[T](source, nil, priority)
	}
	return NewBroadcastHandler[T](source, func(key identity.ID, p *T) { fn(key, *p) }, priority)
}

// NewBroadcastObserver describes a handler receiving broadcast messages
// of type T from every origin identity.
func NewBroadcastObserver[T message.Broadcast](fn func(identity.ID, *T), priority int) Descriptor {
	return NewBroadcastHandler[T](identity.Invalid, fn, priority)
}

// NewUntargetedInterceptor describes a pre-dispatch hook for untargeted
// messages of type T. The hook may mutate the payload in place; returning
// false vetoes the emit before any handler or post-processor runs.
func NewUntargetedInterceptor[T message.Untargeted](fn func(*T) bool, priority int) Descriptor {
	d := Descriptor{
		Role:     RoleInterceptor,
		Kind:     message.KindUntargeted,
		Type:     message.TypeOf[T](),
		Priority: priority,
	}
	if fn != nil {
		d.intercept = func(_ identity.ID, ptr any) bool { return fn(ptr.(*T)) }
	}
	return d
}

// NewTargetedInterceptor describes a pre-dispatch hook for targeted
// messages of type T. Interceptors match the type, not a routing key.
func NewTargetedInterceptor[T message.Targeted](fn func(identity.ID, *T) bool, priority int) Descriptor {
	d := Descriptor{
		Role:     RoleInterceptor,
		Kind:     message.KindTargeted,
		Type:     message.TypeOf[T](),
		Priority: priority,
	}
	if fn != nil {
		d.intercept = func(key identity.ID, ptr any) bool { return fn(key, ptr.(*T)) }
	}
	return d
}

// NewBroadcastInterceptor describes a pre-dispatch hook for broadcast
// messages of type T.
func NewBroadcastInterceptor[T message.Broadcast](fn func(identity.ID, *T) bool, priority int) Descriptor {
	d := Descriptor{
		Role:     RoleInterceptor,
		Kind:     message.KindBroadcast,
		Type:     message.TypeOf[T](),
		Priority: priority,
	}
	if fn != nil {
		d.intercept = func(key identity.ID, ptr any) bool { return fn(key, ptr.(*T)) }
	}
	return d
}

// NewUntargetedPostProcessor describes a post-dispatch observer for
// untargeted messages of type T. Post-processors cannot veto.
func NewUntargetedPostProcessor[T message.Untargeted](fn func(*T), priority int) Descriptor {
	d := Descriptor{
		Role:     RolePostProcessor,
		Kind:     message.KindUntargeted,
		Type:     message.TypeOf[T](),
		Priority: priority,
	}
	if fn != nil {
		d.invoke = func(_ identity.ID, ptr any) { fn(ptr.(*T)) }
	}
	return d
}

// NewTargetedPostProcessor describes a post-dispatch observer for
// targeted messages of type T. Pass the invalid identity as the key to
// observe every destination.
func NewTargetedPostProcessor[T message.Targeted](target identity.ID, fn func(identity.ID, *T), priority int) Descriptor {
	d := Descriptor{
		Role:     RolePostProcessor,
		Kind:     message.KindTargeted,
		Type:     message.TypeOf[T](),
		Key:      target,
		Priority: priority,
	}
	if fn != nil {
		d.invoke = func(key identity.ID, ptr any) { fn(key, ptr.(*T)) }
	}
	return d
}

// NewBroadcastPostProcessor describes a post-dispatch observer for
// broadcast messages of type T. Pass the invalid identity as the key to
// observe every origin.
func NewBroadcastPostProcessor[T message.Broadcast](source identity.ID, fn func(identity.ID, *T), priority int) Descriptor {
	d := Descriptor{
		Role:     RolePostProcessor,
		Kind:     message.KindBroadcast,
		Type:     message.TypeOf[T](),
		Key:      source,
		Priority: priority,
	}
	if fn != nil {
		d.invoke = func(key identity.ID, ptr any) { fn(key, ptr.(*T)) }
	}
	return d
}

// NewGlobalObserver describes a sink receiving every message of every
// type and addressing mode, before the handler passes.
func NewGlobalObserver(sink GlobalSink, priority int) Descriptor {
	return Descriptor{
		Role:     RoleGlobalObserver,
		Priority: priority,
		global:   sink,
	}
}
