package bus

import (
	"reflect"
	"time"

	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
	"github.com/c360/routekit/priority"
)

// emitPlan is the immutable snapshot of every list an emit will walk.
// Taken under the read lock before dispatch so re-entrant registration
// or deregistration cannot disturb the in-flight pass.
type emitPlan struct {
	interceptors []*entry
	globals      []*entry
	exact        []*entry
	anyKey       []*entry
	postExact    []*entry
	postAny      []*entry
}

func snapshot(l *priority.List[*entry]) []*entry {
	if l == nil {
		return nil
	}
	return l.Snapshot()
}

func (b *Bus) plan(kind message.Kind, msgType reflect.Type, key identity.ID) emitPlan {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := emitPlan{
		interceptors: snapshot(b.interceptors[kind][msgType]),
		globals:      b.globals.Snapshot(),
	}

	handlers := b.handlers[kind]
	posts := b.posts[kind]
	if kind == message.KindUntargeted {
		p.exact = snapshot(handlers.anyKey[msgType])
		p.postExact = snapshot(posts.anyKey[msgType])
		return p
	}

	tk := typeKey{msgType: msgType, key: key.Key()}
	p.exact = snapshot(handlers.exact[tk])
	p.anyKey = snapshot(handlers.anyKey[msgType])
	p.postExact = snapshot(posts.exact[tk])
	p.postAny = snapshot(posts.anyKey[msgType])
	return p
}

// emit runs the full dispatch pipeline for one message instance.
// ptr is a pointer to the payload; interceptor mutations through it are
// visible to every later stage of this emit.
func (b *Bus) emit(kind message.Kind, msgType reflect.Type, key identity.ID, ptr any) error {
	start := time.Now()
	switch kind {
	case message.KindUntargeted:
		b.emitsUntargeted.Add(1)
	case message.KindTargeted:
		b.emitsTargeted.Add(1)
	case message.KindBroadcast:
		b.emitsBroadcast.Add(1)
	}
	if b.hooks.EmitStarted != nil {
		b.hooks.EmitStarted(kind, msgType)
	}

	p := b.plan(kind, msgType, key)

	// Pass 1: interceptors. First veto short-circuits the entire emit.
	for _, e := range p.interceptors {
		if !e.desc.intercept(key, ptr) {
			b.emitsVetoed.Add(1)
			if b.hooks.EmitVetoed != nil {
				b.hooks.EmitVetoed(kind, msgType)
			}
			b.logger.Debug("emit vetoed",
				"kind", kind.String(),
				"type", message.TypeName(msgType),
				"interceptor", e.handle.String())
			return nil
		}
	}

	// Pass 2: global observers.
	if len(p.globals) > 0 {
		value := valueOf(ptr)
		for _, e := range p.globals {
			e.desc.global.dispatch(kind, key, value)
		}
	}

	// Pass 3: handlers, exact key then any key.
	invoked := 0
	for _, e := range p.exact {
		if e.call(key, ptr) {
			invoked++
		}
	}
	for _, e := range p.anyKey {
		if e.call(key, ptr) {
			invoked++
		}
	}
	b.handlerInvocations.Add(uint64(invoked))

	// A keyed emit with no listener is a valid outcome, typically an
	// already-torn-down target. Logged, never an error.
	if invoked == 0 && kind != message.KindUntargeted {
		b.routingMisses.Add(1)
		if b.hooks.RoutingMiss != nil {
			b.hooks.RoutingMiss(kind, msgType, key)
		}
		b.logger.Debug("routing miss",
			"kind", kind.String(),
			"type", message.TypeName(msgType),
			"key", key.String())
	}

	// Pass 4: post-processors, same two-pass shape.
	for _, e := range p.postExact {
		e.call(key, ptr)
	}
	for _, e := range p.postAny {
		e.call(key, ptr)
	}

	if b.hooks.EmitCompleted != nil {
		b.hooks.EmitCompleted(kind, msgType, invoked, time.Since(start))
	}
	return nil
}

// dispatch fans a message out to the matching global sink callback.
func (s GlobalSink) dispatch(kind message.Kind, key identity.ID, value any) {
	switch kind {
	case message.KindUntargeted:
		if s.Untargeted != nil {
			if m, ok := value.(message.Untargeted); ok {
				s.Untargeted(m)
			}
		}
	case message.KindTargeted:
		if s.Targeted != nil {
			if m, ok := value.(message.Targeted); ok {
				s.Targeted(key, m)
			}
		}
	case message.KindBroadcast:
		if s.Broadcast != nil {
			if m, ok := value.(message.Broadcast); ok {
				s.Broadcast(key, m)
			}
		}
	}
}

// valueOf dereferences the dispatch pointer for interface observers,
// capturing any interceptor mutations applied so far.
func valueOf(ptr any) any {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return ptr
}

// addressable returns the payload type and a pointer to a mutable copy
// of an interface-typed message. The typed generic emits avoid this
// reflection step entirely.
func addressable(msg any) (reflect.Type, any) {
	rv := reflect.ValueOf(msg)
	if rv.Kind() == reflect.Ptr {
		return rv.Type().Elem(), msg
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return rv.Type(), p.Interface()
}

// EmitUntargeted routes an untargeted message to every listener
// registered for its type. Satisfies message.Visitor.
func (b *Bus) EmitUntargeted(msg message.Untargeted) error {
	if msg == nil {
		return errors.WrapFatal(errors.ErrNilFunction, "Bus", "EmitUntargeted", "message validation")
	}
	msgType, ptr := addressable(msg)
	return b.emit(message.KindUntargeted, msgType, identity.Invalid, ptr)
}

// EmitTargeted routes a message to listeners registered for the target
// identity, then to any-key observers. Satisfies message.Visitor.
func (b *Bus) EmitTargeted(target identity.ID, msg message.Targeted) error {
	if msg == nil {
		return errors.WrapFatal(errors.ErrNilFunction, "Bus", "EmitTargeted", "message validation")
	}
	if !target.Valid() {
		return errors.WrapInvalid(errors.ErrInvalidIdentity, "Bus", "EmitTargeted", "target validation")
	}
	msgType, ptr := addressable(msg)
	return b.emit(message.KindTargeted, msgType, target, ptr)
}

// EmitBroadcast routes a message from the source identity to the
// source's listeners, then to any-key observers. Satisfies
// message.Visitor.
func (b *Bus) EmitBroadcast(source identity.ID, msg message.Broadcast) error {
	if msg == nil {
		return errors.WrapFatal(errors.ErrNilFunction, "Bus", "EmitBroadcast", "message validation")
	}
	if !source.Valid() {
		return errors.WrapInvalid(errors.ErrInvalidIdentity, "Bus", "EmitBroadcast", "source validation")
	}
	msgType, ptr := addressable(msg)
	return b.emit(message.KindBroadcast, msgType, source, ptr)
}

// Dispatch is the untyped entry point for untargeted messages: it
// classifies msg by its capability tag and forwards through the
// payload's accept method. Targeted and broadcast payloads carry no
// routing key in their contract, so the single-argument form reports
// them as unroutable; use DispatchTo or DispatchFrom.
func (b *Bus) Dispatch(msg any) error {
	kind, err := message.KindOf(msg)
	if err != nil {
		return err
	}
	switch kind {
	case message.KindUntargeted:
		return msg.(message.Untargeted).AcceptUntargeted(b)
	case message.KindTargeted, message.KindBroadcast:
		return errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Bus", "Dispatch", "routing key resolution")
	default:
		return errors.WrapInvalid(errors.ErrUnsupportedShape, "Bus", "Dispatch", "message classification")
	}
}

// DispatchTo is the untyped entry point for targeted messages.
func (b *Bus) DispatchTo(target identity.ID, msg any) error {
	kind, err := message.KindOf(msg)
	if err != nil {
		return err
	}
	if kind != message.KindTargeted {
		return errors.WrapInvalid(errors.ErrKindMismatch, "Bus", "DispatchTo", "message classification")
	}
	return msg.(message.Targeted).AcceptTargeted(b, target)
}

// DispatchFrom is the untyped entry point for broadcast messages.
func (b *Bus) DispatchFrom(source identity.ID, msg any) error {
	kind, err := message.KindOf(msg)
	if err != nil {
		return err
	}
	if kind != message.KindBroadcast {
		return errors.WrapInvalid(errors.ErrKindMismatch, "Bus", "DispatchFrom", "message classification")
	}
	return msg.(message.Broadcast).AcceptBroadcast(b, source)
}
