package registration

import (
	stderrors "errors"
	"sync"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

// Token stages registration descriptors for one owner and materializes
// them against the bus on Enable. The token starts disabled; staged
// definitions are invisible to the bus until the first Enable.
//
// Enable and Disable are idempotent and may alternate indefinitely
// without leaking or duplicating bus-side registrations.
type Token struct {
	mu      sync.Mutex
	bus     *bus.Bus
	owner   identity.ID
	enabled bool

	order  []bus.Handle
	staged map[bus.Handle]bus.Descriptor
	active map[bus.Handle]func()
}

// NewToken creates a token bound to a bus. Registrations staged on the
// token are attributed to the given owner; pass the invalid identity
// for anonymous registrations (these skip duplicate detection).
func NewToken(b *bus.Bus, owner identity.ID) (*Token, error) {
	if b == nil {
		return nil, errors.WrapFatal(errors.ErrNilBus, "Token", "NewToken", "bus validation")
	}
	return &Token{
		bus:    b,
		owner:  owner,
		staged: make(map[bus.Handle]bus.Descriptor),
		active: make(map[bus.Handle]func()),
	}, nil
}

// Owner returns the identity staged registrations are attributed to.
func (t *Token) Owner() identity.ID {
	return t.owner
}

// Enabled reports whether staged registrations are currently live.
func (t *Token) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Len returns the number of staged registrations.
func (t *Token) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.staged)
}

// Stage records a registration descriptor. If the token is already
// enabled the descriptor is activated against the bus immediately.
// The returned handle correlates the staged definition across its
// activations; it is distinct from the bus-side handles minted per
// activation.
func (t *Token) Stage(d bus.Descriptor) (bus.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !d.Owner.Valid() {
		d = d.WithOwner(t.owner)
	}

	h := bus.NewHandle()
	t.staged[h] = d
	t.order = append(t.order, h)

	if t.enabled {
		reg, err := t.bus.Register(d)
		if err != nil {
			delete(t.staged, h)
			t.order = t.order[:len(t.order)-1]
			return bus.Handle{}, errors.Wrap(err, "Token", "Stage", "immediate activation")
		}
		t.active[h] = reg.Deregister
	}
	return h, nil
}

// Enable activates every staged registration against the bus and
// records the deactivation actions. Idempotent: enabling an enabled
// token is a no-op. Registrations that fail to activate are reported
// in the joined error; the rest still activate.
func (t *Token) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enabled {
		return nil
	}

	var errs []error
	for _, h := range t.order {
		d, ok := t.staged[h]
		if !ok {
			continue
		}
		reg, err := t.bus.Register(d)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "Token", "Enable", "staged activation"))
			continue
		}
		t.active[h] = reg.Deregister
	}
	t.enabled = true
	return stderrors.Join(errs...)
}

// Disable deactivates every live registration while retaining the
// staged definitions, so a subsequent Enable reproduces them exactly.
// Idempotent: disabling a disabled token is a no-op.
func (t *Token) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return
	}
	t.deactivateLocked()
	t.enabled = false
}

// Remove deactivates the handle's registration if it is live, then
// discards its staged definition. Returns false if the handle is not
// staged on this token.
func (t *Token) Remove(h bus.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.staged[h]; !ok {
		return false
	}
	if deregister, ok := t.active[h]; ok {
		deregister()
		delete(t.active, h)
	}
	delete(t.staged, h)
	for i, other := range t.order {
		if other == h {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// UnregisterAll deactivates everything and discards all staged
// definitions, returning the token to a pristine disabled state. The
// token remains usable for new Stage calls.
func (t *Token) UnregisterAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.deactivateLocked()
	t.enabled = false
	t.order = nil
	t.staged = make(map[bus.Handle]bus.Descriptor)
}

// deactivateLocked runs every recorded deactivation action in staged
// order. Callers hold t.mu.
func (t *Token) deactivateLocked() {
	for _, h := range t.order {
		if deregister, ok := t.active[h]; ok {
			deregister()
		}
	}
	t.active = make(map[bus.Handle]func())
}

// The generic helpers below mirror the bus registration surface for
// staging: each builds the matching descriptor and stages it.

// StageUntargeted stages an untargeted handler for type T.
func StageUntargeted[T message.Untargeted](t *Token, fn func(*T), priority int) (bus.Handle, error) {
	return stage(t, bus.NewUntargetedHandler[T](fn, priority))
}

// StageTargeted stages an exact-key targeted handler for type T.
func StageTargeted[T message.Targeted](t *Token, target identity.ID, fn func(identity.ID, *T), priority int) (bus.Handle, error) {
	if !target.Valid() {
		return bus.Handle{}, errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Token", "StageTargeted", "target validation")
	}
	return stage(t, bus.NewTargetedHandler[T](target, fn, priority))
}

// StageTargetedObserver stages an any-key targeted observer for type T.
func StageTargetedObserver[T message.Targeted](t *Token, fn func(identity.ID, *T), priority int) (bus.Handle, error) {
	return stage(t, bus.NewTargetedObserver[T](fn, priority))
}

// StageBroadcast stages an exact-key broadcast handler for type T.
func StageBroadcast[T message.Broadcast](t *Token, source identity.ID, fn func(identity.ID, *T), priority int) (bus.Handle, error) {
	if !source.Valid() {
		return bus.Handle{}, errors.WrapInvalid(
			errors.ErrInvalidIdentity, "Token", "StageBroadcast", "source validation")
	}
	return stage(t, bus.NewBroadcastHandler[T](source, fn, priority))
}

// StageBroadcastObserver stages an any-key broadcast observer for type T.
func StageBroadcastObserver[T message.Broadcast](t *Token, fn func(identity.ID, *T), priority int) (bus.Handle, error) {
	return stage(t, bus.NewBroadcastObserver[T](fn, priority))
}

// StageUntargetedInterceptor stages a pre-dispatch hook for type T.
func StageUntargetedInterceptor[T message.Untargeted](t *Token, fn func(*T) bool, priority int) (bus.Handle, error) {
	return stage(t, bus.NewUntargetedInterceptor[T](fn, priority))
}

// StageTargetedInterceptor stages a pre-dispatch hook for type T.
func StageTargetedInterceptor[T message.Targeted](t *Token, fn func(identity.ID, *T) bool, priority int) (bus.Handle, error) {
	return stage(t, bus.NewTargetedInterceptor[T](fn, priority))
}

// StageBroadcastInterceptor stages a pre-dispatch hook for type T.
func StageBroadcastInterceptor[T message.Broadcast](t *Token, fn func(identity.ID, *T) bool, priority int) (bus.Handle, error) {
	return stage(t, bus.NewBroadcastInterceptor[T](fn, priority))
}

// StageUntargetedPostProcessor stages a post-dispatch observer for type T.
func StageUntargetedPostProcessor[T message.Untargeted](t *Token, fn func(*T), priority int) (bus.Handle, error) {
	return stage(t, bus.NewUntargetedPostProcessor[T](fn, priority))
}

// StageTargetedPostProcessor stages a post-dispatch observer for type T.
// The invalid identity observes every destination.
func StageTargetedPostProcessor[T message.Targeted](t *Token, target identity.ID, fn func(identity.ID, *T), priority int) (bus.Handle, error) {
	return stage(t, bus.NewTargetedPostProcessor[T](target, fn, priority))
}

// StageBroadcastPostProcessor stages a post-dispatch observer for type T.
// The invalid identity observes every origin.
func StageBroadcastPostProcessor[T message.Broadcast](t *Token, source identity.ID, fn func(identity.ID, *T), priority int) (bus.Handle, error) {
	return stage(t, bus.NewBroadcastPostProcessor[T](source, fn, priority))
}

// StageGlobalObserver stages an all-kind global sink.
func StageGlobalObserver(t *Token, sink bus.GlobalSink, priority int) (bus.Handle, error) {
	return stage(t, bus.NewGlobalObserver(sink, priority))
}

func stage(t *Token, d bus.Descriptor) (bus.Handle, error) {
	if t == nil {
		return bus.Handle{}, errors.WrapFatal(errors.ErrNilToken, "Token", "Stage", "token validation")
	}
	return t.Stage(d)
}
