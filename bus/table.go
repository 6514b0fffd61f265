package bus

import (
	"sync"
	"sync/atomic"

	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
)

// HandlerTable is the per-owner storage-and-invoke unit. It holds the
// owner's live handler entries and is the surface the bus delivers
// through during dispatch, so a whole owner can be soft-deactivated
// (SetActive) or torn down (Teardown) without touching individual
// registrations. Ordering across owners is the bus's concern, not the
// table's.
type HandlerTable struct {
	bus    *Bus
	owner  identity.ID
	active atomic.Bool

	mu      sync.Mutex
	entries map[Handle]*entry
	torn    bool
}

func newHandlerTable(b *Bus, owner identity.ID) *HandlerTable {
	t := &HandlerTable{
		bus:     b,
		owner:   owner,
		entries: make(map[Handle]*entry),
	}
	t.active.Store(true)
	return t
}

// Owner returns the identity this table belongs to.
func (t *HandlerTable) Owner() identity.ID {
	return t.owner
}

// Active reports whether the table currently delivers messages.
func (t *HandlerTable) Active() bool {
	return t.active.Load()
}

// SetActive marks the table active or inactive. An inactive table keeps
// its registrations on the bus but skips every delivery, matching an
// owner that is disabled rather than destroyed.
func (t *HandlerTable) SetActive(active bool) {
	t.active.Store(active)
}

// Len returns the number of live entries the table holds.
func (t *HandlerTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// HandleUntargetedMessage invokes the table's handler identified by h
// with an untargeted payload. Called by the bus during dispatch.
func (t *HandlerTable) HandleUntargetedMessage(h Handle, msg any) bool {
	return t.invoke(h, identity.Invalid, msg)
}

// HandleTargetedMessage invokes the table's handler identified by h
// with a targeted payload and its destination identity.
func (t *HandlerTable) HandleTargetedMessage(h Handle, target identity.ID, msg any) bool {
	return t.invoke(h, target, msg)
}

// HandleBroadcastMessage invokes the table's handler identified by h
// with a broadcast payload and its origin identity.
func (t *HandlerTable) HandleBroadcastMessage(h Handle, source identity.ID, msg any) bool {
	return t.invoke(h, source, msg)
}

func (t *HandlerTable) invoke(h Handle, key identity.ID, msg any) bool {
	if !t.active.Load() {
		return false
	}
	t.mu.Lock()
	e := t.entries[h]
	t.mu.Unlock()
	if e == nil {
		return false
	}
	e.desc.invoke(key, msg)
	return true
}

// deliver is the dispatch-path entry: it resolves the entry's handle
// through the table so soft deactivation and teardown apply.
func (t *HandlerTable) deliver(e *entry, key identity.ID, ptr any) bool {
	return t.invoke(e.handle, key, ptr)
}

// Teardown deregisters every entry the table holds and marks it torn
// down. Further attachment attempts fail; the owner is expected to be
// going away.
func (t *HandlerTable) Teardown() {
	t.mu.Lock()
	if t.torn {
		t.mu.Unlock()
		return
	}
	t.torn = true
	entries := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		entries = append(entries, e)
	}
	t.mu.Unlock()

	for _, e := range entries {
		t.bus.deregister(e)
	}
	t.active.Store(false)
}

// attach records a new owned entry. Callers hold the bus lock, so the
// table lock here never contends with a dispatch in progress.
func (t *HandlerTable) attach(e *entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.torn {
		return errors.WrapInvalid(errors.ErrTornDown, "HandlerTable", "attach", "table state validation")
	}
	t.entries[e.handle] = e
	return nil
}

func (t *HandlerTable) tornDown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.torn
}

func (t *HandlerTable) detach(e *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, e.handle)
}
