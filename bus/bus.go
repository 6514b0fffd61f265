package bus

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
	"github.com/c360/routekit/priority"
)

// DuplicatePolicy selects how the bus treats a second handler
// registration for the same (owner, type, routing key) triple.
type DuplicatePolicy uint8

const (
	// DuplicateReject fails the second registration with
	// ErrDuplicateRegistration. This is the default.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateWarn logs the anomaly and keeps the first registration
	// authoritative. The second registration receives a valid-looking
	// Registration whose Deregister is a no-op; it never removes the
	// accepted first entry.
	DuplicateWarn
)

// String returns the lowercase policy name.
func (p DuplicatePolicy) String() string {
	if p == DuplicateWarn {
		return "warn"
	}
	return "reject"
}

// Hooks are optional observation callbacks the bus invokes around
// dispatch and registration. Nil callbacks are skipped. The metric
// package provides a Prometheus-backed implementation.
type Hooks struct {
	EmitStarted   func(kind message.Kind, msgType reflect.Type)
	EmitVetoed    func(kind message.Kind, msgType reflect.Type)
	EmitCompleted func(kind message.Kind, msgType reflect.Type, handlers int, elapsed time.Duration)
	RoutingMiss   func(kind message.Kind, msgType reflect.Type, key identity.ID)
	Registrations func(delta int)
}

// Stats is a point-in-time snapshot of bus activity counters.
type Stats struct {
	EmitsUntargeted    uint64
	EmitsTargeted      uint64
	EmitsBroadcast     uint64
	EmitsVetoed        uint64
	HandlerInvocations uint64
	RoutingMisses      uint64
	LiveRegistrations  uint64
}

type typeKey struct {
	msgType reflect.Type
	key     int64
}

// registry holds one dispatch stage's listener lists for one addressing
// mode: exact-key entries and any-key entries.
type registry struct {
	exact  map[typeKey]*priority.List[*entry]
	anyKey map[reflect.Type]*priority.List[*entry]
}

func newRegistry() *registry {
	return &registry{
		exact:  make(map[typeKey]*priority.List[*entry]),
		anyKey: make(map[reflect.Type]*priority.List[*entry]),
	}
}

func (r *registry) listFor(d Descriptor) *priority.List[*entry] {
	if d.Kind == message.KindUntargeted || d.observer() {
		l := r.anyKey[d.Type]
		if l == nil {
			l = &priority.List[*entry]{}
			r.anyKey[d.Type] = l
		}
		return l
	}
	tk := typeKey{msgType: d.Type, key: d.Key.Key()}
	l := r.exact[tk]
	if l == nil {
		l = &priority.List[*entry]{}
		r.exact[tk] = l
	}
	return l
}

// entry is one live registration inside a priority list.
type entry struct {
	handle  Handle
	desc    Descriptor
	table   *HandlerTable
	list    *priority.List[*entry]
	seq     uint64
	removed bool
}

// call delivers a payload to the entry, routing owned handler entries
// through their owner's handler table so soft deactivation applies.
func (e *entry) call(key identity.ID, ptr any) bool {
	if e.table != nil {
		return e.table.deliver(e, key, ptr)
	}
	e.desc.invoke(key, ptr)
	return true
}

type dedupeKey struct {
	owner   int64
	msgType reflect.Type
	kind    message.Kind
	key     int64
}

// Bus is the central routing engine. Construct isolated instances with
// New; a process-wide convenience instance is available from Default.
//
// All operations are synchronous: an Emit* call returns only after
// every matched interceptor, handler, and post-processor has run.
type Bus struct {
	mu sync.RWMutex

	logger     *slog.Logger
	sink       DiagnosticsSink
	hooks      Hooks
	duplicates DuplicatePolicy

	// handlers and posts are indexed by message.Kind.
	handlers     [4]*registry
	posts        [4]*registry
	interceptors [4]map[reflect.Type]*priority.List[*entry]
	globals      priority.List[*entry]

	dedupe map[dedupeKey]Handle
	tables map[int64]*HandlerTable

	emitsUntargeted    atomic.Uint64
	emitsTargeted      atomic.Uint64
	emitsBroadcast     atomic.Uint64
	emitsVetoed        atomic.Uint64
	handlerInvocations atomic.Uint64
	routingMisses      atomic.Uint64
	liveRegistrations  atomic.Uint64
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithLogger sets the structured logger used for recoverable anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDiagnostics installs a sink receiving a structured record for
// every registration and deregistration.
func WithDiagnostics(sink DiagnosticsSink) Option {
	return func(b *Bus) { b.sink = sink }
}

// WithDuplicatePolicy selects the duplicate-registration policy.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(b *Bus) { b.duplicates = policy }
}

// WithHooks installs dispatch observation hooks.
func WithHooks(hooks Hooks) Option {
	return func(b *Bus) { b.hooks = hooks }
}

// New creates an isolated bus instance.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger:     slog.Default(),
		duplicates: DuplicateReject,
		dedupe:     make(map[dedupeKey]Handle),
		tables:     make(map[int64]*HandlerTable),
	}
	for k := message.KindUntargeted; k <= message.KindBroadcast; k++ {
		b.handlers[k] = newRegistry()
		b.posts[k] = newRegistry()
		b.interceptors[k] = make(map[reflect.Type]*priority.List[*entry])
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	defaultBus  *Bus
	defaultOnce sync.Once
)

// Default returns the process-wide convenience bus. It is an ordinary
// Bus value; code that wants isolation (tests, scoped subsystems)
// constructs its own with New and passes it explicitly.
func Default() *Bus {
	defaultOnce.Do(func() {
		defaultBus = New()
	})
	return defaultBus
}

// Registration is the result of applying a Descriptor: a fresh Handle
// identifying the live registration and its Deregister action.
// Deregister is idempotent; the second and later calls are no-ops.
type Registration struct {
	Handle     Handle
	Deregister func()
}

// Register applies a registration descriptor to the bus and returns the
// live Registration. It fails fast on nil callbacks, unclassifiable
// descriptors, and (under the reject policy) duplicate owned handler
// registrations.
func (b *Bus) Register(d Descriptor) (Registration, error) {
	if err := b.validate(d); err != nil {
		return Registration{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Owned handler registrations are unique per (owner, type, key).
	var dk dedupeKey
	dedupe := d.Role == RoleHandler && d.Owner.Valid()
	if dedupe {
		dk = dedupeKey{owner: d.Owner.Key(), msgType: d.Type, kind: d.Kind, key: d.Key.Key()}
		if first, exists := b.dedupe[dk]; exists {
			if b.duplicates == DuplicateReject {
				return Registration{}, errors.WrapInvalid(
					errors.ErrDuplicateRegistration, "Bus", "Register", "duplicate registration check")
			}
			b.logger.Warn("duplicate registration ignored; first registration remains authoritative",
				"owner", d.Owner.String(),
				"type", message.TypeName(d.Type),
				"key", d.Key.String(),
				"first_handle", first.String())
			b.record(d, OpRegister)
			return Registration{Handle: NewHandle(), Deregister: func() {}}, nil
		}
	}

	e := &entry{handle: NewHandle(), desc: d}

	switch d.Role {
	case RoleGlobalObserver:
		e.list = &b.globals
	case RoleInterceptor:
		l := b.interceptors[d.Kind][d.Type]
		if l == nil {
			l = &priority.List[*entry]{}
			b.interceptors[d.Kind][d.Type] = l
		}
		e.list = l
	case RolePostProcessor:
		e.list = b.posts[d.Kind].listFor(d)
	default:
		e.list = b.handlers[d.Kind].listFor(d)
	}

	if d.Role == RoleHandler && d.Owner.Valid() {
		e.table = b.tableLocked(d.Owner)
		if err := e.table.attach(e); err != nil {
			return Registration{}, err
		}
	}

	e.seq = e.list.Insert(d.Priority, e)
	if dedupe {
		b.dedupe[dk] = e.handle
	}

	b.liveRegistrations.Add(1)
	if b.hooks.Registrations != nil {
		b.hooks.Registrations(1)
	}
	b.record(d, OpRegister)

	return Registration{Handle: e.handle, Deregister: func() { b.deregister(e) }}, nil
}

func (b *Bus) validate(d Descriptor) error {
	switch d.Role {
	case RoleGlobalObserver:
		if d.global.empty() {
			return errors.WrapFatal(errors.ErrNilHandler, "Bus", "Register", "global sink validation")
		}
		return nil
	case RoleInterceptor:
		if d.intercept == nil {
			return errors.WrapFatal(errors.ErrNilHandler, "Bus", "Register", "interceptor validation")
		}
	case RoleHandler, RolePostProcessor:
		if d.invoke == nil {
			return errors.WrapFatal(errors.ErrNilHandler, "Bus", "Register", "handler validation")
		}
	default:
		return errors.WrapInvalid(errors.ErrKindMismatch, "Bus", "Register", "role validation")
	}

	if d.Kind < message.KindUntargeted || d.Kind > message.KindBroadcast {
		return errors.WrapInvalid(errors.ErrKindMismatch, "Bus", "Register", "kind validation")
	}
	if d.Type == nil {
		return errors.WrapInvalid(errors.ErrUnsupportedShape, "Bus", "Register", "type validation")
	}
	return nil
}

// deregister removes a live entry. Idempotent: repeated calls for the
// same entry are no-ops.
func (b *Bus) deregister(e *entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.removed {
		return
	}
	e.removed = true
	e.list.Remove(e.seq)

	if e.desc.Role == RoleHandler && e.desc.Owner.Valid() {
		dk := dedupeKey{
			owner:   e.desc.Owner.Key(),
			msgType: e.desc.Type,
			kind:    e.desc.Kind,
			key:     e.desc.Key.Key(),
		}
		if b.dedupe[dk] == e.handle {
			delete(b.dedupe, dk)
		}
	}
	if e.table != nil {
		e.table.detach(e)
	}

	b.liveRegistrations.Add(^uint64(0))
	if b.hooks.Registrations != nil {
		b.hooks.Registrations(-1)
	}
	b.record(e.desc, OpDeregister)
}

// tableLocked returns the handler table for an owner, creating it on
// first use. Callers hold b.mu.
func (b *Bus) tableLocked(owner identity.ID) *HandlerTable {
	t := b.tables[owner.Key()]
	if t == nil || t.tornDown() {
		t = newHandlerTable(b, owner)
		b.tables[owner.Key()] = t
	}
	return t
}

// HandlerTableFor returns the per-owner handler table, creating it if
// the owner has none yet. Returns an error for the invalid identity.
func (b *Bus) HandlerTableFor(owner identity.ID) (*HandlerTable, error) {
	if !owner.Valid() {
		return nil, errors.WrapInvalid(errors.ErrInvalidIdentity, "Bus", "HandlerTableFor", "owner validation")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tableLocked(owner), nil
}

// Stats returns a snapshot of the bus activity counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EmitsUntargeted:    b.emitsUntargeted.Load(),
		EmitsTargeted:      b.emitsTargeted.Load(),
		EmitsBroadcast:     b.emitsBroadcast.Load(),
		EmitsVetoed:        b.emitsVetoed.Load(),
		HandlerInvocations: b.handlerInvocations.Load(),
		RoutingMisses:      b.routingMisses.Load(),
		LiveRegistrations:  b.liveRegistrations.Load(),
	}
}

// record delivers a diagnostics record if a sink is installed.
// Callers hold b.mu.
func (b *Bus) record(d Descriptor, op OpKind) {
	if b.sink == nil {
		return
	}
	b.sink(DiagnosticRecord{
		Owner:    d.Owner,
		TypeName: message.TypeName(d.Type),
		Op:       op,
		Method:   methodOf(d),
	})
}
