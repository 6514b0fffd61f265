// Package routekit provides an in-process, type-safe publish/subscribe
// message-routing engine for decoupling producers and consumers of
// typed events within a single runtime process.
//
// # Philosophy
//
// RouteKit is a dispatch engine, not a transport: delivery is
// synchronous, in-order, and entirely in-process. The engine routes
// three addressing modes with deterministic priority ordering, a
// cancellable pre-dispatch interceptor pipeline, a post-dispatch
// observer pipeline, and a lifecycle-managed registration mechanism
// that survives repeated enable/disable cycles without leaking or
// duplicating subscriptions.
//
// RouteKit MUST NOT contain:
//   - Cross-process or cross-machine transport
//   - Message durability or persistence
//   - Back-pressure, queuing, or asynchronous delivery
//
// Hosts that need those concerns layer them on top of the four core
// operations: register, deregister, emit, and enable/disable a
// registration set.
//
// # Architecture
//
// The engine is built from five components, leaf first:
//
//   - identity: opaque, value-comparable routing identities used as
//     targeting and source keys
//   - message: the payload contract; every message type carries exactly
//     one capability tag (untargeted, targeted, broadcast)
//   - priority: the ordered registry giving dispatch its deterministic
//     priority-then-insertion ordering
//   - bus: the central registry and dispatch algorithm, including
//     interceptors, post-processors, global observers, and per-owner
//     handler tables
//   - registration: per-owner tokens staging registrations for
//     idempotent enable/disable cycles
//
// Supporting packages follow the platform's ambient conventions:
// errors (classification and wrapping), metric (Prometheus dispatch
// metrics), config (validated YAML bus construction), and middleware
// (stock interceptors and post-processors).
//
// # Quick Start
//
//	type Ping struct{ Value int }
//
//	func (p Ping) AcceptUntargeted(v message.Visitor) error {
//	    return v.EmitUntargeted(p)
//	}
//
//	b := bus.New()
//	reg, _ := bus.RegisterUntargeted[Ping](b, func(p *Ping) {
//	    fmt.Println("ping", p.Value)
//	}, 0)
//	defer reg.Deregister()
//
//	bus.EmitUntargeted(b, Ping{Value: 7})
package routekit
