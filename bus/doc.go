// Package bus implements the RouteKit dispatch engine: a synchronous,
// in-process message bus routing three addressing modes to registered
// listeners with deterministic priority ordering.
//
// # Addressing Modes
//
// Untargeted messages reach every listener registered for their type.
// Targeted messages reach listeners registered for a specific destination
// identity, then any-key observers. Broadcast messages reach listeners
// registered for a specific origin identity, then any-key observers.
//
// # Dispatch Pipeline
//
// Every emit runs the same pipeline:
//
//  1. Interceptors for the message type, in priority order. An
//     interceptor may mutate the payload in place or veto; the first
//     veto short-circuits the entire emit.
//  2. Global observers, in priority order.
//  3. Handlers: the exact-key pass, then the any-key observer pass,
//     each in priority order.
//  4. Post-processors, in the same two-pass shape. Post-processors
//     observe but cannot veto.
//
// The matching listener sets are snapshotted before iteration, so
// re-entrant registration or deregistration from inside a handler never
// corrupts the in-flight pass.
//
// # Registration
//
// Registrations are described by Descriptor records built with the
// generic constructors (NewUntargetedHandler, NewTargetedInterceptor,
// ...) and applied with Bus.Register, which returns a Registration
// carrying a fresh Handle and an idempotent Deregister action. The
// generic package-level functions (RegisterUntargeted, EmitTargeted,
// ...) are thin sugar over the same path.
//
// # Concurrency
//
// The engine assumes a single logical dispatch thread. Registry
// mutation is guarded by one RWMutex and dispatch iterates snapshots
// taken under the read lock, which is the extension point a
// multi-threaded host builds on.
package bus
