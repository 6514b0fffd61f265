// Package registration provides the per-owner registration token: a
// staging area that batches registration descriptors and drives them
// through repeatable, idempotent enable/disable cycles against a bus.
//
// A token accumulates staged descriptors at setup time. Enable applies
// every staged descriptor to the bus and records the resulting
// deregistration actions; Disable runs those actions without discarding
// the staged definitions, so a later Enable reproduces the same
// effective registration set exactly. UnregisterAll clears everything
// and returns the token to a pristine, reusable state.
//
// Staged descriptors are plain data (bus.Descriptor records), so the
// enable/disable cycle is a data transformation rather than replaying
// captured closures.
package registration
