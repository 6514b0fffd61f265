// Package errors provides standardized error handling patterns for RouteKit.
//
// # Overview
//
// The errors package implements a three-class error classification system
// matched to the routing engine's propagation policy:
//
//   - Recoverable: anomalies dispatch logs and continues past, such as a
//     duplicate registration under the warn policy or deregistering an
//     already-removed entry. These never abort an in-flight emit.
//   - Invalid: bad input or configuration, such as a message with no
//     capability tag, an invalid routing identity, or a malformed config
//     document. Surfaced to the caller before any dispatch side effects.
//   - Fatal: caller bugs, such as a nil handler or nil bus reference.
//     Surfaced immediately; never swallowed.
//
// # Usage
//
// Wrap errors with component context as they cross package boundaries:
//
//	if handler == nil {
//	    return errors.WrapFatal(errors.ErrNilHandler,
//	        "Bus", "Register", "handler validation")
//	}
//
// Callers branch on classification or on the sentinel itself:
//
//	if errors.Is(err, errors.ErrDuplicateRegistration) { ... }
//	if errors.IsFatal(err) { panic(err) }
package errors
