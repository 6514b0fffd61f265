package bus

import (
	"log/slog"

	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

// OpKind identifies the registry operation a diagnostics record reports.
type OpKind uint8

const (
	// OpRegister reports a registration being applied.
	OpRegister OpKind = iota
	// OpDeregister reports a registration being removed.
	OpDeregister
)

// String returns the lowercase operation name.
func (o OpKind) String() string {
	if o == OpDeregister {
		return "deregister"
	}
	return "register"
}

// MethodKind identifies which registration surface a diagnostics record
// refers to.
type MethodKind uint8

const (
	// MethodUntargeted is an untargeted handler registration.
	MethodUntargeted MethodKind = iota
	// MethodTargeted is an exact-key targeted handler registration.
	MethodTargeted
	// MethodBroadcast is an exact-key broadcast handler registration.
	MethodBroadcast
	// MethodObserver is an any-key targeted or broadcast registration.
	MethodObserver
	// MethodGlobalObserver is an all-kind global sink registration.
	MethodGlobalObserver
	// MethodInterceptor is a pre-dispatch interceptor registration.
	MethodInterceptor
	// MethodPostProcessor is a post-dispatch observer registration.
	MethodPostProcessor
)

// String returns the method name used in diagnostics records.
func (m MethodKind) String() string {
	switch m {
	case MethodUntargeted:
		return "untargeted"
	case MethodTargeted:
		return "targeted"
	case MethodBroadcast:
		return "broadcast"
	case MethodObserver:
		return "observer"
	case MethodGlobalObserver:
		return "global-observer"
	case MethodInterceptor:
		return "interceptor"
	case MethodPostProcessor:
		return "post-processor"
	default:
		return "unknown"
	}
}

func methodOf(d Descriptor) MethodKind {
	switch d.Role {
	case RoleGlobalObserver:
		return MethodGlobalObserver
	case RoleInterceptor:
		return MethodInterceptor
	case RolePostProcessor:
		return MethodPostProcessor
	}
	if d.observer() {
		return MethodObserver
	}
	switch d.Kind {
	case message.KindTargeted:
		return MethodTargeted
	case message.KindBroadcast:
		return MethodBroadcast
	default:
		return MethodUntargeted
	}
}

// DiagnosticRecord is the structured registration-lifecycle record the
// bus emits to an installed sink. Format and persistence are the sink's
// concern.
type DiagnosticRecord struct {
	Owner    identity.ID
	TypeName string
	Op       OpKind
	Method   MethodKind
}

// DiagnosticsSink receives registration-lifecycle records. Sinks run
// synchronously inside registry mutation and must not call back into
// the bus.
type DiagnosticsSink func(DiagnosticRecord)

// SlogSink returns a DiagnosticsSink writing records to a structured
// logger at debug level.
func SlogSink(logger *slog.Logger) DiagnosticsSink {
	if logger == nil {
		logger = slog.Default()
	}
	return func(r DiagnosticRecord) {
		logger.Debug("registration lifecycle",
			"op", r.Op.String(),
			"method", r.Method.String(),
			"type", r.TypeName,
			"owner", r.Owner.String(),
		)
	}
}
