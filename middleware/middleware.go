// Package middleware provides stock interceptors and post-processors
// for the RouteKit dispatch engine: rate limiting, predicate filtering,
// in-place transforms, and structured emit logging.
package middleware

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

// RateLimit builds an untargeted interceptor descriptor that vetoes
// messages of type T arriving faster than the given sustained rate.
// Dispatch is synchronous, so the limiter never waits; over-budget
// messages are dropped outright.
func RateLimit[T message.Untargeted](limit rate.Limit, burst, priority int) bus.Descriptor {
	limiter := rate.NewLimiter(limit, burst)
	return bus.NewUntargetedInterceptor[T](func(*T) bool {
		return limiter.Allow()
	}, priority)
}

// RateLimitTargeted is the targeted variant of RateLimit. The limiter
// budget is shared across all destination identities.
func RateLimitTargeted[T message.Targeted](limit rate.Limit, burst, priority int) bus.Descriptor {
	limiter := rate.NewLimiter(limit, burst)
	return bus.NewTargetedInterceptor[T](func(identity.ID, *T) bool {
		return limiter.Allow()
	}, priority)
}

// RateLimitBroadcast is the broadcast variant of RateLimit. The limiter
// budget is shared across all origin identities.
func RateLimitBroadcast[T message.Broadcast](limit rate.Limit, burst, priority int) bus.Descriptor {
	limiter := rate.NewLimiter(limit, burst)
	return bus.NewBroadcastInterceptor[T](func(identity.ID, *T) bool {
		return limiter.Allow()
	}, priority)
}

// Reject builds an untargeted interceptor that vetoes messages the
// predicate reports true for.
func Reject[T message.Untargeted](pred func(T) bool, priority int) bus.Descriptor {
	return bus.NewUntargetedInterceptor[T](func(p *T) bool {
		return pred == nil || !pred(*p)
	}, priority)
}

// RejectTargeted is the targeted variant of Reject.
func RejectTargeted[T message.Targeted](pred func(identity.ID, T) bool, priority int) bus.Descriptor {
	return bus.NewTargetedInterceptor[T](func(key identity.ID, p *T) bool {
		return pred == nil || !pred(key, *p)
	}, priority)
}

// RejectBroadcast is the broadcast variant of Reject.
func RejectBroadcast[T message.Broadcast](pred func(identity.ID, T) bool, priority int) bus.Descriptor {
	return bus.NewBroadcastInterceptor[T](func(key identity.ID, p *T) bool {
		return pred == nil || !pred(key, *p)
	}, priority)
}

// Mutate builds an untargeted interceptor that rewrites the payload in
// place before any handler sees it. It never vetoes.
func Mutate[T message.Untargeted](fn func(*T), priority int) bus.Descriptor {
	return bus.NewUntargetedInterceptor[T](func(p *T) bool {
		if fn != nil {
			fn(p)
		}
		return true
	}, priority)
}

// LogEmits builds an untargeted post-processor that records every
// delivered message of type T on a structured logger at debug level.
func LogEmits[T message.Untargeted](logger *slog.Logger, priority int) bus.Descriptor {
	if logger == nil {
		logger = slog.Default()
	}
	name := message.TypeName(message.TypeOf[T]())
	return bus.NewUntargetedPostProcessor[T](func(p *T) {
		logger.Debug("message delivered", "type", name, "payload", *p)
	}, priority)
}

// LogEmitsTargeted is the targeted variant of LogEmits; it observes
// every destination identity.
func LogEmitsTargeted[T message.Targeted](logger *slog.Logger, priority int) bus.Descriptor {
	if logger == nil {
		logger = slog.Default()
	}
	name := message.TypeName(message.TypeOf[T]())
	return bus.NewTargetedPostProcessor[T](identity.Invalid, func(key identity.ID, p *T) {
		logger.Debug("message delivered", "type", name, "target", key.String(), "payload", *p)
	}, priority)
}
