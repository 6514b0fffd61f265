package metric

import (
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

// Recorder collects dispatch metrics into a private Prometheus
// registry. One Recorder serves one bus instance.
type Recorder struct {
	registry *prometheus.Registry

	EmitsTotal        *prometheus.CounterVec
	VetoesTotal       *prometheus.CounterVec
	HandlersTotal     *prometheus.CounterVec
	RoutingMissTotal  *prometheus.CounterVec
	LiveRegistrations prometheus.Gauge
	DispatchDuration  *prometheus.HistogramVec
}

// RecorderOption configures a Recorder at construction time.
type RecorderOption func(*recorderConfig)

type recorderConfig struct {
	goCollectors bool
}

// WithGoCollectors adds the Go runtime and process collectors to the
// recorder's registry. Off by default so isolated test recorders stay
// quiet.
func WithGoCollectors() RecorderOption {
	return func(c *recorderConfig) { c.goCollectors = true }
}

// NewRecorder creates a recorder with all dispatch metrics registered.
func NewRecorder(opts ...RecorderOption) *Recorder {
	cfg := recorderConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,

		EmitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routekit",
				Subsystem: "dispatch",
				Name:      "emits_total",
				Help:      "Total messages emitted, by addressing mode and payload type",
			},
			[]string{"kind", "type"},
		),

		VetoesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routekit",
				Subsystem: "dispatch",
				Name:      "vetoes_total",
				Help:      "Total emits short-circuited by an interceptor veto",
			},
			[]string{"kind", "type"},
		),

		HandlersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routekit",
				Subsystem: "dispatch",
				Name:      "handler_invocations_total",
				Help:      "Total handler invocations performed by dispatch",
			},
			[]string{"kind", "type"},
		),

		RoutingMissTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routekit",
				Subsystem: "dispatch",
				Name:      "routing_misses_total",
				Help:      "Keyed emits that matched no handler",
			},
			[]string{"kind", "type"},
		),

		LiveRegistrations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "routekit",
				Subsystem: "registry",
				Name:      "live_registrations",
				Help:      "Currently live registrations across all stages",
			},
		),

		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "routekit",
				Subsystem: "dispatch",
				Name:      "duration_seconds",
				Help:      "Wall time of a full dispatch pipeline run",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		r.EmitsTotal,
		r.VetoesTotal,
		r.HandlersTotal,
		r.RoutingMissTotal,
		r.LiveRegistrations,
		r.DispatchDuration,
	)

	if cfg.goCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return r
}

// Registry returns the underlying Prometheus registry for HTTP exposure.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Hooks returns the bus observation hooks backed by this recorder.
func (r *Recorder) Hooks() bus.Hooks {
	return bus.Hooks{
		EmitStarted: func(kind message.Kind, msgType reflect.Type) {
			r.EmitsTotal.WithLabelValues(kind.String(), message.TypeName(msgType)).Inc()
		},
		EmitVetoed: func(kind message.Kind, msgType reflect.Type) {
			r.VetoesTotal.WithLabelValues(kind.String(), message.TypeName(msgType)).Inc()
		},
		EmitCompleted: func(kind message.Kind, msgType reflect.Type, handlers int, elapsed time.Duration) {
			if handlers > 0 {
				r.HandlersTotal.WithLabelValues(kind.String(), message.TypeName(msgType)).Add(float64(handlers))
			}
			r.DispatchDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
		},
		RoutingMiss: func(kind message.Kind, msgType reflect.Type, _ identity.ID) {
			r.RoutingMissTotal.WithLabelValues(kind.String(), message.TypeName(msgType)).Inc()
		},
		Registrations: func(delta int) {
			r.LiveRegistrations.Add(float64(delta))
		},
	}
}
