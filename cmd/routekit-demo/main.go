// Command routekit-demo wires a fully configured bus and routes a short
// scripted message sequence through it: untargeted readings, targeted
// commands, and broadcast telemetry, with an interceptor, a rate
// limiter, and optional Prometheus exposure.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/config"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
	"github.com/c360/routekit/middleware"
	"github.com/c360/routekit/registration"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// SensorReading is an untargeted demo payload.
type SensorReading struct {
	Sensor string
	Value  float64
}

// AcceptUntargeted implements the untargeted capability tag.
func (r SensorReading) AcceptUntargeted(v message.Visitor) error {
	return v.EmitUntargeted(r)
}

// Command is a targeted demo payload addressed to one actuator.
type Command struct {
	Name string
}

// AcceptTargeted implements the targeted capability tag.
func (c Command) AcceptTargeted(v message.Visitor, target identity.ID) error {
	return v.EmitTargeted(target, c)
}

// Telemetry is a broadcast demo payload attributed to its producer.
type Telemetry struct {
	Uptime time.Duration
}

// AcceptBroadcast implements the broadcast capability tag.
func (t Telemetry) AcceptBroadcast(v message.Visitor, source identity.ID) error {
	return v.EmitBroadcast(source, t)
}

func main() {
	cli := parseFlags()
	if cli.ShowVersion {
		fmt.Println("routekit-demo", Version)
		return
	}

	logger := setupLogger(cli.LogLevel, cli.LogFormat)

	cfg := config.Default()
	if cli.ConfigPath != "" {
		loaded, err := config.Load(cli.ConfigPath)
		if err != nil {
			logger.Error("configuration load failed", "path", cli.ConfigPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if cli.MetricsPort > 0 {
		cfg.Metrics = true
	}

	b, recorder := cfg.Build()

	if recorder != nil && cli.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{}))
		go func() {
			addr := fmt.Sprintf(":%d", cli.MetricsPort)
			logger.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	actuator := identity.New(42)
	producer := identity.New(7)

	token, err := registration.NewToken(b, actuator)
	if err != nil {
		logger.Error("token creation failed", "error", err)
		os.Exit(1)
	}

	if _, err := registration.StageUntargeted[SensorReading](token, func(r *SensorReading) {
		logger.Info("reading", "sensor", r.Sensor, "value", r.Value)
	}, 0); err != nil {
		logger.Error("stage failed", "error", err)
		os.Exit(1)
	}
	if _, err := registration.StageTargeted[Command](token, actuator, func(_ identity.ID, c *Command) {
		logger.Info("command accepted", "name", c.Name)
	}, 0); err != nil {
		logger.Error("stage failed", "error", err)
		os.Exit(1)
	}
	if _, err := registration.StageBroadcastObserver[Telemetry](token, func(src identity.ID, t *Telemetry) {
		logger.Info("telemetry", "source", src.String(), "uptime", t.Uptime)
	}, 0); err != nil {
		logger.Error("stage failed", "error", err)
		os.Exit(1)
	}

	// Negative readings never reach a handler; readings are also
	// limited to 5/s with a burst of 2.
	reject, err := b.Register(middleware.Reject[SensorReading](func(r SensorReading) bool {
		return r.Value < 0
	}, -10))
	if err != nil {
		logger.Error("interceptor registration failed", "error", err)
		os.Exit(1)
	}
	defer reject.Deregister()

	limit, err := b.Register(middleware.RateLimit[SensorReading](rate.Limit(5), 2, -5))
	if err != nil {
		logger.Error("interceptor registration failed", "error", err)
		os.Exit(1)
	}
	defer limit.Deregister()

	if err := token.Enable(); err != nil {
		logger.Error("token enable failed", "error", err)
		os.Exit(1)
	}
	defer token.UnregisterAll()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := bus.EmitUntargeted(b, SensorReading{Sensor: "temp", Value: float64(20 + i)}); err != nil {
			logger.Error("emit failed", "error", err)
		}
	}
	// Vetoed by the reject interceptor.
	_ = bus.EmitUntargeted(b, SensorReading{Sensor: "temp", Value: -1})

	_ = bus.EmitTargeted(b, actuator, Command{Name: "open-valve"})
	// Routing miss: nothing listens at identity 99.
	_ = bus.EmitTargeted(b, identity.New(99), Command{Name: "close-valve"})

	_ = bus.EmitBroadcast(b, producer, Telemetry{Uptime: time.Since(start)})

	stats := b.Stats()
	logger.Info("dispatch complete",
		"emits_untargeted", stats.EmitsUntargeted,
		"emits_targeted", stats.EmitsTargeted,
		"emits_broadcast", stats.EmitsBroadcast,
		"vetoed", stats.EmitsVetoed,
		"handler_invocations", stats.HandlerInvocations,
		"routing_misses", stats.RoutingMisses,
	)
}
