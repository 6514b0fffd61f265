// Package metric provides Prometheus-based metrics collection for the
// RouteKit dispatch engine.
//
// The Recorder owns a private Prometheus registry holding the engine's
// dispatch metrics (emit counts, vetoes, handler invocations, routing
// misses, live registrations, dispatch duration) and plugs into a bus
// through its observation hooks:
//
//	recorder := metric.NewRecorder()
//	b := bus.New(bus.WithHooks(recorder.Hooks()))
//
// Exposure over HTTP is the host's concern; Recorder.Registry hands the
// underlying registry to promhttp:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//	    recorder.Registry(), promhttp.HandlerOpts{}))
package metric
