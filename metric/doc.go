// Package metric provides a Prometheus-based metrics registry for pipeline
// components.
//
// The package offers a centralized MetricsRegistry managing both the core
// platform metrics (stream chunk delivery, rule evaluation, cast latency,
// worker lifecycle) and service-specific metrics registered by individual
// components through the MetricsRegistrar interface.
//
// # Architecture
//
// The package follows a two-layer design:
//
//  1. Core Metrics: platform-level metrics automatically registered (Metrics type)
//  2. Service Registry: extensible registration for component-specific metrics
//     (MetricsRegistrar interface)
//
// This separates infrastructure concerns (core metrics) from the individual
// stream.Sink, rule.Pipeline, and unit.Router instances that want their own
// named counters.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	core := registry.CoreMetrics()
//	core.RecordChunk("orders-sink", 64)
//	core.RecordRuleEvaluation("ingest", "validate", "reject-empty")
//	core.RecordCast("worker", "node-b", "ok", 4*time.Millisecond)
//
// A caller that wants to expose registry.PrometheusRegistry() over HTTP is
// free to mount promhttp.HandlerFor itself; this package does not run a
// server.
//
// # Thread Safety
//
// All registry operations are thread-safe: registration uses mutex
// protection, and metric recording is lock-free (a Prometheus guarantee).
package metric
