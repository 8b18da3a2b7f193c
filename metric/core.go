package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the platform-level metrics shared by every long-lived
// component in the pipeline: stream sinks, the rule engine, and the unit
// router/cluster transport.
type Metrics struct {
	// Stream metrics
	ChunksDelivered  *prometheus.CounterVec
	ChunkSize        *prometheus.HistogramVec
	EmittersActive   *prometheus.GaugeVec
	ElementsDone     *prometheus.CounterVec
	SinkHalted       *prometheus.CounterVec

	// Rule engine metrics
	RuleEvaluations *prometheus.CounterVec
	RuleFailures    *prometheus.CounterVec
	RuleDuration    *prometheus.HistogramVec

	// Unit router / cluster metrics
	CastTotal      *prometheus.CounterVec
	CastDuration   *prometheus.HistogramVec
	WorkerStarts   *prometheus.CounterVec
	WorkerCrashes  *prometheus.CounterVec
	WorkerIdleTTL  *prometheus.CounterVec
	NodeConnected  *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all platform metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ChunksDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "stream",
				Name:      "chunks_delivered_total",
				Help:      "Total number of chunks delivered to consumers",
			},
			[]string{"sink"},
		),
		ChunkSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "adap",
				Subsystem: "stream",
				Name:      "chunk_size",
				Help:      "Size of delivered chunks",
				Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
			},
			[]string{"sink"},
		),
		EmittersActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "adap",
				Subsystem: "stream",
				Name:      "emitters_active",
				Help:      "Number of active emitters registered with a sink",
			},
			[]string{"sink"},
		),
		ElementsDone: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "stream",
				Name:      "elements_done_total",
				Help:      "Total number of elements delivered via done()",
			},
			[]string{"sink"},
		),
		SinkHalted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "stream",
				Name:      "halted_total",
				Help:      "Total number of sinks that reached HALT",
			},
			[]string{"sink"},
		),

		RuleEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "rule",
				Name:      "evaluations_total",
				Help:      "Total number of rule action evaluations",
			},
			[]string{"pipeline", "group", "rule"},
		),
		RuleFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "rule",
				Name:      "failures_total",
				Help:      "Total number of rule matcher/action failures",
			},
			[]string{"pipeline", "group", "rule"},
		),
		RuleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "adap",
				Subsystem: "rule",
				Name:      "duration_seconds",
				Help:      "Rule action evaluation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline", "group", "rule"},
		),

		CastTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "unit",
				Name:      "cast_total",
				Help:      "Total number of Router.Cast calls",
			},
			[]string{"unit_kind", "node", "status"},
		),
		CastDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "adap",
				Subsystem: "unit",
				Name:      "cast_duration_seconds",
				Help:      "Cast round-trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"unit_kind", "node"},
		),
		WorkerStarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "unit",
				Name:      "worker_starts_total",
				Help:      "Total number of worker starts (one per unit.Spec lazily started)",
			},
			[]string{"unit_kind", "node"},
		),
		WorkerCrashes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "unit",
				Name:      "worker_crashes_total",
				Help:      "Total number of worker crashes observed by the router",
			},
			[]string{"unit_kind", "node"},
		),
		WorkerIdleTTL: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adap",
				Subsystem: "unit",
				Name:      "worker_idle_ttl_total",
				Help:      "Total number of workers stopped by the router on idle TTL",
			},
			[]string{"unit_kind", "node"},
		),
		NodeConnected: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "adap",
				Subsystem: "cluster",
				Name:      "node_connected",
				Help:      "Cluster transport connection status per node (0=disconnected, 1=connected)",
			},
			[]string{"node"},
		),
	}
}

// RecordChunk records a delivered chunk's size for a sink.
func (m *Metrics) RecordChunk(sink string, size int) {
	m.ChunksDelivered.WithLabelValues(sink).Inc()
	m.ChunkSize.WithLabelValues(sink).Observe(float64(size))
}

// RecordElementDone increments the elements-delivered counter for a sink.
func (m *Metrics) RecordElementDone(sink string) {
	m.ElementsDone.WithLabelValues(sink).Inc()
}

// RecordHalt marks a sink as having reached HALT.
func (m *Metrics) RecordHalt(sink string) {
	m.SinkHalted.WithLabelValues(sink).Inc()
}

// RecordRuleEvaluation records one action evaluation for a rule.
func (m *Metrics) RecordRuleEvaluation(pipeline, group, rule string) {
	m.RuleEvaluations.WithLabelValues(pipeline, group, rule).Inc()
}

// RecordRuleFailure records a rule matcher/action failure.
func (m *Metrics) RecordRuleFailure(pipeline, group, rule string) {
	m.RuleFailures.WithLabelValues(pipeline, group, rule).Inc()
}

// RecordRuleDuration records how long a rule action took to evaluate.
func (m *Metrics) RecordRuleDuration(pipeline, group, rule string, d time.Duration) {
	m.RuleDuration.WithLabelValues(pipeline, group, rule).Observe(d.Seconds())
}

// RecordCast records the outcome and duration of a Router.Cast call.
func (m *Metrics) RecordCast(unitKind, node, status string, d time.Duration) {
	m.CastTotal.WithLabelValues(unitKind, node, status).Inc()
	m.CastDuration.WithLabelValues(unitKind, node).Observe(d.Seconds())
}

// RecordWorkerStart increments the worker-start counter for a unit kind/node.
func (m *Metrics) RecordWorkerStart(unitKind, node string) {
	m.WorkerStarts.WithLabelValues(unitKind, node).Inc()
}

// RecordWorkerCrash increments the worker-crash counter for a unit kind/node.
func (m *Metrics) RecordWorkerCrash(unitKind, node string) {
	m.WorkerCrashes.WithLabelValues(unitKind, node).Inc()
}

// RecordWorkerIdleTTL increments the idle-expiry counter for a unit kind/node.
func (m *Metrics) RecordWorkerIdleTTL(unitKind, node string) {
	m.WorkerIdleTTL.WithLabelValues(unitKind, node).Inc()
}

// RecordNodeConnected updates the cluster transport connection gauge for a node.
func (m *Metrics) RecordNodeConnected(node string, connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.NodeConnected.WithLabelValues(node).Set(value)
}
