// Package adap implements a distributed data-augmentation pipeline:
// elements are pulled from a chunked stream.Sink, driven through a
// rule.Pipeline of ordered rule Groups, and — where a rule's action is
// Remote — handed off across the cluster to a unit.Router-owned
// worker, which continues the same scan on its own node.
//
// # Architecture
//
//	┌───────────┐  Next/Done/Emit   ┌──────────────┐
//	│  Emitter   │ ────────────────► │  stream.Sink │
//	└───────────┘                   └──────┬───────┘
//	                                        │ EmitFunc
//	                                        ▼
//	                               ┌─────────────────┐
//	                               │  rule.Pipeline   │  ordered Groups of
//	                               │(Pipeline.advance)│  (name, match, action)
//	                               └────────┬─────────┘
//	                        Local action    │    Remote action
//	                    (runs in place)     │    (unit.Router.Cast)
//	                                        ▼
//	                               ┌─────────────────┐
//	                               │   unit.Router    │  resolves home node,
//	                               │  (WorkerUnit)    │  starts/reuses worker
//	                               └────────┬─────────┘
//	                                        │ cluster.Transport
//	                                        ▼
//	                          remote node resumes the scan (Pipeline.resumeFromRemote)
//	                          and eventually calls stream.Ref.Done/Emit
//
// A cast is fire-and-forget from the caller's perspective: it returns
// once the closure is enqueued on the target worker, not once the
// closure has run. Only dispatch failures — an unregistered Kind, the
// worker's Kind.Start erroring, a worker that can no longer accept the
// closure, or the target node being unreachable — are reported back
// synchronously; everything past that point is surfaced through
// metrics and logs, never retried automatically.
//
// # Packages
//
//   - stream: Sink, Emitter, SliceEmitter, and the cluster-addressable
//     Ref a remote node uses to call back into a sink it doesn't own.
//   - rule: Element, Rule, Group, Pipeline, and the scan-restart engine
//     that drives an element through a Pipeline's Groups.
//   - unit: Spec, Kind, WorkerUnit, and the Router that resolves a
//     Spec's home node and lazily starts or reuses its worker.
//   - cluster: the Transport abstraction (in-process localTransport,
//     NATS-backed natsTransport) and the Node that demultiplexes
//     inbound casts and sink callbacks across registered handlers.
//   - config: YAML configuration, validated against an embedded JSON
//     schema plus the cluster-membership invariants this module needs.
//   - joiner: the contract a fixed-size sliding-window join helper
//     must satisfy; the windowing implementation itself is out of
//     scope and lives outside this module.
//   - metric: the Prometheus registry wrapper every other package
//     records through.
//   - errors: the classified error taxonomy (transient, fatal,
//     invalid) and the sentinel error kinds the other packages wrap.
package adap
