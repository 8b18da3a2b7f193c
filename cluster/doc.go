// Package cluster provides the cross-node transport a unit.Router
// uses to resolve casts that target another node, and that a
// stream.Ref uses to reach a sink that lives elsewhere.
//
// Transport is implemented twice: localTransport simulates several
// logical nodes inside one process over goroutines, for tests and for
// running a small cluster in a single binary; natsTransport is the
// real multi-process implementation, built on NATS request/reply via
// package natsclient, with per-destination-node outbound rate
// limiting. A Node is the per-process endpoint that demultiplexes a
// Transport's single inbound channel across the "unit" and "sink"
// handler kinds.
package cluster
