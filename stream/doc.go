// Package stream implements the chunked, pull-based sink/emitter pair
// at the head of a pipeline run.
//
// A Sink is started with an initial batch of elements and an EmitFunc;
// callers drive the run by repeatedly calling Next, which blocks until
// either chunk_size elements have completed or the run has quiesced.
// Rule actions (or any other EmitFunc) report completions with Done
// and inject further work with Emit. A Ref makes a Sink's Done/Emit
// reachable from another node once a rule traversal hops across the
// cluster.
package stream
