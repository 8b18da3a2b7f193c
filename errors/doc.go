// Package errors classifies the five error kinds the pipeline distinguishes
// (spec §7): RuleError, WorkerStartError, WorkerCrash, NodeUnreachable, and
// SinkShutdown, plus the lower-level Transient/Invalid/Fatal taxonomy they
// build on. None of these are retried at the element or rule level — only
// the cluster transport consults IsTransient.
package errors
