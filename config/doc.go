// Package config loads and validates the runtime configuration for
// one adap process: its node identity, the sink and worker tuning
// knobs, and how it reaches the rest of the cluster over NATS.
//
// Load reads YAML over Default and validates the result against an
// embedded JSON schema, the same gojsonschema-based check the
// exporter tooling runs against component schemas, plus a handful of
// semantic invariants Validate enforces directly.
package config
