package config

import (
	"encoding/json"
	"fmt"

	"github.com/kbrw/adap/errors"
	"github.com/xeipuuv/gojsonschema"
)

// configSchema is the structural shape Validate checks every Config
// against before the semantic checks run. It mirrors the Config
// struct's json tags.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["node", "chunk_size", "done_timeout_ms", "worker_ttl_ms"],
  "properties": {
    "node": {"type": "string", "minLength": 1},
    "chunk_size": {"type": "integer", "minimum": 1},
    "done_timeout_ms": {"type": "integer", "minimum": 0},
    "worker_ttl_ms": {"type": "integer", "minimum": 0},
    "cluster": {
      "type": "object",
      "properties": {
        "nats_url": {"type": "string"},
        "nodes": {"type": "array", "items": {"type": "string"}},
        "rate_limit_per_second": {"type": "number", "minimum": 0},
        "rate_limit_burst": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(configSchema)

// Validate checks cfg against the embedded JSON schema and the
// semantic invariants spec §6 places on the config options: a
// non-empty node name, a positive chunk size, and a cluster node list
// that names cfg.Node whenever a NATS URL is set (otherwise nothing
// could ever resolve this process as a cast target).
func Validate(cfg Config) error {
	documentBytes, err := json.Marshal(cfg)
	if err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "marshal config for schema check")
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(documentBytes))
	if err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "run schema validation")
	}
	if !result.Valid() {
		msg := "invalid configuration:"
		for _, desc := range result.Errors() {
			msg += fmt.Sprintf(" %s: %s;", desc.Field(), desc.Description())
		}
		return errors.WrapInvalid(fmt.Errorf("%s", msg), "config", "Validate", "schema check")
	}

	if cfg.Cluster.NATSURL != "" {
		found := false
		for _, n := range cfg.Cluster.Nodes {
			if n == cfg.Node {
				found = true
				break
			}
		}
		if !found {
			return errors.WrapInvalid(fmt.Errorf("node %q is not listed in cluster.nodes", cfg.Node), "config", "Validate", "cluster membership check")
		}
	}

	return nil
}
