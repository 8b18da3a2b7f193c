package rule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kbrw/adap/metric"
	"github.com/kbrw/adap/stream"
	"github.com/kbrw/adap/unit"
)

// Pipeline is an ordered set of Groups sharing one namespace of rule
// names. Args is fixed at construction and handed to every Group's
// Init: because a rule traversal can hop across the cluster mid-scan,
// a Pipeline's configuration has to be reachable by name from any
// node, not threaded through as a per-call parameter.
type Pipeline struct {
	Name   string
	Groups []Group
	Args   any

	router  *unit.Router
	metrics *metric.Metrics
	logger  *slog.Logger
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Pipeline{}
)

// Register makes p resolvable by name and registers a named
// continuation handler, through the unit package, for every Remote
// rule it contains. router is used to cast Remote actions to their
// worker's node; it must be the same Router the process uses to serve
// inbound casts, since a hop's resumption runs Remote actions that may
// themselves hop again. Register must run on every node that can host
// a worker named by one of p's Remote rules.
func Register(p *Pipeline, router *unit.Router, metrics *metric.Metrics) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[p.Name]; exists {
		return fmt.Errorf("rule: pipeline %q already registered", p.Name)
	}

	p.router = router
	p.metrics = metrics
	p.logger = slog.Default().With("component", "rule-engine", "pipeline", p.Name)

	for gi := range p.Groups {
		group := p.Groups[gi]
		for ri := range group.Rules {
			r := group.Rules[ri]
			remote, ok := r.Action.(RemoteAction)
			if !ok {
				continue
			}
			handlerName := continuationName(p.Name, r.Name)
			groupIndex := gi
			rule := r
			remoteAction := remote
			if err := unit.RegisterHandler(handlerName, func(ctx context.Context, workerState any, payload []byte) ([]byte, error) {
				return p.resumeFromRemote(ctx, groupIndex, rule, remoteAction, workerState, payload)
			}); err != nil {
				return err
			}
		}
	}

	registry[p.Name] = p
	return nil
}

// Lookup returns the Pipeline registered under name, if any.
func Lookup(name string) (*Pipeline, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// continuationName is the unit package handler name a Remote rule's
// continuation is registered under: namespaced by pipeline so two
// pipelines can each define a rule with the same Name.
func continuationName(pipeline, rule string) string {
	return "rule:" + pipeline + ":" + rule
}

// Build returns the EmitFunc that drives one element through p from
// the top of whichever Group first matches its Tag, suitable as the
// emit_fn passed to stream.New.
func (p *Pipeline) Build() stream.EmitFunc {
	return func(ctx context.Context, sink *stream.Sink, elem Element) {
		p.advance(ctx, sink.Ref(), elem)
	}
}

// remoteRequest is the serializable payload a Remote rule's cast
// carries: just enough for the worker's node to apply the
// continuation and resume the scan itself (spec §9's named-handler
// registry resolution to remote closure passing).
type remoteRequest struct {
	Element Element         `json:"element"`
	State   State           `json:"state"`
	Applied map[string]bool `json:"applied"`
	SinkRef stream.Ref      `json:"sink_ref"`
}

func (p *Pipeline) resumeFromRemote(ctx context.Context, groupIndex int, r Rule, remote RemoteAction, workerState any, payload []byte) ([]byte, error) {
	var req remoteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := remote.Fn(ctx, workerState, req.Element, req.State)
	if p.metrics != nil {
		p.metrics.RecordRuleDuration(p.Name, p.Groups[groupIndex].Tag, r.Name, time.Since(start))
		p.metrics.RecordRuleEvaluation(p.Name, p.Groups[groupIndex].Tag, r.Name)
	}
	if err != nil {
		p.logger.Error("remote rule failed", "rule", r.Name, "error", err)
		if p.metrics != nil {
			p.metrics.RecordRuleFailure(p.Name, p.Groups[groupIndex].Tag, r.Name)
		}
		return nil, err
	}

	applied := cloneApplied(req.Applied)
	applied[r.Name] = true

	for _, e := range result.Emit {
		if emitErr := req.SinkRef.Emit(ctx, e); emitErr != nil {
			p.logger.Error("failed to forward emitted element to sink", "error", emitErr)
		}
	}

	elem, hopped := p.scanGroup(ctx, req.SinkRef, groupIndex, p.Groups[groupIndex], result.Element, result.State, applied)
	if !hopped {
		p.advanceFrom(ctx, req.SinkRef, elem, groupIndex+1)
	}
	return nil, nil
}

func cloneApplied(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
