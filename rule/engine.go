package rule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kbrw/adap/stream"
)

// advance drives elem through whichever Group first matches its Tag,
// then advances to the next matching Group positionally (spec §4.3
// step 4, "advance to Gᵢ₊₁"), continuing forward until no later Group
// matches, at which point the traversal is complete and ref.Done is
// called. It never revisits a Group within one traversal, so it
// terminates in at most len(Groups) steps. A Remote rule hands the
// rest of this loop off to resumeFromRemote on the worker's node and
// returns immediately.
func (p *Pipeline) advance(ctx context.Context, ref stream.Ref, elem Element) {
	p.advanceFrom(ctx, ref, elem, 0)
}

// advanceFrom is advance, restricted to searching Groups at index
// start or later. resumeFromRemote uses this to resume a hopped
// traversal after the Group it hopped from, instead of re-running
// advance from the top and re-matching Groups already passed.
func (p *Pipeline) advanceFrom(ctx context.Context, ref stream.Ref, elem Element, start int) {
	for {
		gi, ok := p.findGroupIndexFrom(elem.Tag, start)
		if !ok {
			if err := ref.Done(ctx, elem); err != nil {
				p.logger.Error("failed to report completion to sink", "error", err)
			}
			return
		}

		group := p.Groups[gi]
		initElem, state := group.Init(elem, p.Args)

		var hopped bool
		elem, hopped = p.scanGroup(ctx, ref, gi, group, initElem, state, map[string]bool{})
		if hopped {
			return
		}
		start = gi + 1
	}
}

// safeMatch calls r.Match, treating a panic as a non-match rather than
// letting it propagate to the task-level recover in stream.SliceEmitter
// (spec §4.3): a bad Matcher should make the scan skip that rule, not
// abandon the whole element the way a failing Action does.
func (p *Pipeline) safeMatch(r Rule, groupTag string, elem Element, state State) (matched bool) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("rule matcher panicked, treating as non-match", "rule", r.Name, "panic", rec)
			if p.metrics != nil {
				p.metrics.RecordRuleFailure(p.Name, groupTag, r.Name)
			}
			matched = false
		}
	}()
	return r.Match(elem, state)
}

// findGroupIndexFrom returns the index of the first Group at or after
// start whose Tag matches tag, mirroring the top-of-pipeline rule
// "skip Groups whose tag differs" but starting the scan after the
// Group already visited instead of from the top.
func (p *Pipeline) findGroupIndexFrom(tag string, start int) (int, bool) {
	for i := start; i < len(p.Groups); i++ {
		if p.Groups[i].Tag == tag {
			return i, true
		}
	}
	return 0, false
}

// scanGroup implements the at-most-once, scan-restart-from-top
// algorithm within one Group: every time a rule fires, the scan
// restarts from the top of Rules, skipping rules already marked true
// in applied, until a full pass matches nothing. It returns the
// current element and whether the traversal ends here: true when a
// Remote rule hopped the rest of the traversal to another node, and
// also when an action, a request encoding or a cast failed, in which
// case the element is abandoned without ref.Done.
func (p *Pipeline) scanGroup(ctx context.Context, ref stream.Ref, groupIndex int, group Group, elem Element, state State, applied map[string]bool) (Element, bool) {
	for {
		fired := false
		for _, r := range group.Rules {
			if applied[r.Name] {
				continue
			}
			if !p.safeMatch(r, group.Tag, elem, state) {
				continue
			}

			switch action := r.Action.(type) {
			case LocalAction:
				start := time.Now()
				result, err := action.Fn(ctx, elem, state)
				if p.metrics != nil {
					p.metrics.RecordRuleEvaluation(p.Name, group.Tag, r.Name)
					p.metrics.RecordRuleDuration(p.Name, group.Tag, r.Name, time.Since(start))
				}
				if err != nil {
					p.logger.Error("local rule failed", "rule", r.Name, "error", err)
					if p.metrics != nil {
						p.metrics.RecordRuleFailure(p.Name, group.Tag, r.Name)
					}
					return elem, true
				}
				applied[r.Name] = true
				elem = result.Element
				state = result.State
				for _, e := range result.Emit {
					if emitErr := ref.Emit(ctx, e); emitErr != nil {
						p.logger.Error("failed to forward emitted element to sink", "error", emitErr)
					}
				}
				fired = true

			case RemoteAction:
				spec := action.SpecFn(elem, state)
				payload, err := json.Marshal(remoteRequest{Element: elem, State: state, Applied: applied, SinkRef: ref})
				if err != nil {
					p.logger.Error("failed to encode remote rule request", "rule", r.Name, "error", err)
					return elem, true
				}
				if err := p.router.Cast(ctx, spec, continuationName(p.Name, r.Name), payload); err != nil {
					p.logger.Error("cast to remote rule's worker failed", "rule", r.Name, "spec", spec, "error", err)
					if p.metrics != nil {
						p.metrics.RecordRuleFailure(p.Name, group.Tag, r.Name)
					}
					return elem, true
				}
				return elem, true
			}
			break
		}
		if !fired {
			return elem, false
		}
	}
}
