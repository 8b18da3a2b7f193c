package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kbrw/adap/metric"
)

const (
	// DefaultChunkSize is the default value of chunk_size (spec §6).
	DefaultChunkSize = 200
	// DefaultDoneTimeout is the default quiescence window a Sink waits
	// after its last active Emitter disappears before it decides
	// between delivering a short chunk and signaling HALT.
	DefaultDoneTimeout = 200 * time.Millisecond
)

// Chunk is what Next returns: either a batch of up to chunk_size
// completed elements, or Halted=true once the pipeline has drained.
type Chunk struct {
	Elements []Element
	Halted   bool
}

// Sink is the single-writer actor that drives one pull-based pipeline
// run: it owns the active Emitters, accumulates completed elements
// into chunks, and decides when the run has quiesced. All mutable
// state lives inside the run loop's goroutine; Emit, Done and Next are
// thin channel sends so callers never need their own locking.
type Sink struct {
	node        string
	id          string
	label       string
	chunkSize   int
	doneTimeout time.Duration
	rootEmit    EmitFunc

	nextC  chan chan Chunk
	emitC  chan emitRequest
	doneC  chan Element
	closeC chan struct{}
	once   sync.Once

	logger  *slog.Logger
	metrics *metric.Metrics
}

type emitRequest struct {
	elems   []Element
	emitter Emitter
}

// Option configures a Sink at construction time.
type Option func(*Sink)

// WithChunkSize overrides DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithDoneTimeout overrides DefaultDoneTimeout.
func WithDoneTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.doneTimeout = d
		}
	}
}

// WithMetrics attaches a metrics recorder; Record* calls are skipped
// when nil.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Sink) { s.metrics = m }
}

// WithLogger overrides the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) { s.logger = l }
}

// New starts a Sink on node, pulling initial through emitFn, and
// returns its handle. node identifies the process this Sink lives on
// for the purposes of Ref addressing; label is used only for metrics.
func New(ctx context.Context, node, label string, emitFn EmitFunc, initial []Element, opts ...Option) *Sink {
	s := &Sink{
		node:        node,
		id:          uuid.NewString(),
		label:       label,
		chunkSize:   DefaultChunkSize,
		doneTimeout: DefaultDoneTimeout,
		rootEmit:    emitFn,
		nextC:       make(chan chan Chunk),
		emitC:       make(chan emitRequest, 64),
		doneC:       make(chan Element, 64),
		closeC:      make(chan struct{}),
		logger:      slog.Default().With("component", "stream-sink"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("sink_id", s.id, "label", label)
	registerSink(s)
	go s.run(ctx, initial)
	return s
}

// Ref returns the cluster-addressable handle for this sink.
func (s *Sink) Ref() Ref { return Ref{Node: s.node, ID: s.id} }

// Close tears the sink down without waiting for quiescence. Intended
// for shutdown paths; normal termination happens via HALT.
func (s *Sink) Close() {
	s.once.Do(func() {
		unregisterSink(s.id)
		close(s.closeC)
	})
}

// Next blocks until chunk_size elements have completed since the last
// reply, or the pipeline has quiesced with nothing left to deliver, in
// which case it returns a short, non-empty chunk, or HALT once all
// emitters are exhausted and no element completes within
// done_timeout. Next never returns an error: failures at the element
// or rule level are classified and surfaced through logging and
// metrics, not through this call (spec §7).
func (s *Sink) Next(ctx context.Context) Chunk {
	reply := make(chan Chunk, 1)
	select {
	case s.nextC <- reply:
	case <-ctx.Done():
		return Chunk{Halted: true}
	case <-s.closeC:
		return Chunk{Halted: true}
	}
	select {
	case c := <-reply:
		return c
	case <-ctx.Done():
		return Chunk{Halted: true}
	}
}

// Done reports that elem has finished its rule traversal and should be
// counted toward the current chunk.
func (s *Sink) Done(ctx context.Context, elem Element) {
	select {
	case s.doneC <- elem:
	case <-ctx.Done():
	case <-s.closeC:
	}
}

// Emit injects additional elements that begin their own independent
// rule traversal from the top, wrapped into a fresh internal Emitter
// driven by the same EmitFunc the sink was started with.
func (s *Sink) Emit(ctx context.Context, elems ...Element) {
	if len(elems) == 0 {
		return
	}
	select {
	case s.emitC <- emitRequest{elems: elems}:
	case <-ctx.Done():
	case <-s.closeC:
	}
}

// EmitVia registers a caller-supplied Emitter, for sources that are
// not a plain in-memory list (e.g. a lazily-generated fanout).
func (s *Sink) EmitVia(ctx context.Context, e Emitter) {
	select {
	case s.emitC <- emitRequest{emitter: e}:
	case <-ctx.Done():
	case <-s.closeC:
	}
}

// run is the sink actor. All of its working state (emitters, buffer,
// pendingReply, halted) is local to this goroutine by construction, so
// none of it needs a mutex.
func (s *Sink) run(ctx context.Context, initial []Element) {
	emitters := []Emitter{NewSliceEmitter(s, s.rootEmit, initial)}
	var buffer []Element
	var pending chan Chunk
	halted := false

	var timer *time.Timer
	var timeoutC <-chan time.Time
	armTimeout := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(s.doneTimeout)
		timeoutC = timer.C
	}
	disarmTimeout := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = nil
		timeoutC = nil
	}
	defer disarmTimeout()

	deliver := func(c Chunk) {
		if s.metrics != nil && !c.Halted {
			s.metrics.RecordChunk(s.label, len(c.Elements))
		}
		pending <- c
		pending = nil
		buffer = nil
	}

	driveEmitters := func(remaining int) {
		for remaining > 0 && len(emitters) > 0 {
			ask := remaining
			launched := emitters[0].Next(ctx, ask)
			remaining -= launched
			if launched < ask {
				emitters = emitters[1:]
				continue
			}
			break
		}
	}

	checkCompletion := func() {
		if pending == nil {
			return
		}
		if len(buffer) >= s.chunkSize {
			elems := buffer
			deliver(Chunk{Elements: elems})
			return
		}
		if len(emitters) == 0 {
			armTimeout()
		}
	}

	driveAndCheck := func() {
		remaining := s.chunkSize - len(buffer)
		if remaining > 0 {
			driveEmitters(remaining)
		}
		checkCompletion()
	}

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending <- Chunk{Halted: true}
			}
			return
		case <-s.closeC:
			if pending != nil {
				pending <- Chunk{Halted: true}
			}
			return

		case reply := <-s.nextC:
			if halted {
				reply <- Chunk{Halted: true}
				continue
			}
			if pending != nil {
				s.logger.Warn("next called while a request is already pending")
			}
			pending = reply
			disarmTimeout()
			driveAndCheck()

		case elem := <-s.doneC:
			if halted {
				continue
			}
			buffer = append(buffer, elem)
			if s.metrics != nil {
				s.metrics.RecordElementDone(s.label)
			}
			checkCompletion()

		case req := <-s.emitC:
			if halted {
				continue
			}
			var e Emitter
			if req.emitter != nil {
				e = req.emitter
			} else {
				e = NewSliceEmitter(s, s.rootEmit, req.elems)
			}
			emitters = append(emitters, e)
			if pending != nil {
				disarmTimeout()
				driveAndCheck()
			}

		case <-timeoutC:
			if pending == nil {
				continue
			}
			if len(emitters) > 0 {
				driveAndCheck()
				continue
			}
			if len(buffer) == 0 {
				halted = true
				if s.metrics != nil {
					s.metrics.RecordHalt(s.label)
				}
				unregisterSink(s.id)
				reply := pending
				pending = nil
				reply <- Chunk{Halted: true}
				continue
			}
			elems := buffer
			deliver(Chunk{Elements: elems})
		}
	}
}
