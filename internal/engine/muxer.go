package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/msg"
)

// ChangeListener is called after a container handled a message and reported
// a state change. Called on the loop goroutine; it may read models.
type ChangeListener func(container string, m msg.Msg)

// Muxer multiplexes several containers onto one message loop and one
// effect executor.
//
// Thread-safety model:
//   - Enqueue(), InFlight(), Pending(), Idle(), Stop(): safe from any goroutine
//   - Add(): only before the loop starts
//   - Dispatch(), Step(), Run(), RunUntil(): exactly one goroutine at a time
//
// INVARIANTS:
//   - containers order NEVER changes once the loop runs
//   - every message is offered exactly once to every container
//   - every scheduled effect enqueues exactly one message (unless the queue
//     was closed by Stop)
type Muxer struct {
	env        env.Environment
	containers []namedContainer
	queue      *msgQueue
	logger     *slog.Logger
	metrics    *Metrics
	ids        IDGenerator
	listeners  []ChangeListener
	effectCtx  context.Context
	inFlight   atomic.Int64
}

type namedContainer struct {
	name string
	d    Dispatcher
}

// Option configures a Muxer.
type Option func(*Muxer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(mx *Muxer) {
		mx.logger = l
	}
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(mx *Muxer) {
		mx.metrics = m
	}
}

// WithIDGenerator sets the effect id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(mx *Muxer) {
		mx.ids = g
	}
}

// WithChangeListener registers a listener for state changes.
func WithChangeListener(l ChangeListener) Option {
	return func(mx *Muxer) {
		mx.listeners = append(mx.listeners, l)
	}
}

// New creates a Muxer scheduling effects on e.
func New(e env.Environment, opts ...Option) *Muxer {
	mx := &Muxer{
		env:       e,
		queue:     newMsgQueue(),
		logger:    slog.Default(),
		ids:       UUIDv7Generator{},
		effectCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(mx)
	}
	return mx
}

// Add registers a container under name. Containers receive messages in
// registration order. Names must be unique.
func (mx *Muxer) Add(name string, d Dispatcher) *Muxer {
	if slices.ContainsFunc(mx.containers, func(c namedContainer) bool { return c.name == name }) {
		panic(fmt.Sprintf("engine: duplicate container %q", name))
	}
	mx.containers = append(mx.containers, namedContainer{name: name, d: d})
	return mx
}

// Enqueue submits a message for processing by the loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the muxer has been stopped.
func (mx *Muxer) Enqueue(m msg.Msg) bool {
	return mx.queue.Enqueue(m)
}

// Dispatch offers m to every container, schedules the resulting effects and
// returns the joined batch.
//
// CRITICAL: single-writer. Call only from the goroutine that owns the loop.
func (mx *Muxer) Dispatch(m msg.Msg) Effects {
	mx.logger.Debug("dispatching message", "msg", m.Name(), "kind", m.Kind().String())
	if mx.metrics != nil {
		mx.metrics.Messages.WithLabelValues(m.Kind().String(), m.Name()).Inc()
	}

	var all Effects
	for _, c := range mx.containers {
		effs := c.d.Dispatch(m)
		if effs.Changed() {
			for _, l := range mx.listeners {
				l(c.name, m)
			}
		} else if mx.metrics != nil {
			mx.metrics.UnchangedBatches.WithLabelValues(c.name).Inc()
		}
		mx.logger.Debug("container updated",
			"container", c.name,
			"msg", m.Name(),
			"changed", effs.Changed(),
			"effects", effs.Len(),
		)
		all = all.Join(effs)
	}

	for _, eff := range all.effects {
		mx.schedule(eff)
	}
	return all
}

// schedule hands eff to the environment executor. The effect's message is
// enqueued before the in-flight counter drops, so Idle never observes a gap.
func (mx *Muxer) schedule(eff Effect) {
	id := mx.ids.Generate()
	ctx := mx.effectCtx
	mx.inFlight.Add(1)
	if mx.metrics != nil {
		mx.metrics.EffectsScheduled.Inc()
	}
	mx.logger.Debug("effect scheduled", "effect_id", id)

	mx.env.Exec(func() {
		defer mx.inFlight.Add(-1)

		result := eff.Run(ctx)
		if mx.metrics != nil {
			mx.metrics.EffectsCompleted.Inc()
		}
		if result == nil {
			// Programming error in the effect: there is no message to deliver
			mx.logger.Error("effect returned no message", "effect_id", id)
			return
		}
		if !mx.queue.Enqueue(result) {
			mx.logger.Warn("effect result dropped: muxer stopped",
				"effect_id", id,
				"msg", result.Name(),
			)
			return
		}
		mx.logger.Debug("effect completed", "effect_id", id, "msg", result.Name())
	})
}

// Step dispatches the next queued message, if any.
// Returns false if the queue was empty.
//
// CRITICAL: single-writer, like Dispatch.
func (mx *Muxer) Step() bool {
	m, ok := mx.queue.TryDequeue()
	if !ok {
		return false
	}
	mx.Dispatch(m)
	return true
}

// Run starts the single-writer loop. Blocks until ctx is cancelled or Stop
// is called.
func (mx *Muxer) Run(ctx context.Context) error {
	return mx.RunUntil(ctx, nil)
}

// RunUntil runs the loop until done reports true, ctx is cancelled or Stop
// is called. done is evaluated on the loop goroutine before the first
// message and after every dispatched message, so it may read models.
// Returns nil when done was satisfied or the muxer was stopped.
//
// Effects scheduled by the loop run with a context that carries ctx's values
// but is never cancelled: effects always run to completion.
func (mx *Muxer) RunUntil(ctx context.Context, done func() bool) error {
	mx.effectCtx = context.WithoutCancel(ctx)
	mx.logger.Info("muxer starting", "containers", len(mx.containers))

	if done != nil && done() {
		return nil
	}

	for {
		if m, ok := mx.queue.TryDequeue(); ok {
			mx.Dispatch(m)
			if done != nil && done() {
				mx.logger.Info("muxer finished: condition met")
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			mx.logger.Info("muxer stopping: context cancelled")
			return ctx.Err()

		case <-mx.queue.Wait():
			// The signal channel is closed when the queue is closed,
			// which makes this case fire immediately
			if mx.queue.Len() == 0 && mx.stopped() {
				mx.logger.Info("muxer stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the queue is drained.
// Results of effects still running are dropped with a warning.
func (mx *Muxer) Stop() {
	mx.queue.Close()
}

func (mx *Muxer) stopped() bool {
	mx.queue.mu.Lock()
	defer mx.queue.mu.Unlock()
	return mx.queue.closed
}

// InFlight returns the number of scheduled effects that have not yet
// enqueued their message.
func (mx *Muxer) InFlight() int {
	return int(mx.inFlight.Load())
}

// Pending returns the number of queued messages.
func (mx *Muxer) Pending() int {
	return mx.queue.Len()
}

// Idle reports whether no effect is running and no message is queued.
func (mx *Muxer) Idle() bool {
	// Order matters: an effect enqueues before it leaves the in-flight set
	return mx.inFlight.Load() == 0 && mx.queue.Len() == 0
}
