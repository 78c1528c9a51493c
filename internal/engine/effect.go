package engine

import (
	"context"
	"slices"

	"github.com/roach88/mediacore/internal/msg"
)

// Effect is a single unit of asynchronous work. Run must return exactly one
// message on every path, success or failure.
type Effect interface {
	Run(ctx context.Context) msg.Msg
}

// EffectFunc adapts a function to the Effect interface.
type EffectFunc func(ctx context.Context) msg.Msg

// Run calls f.
func (f EffectFunc) Run(ctx context.Context) msg.Msg {
	return f(ctx)
}

// Effects is an ordered batch of effects plus a flag telling whether the
// state that produced it changed.
//
// The zero value is an empty, unchanged batch. Use None for "changed, nothing
// to do" (the common case for a reducer that handled the message).
type Effects struct {
	effects []Effect
	changed bool
}

// None returns an empty batch that reports a state change.
func None() Effects {
	return Effects{changed: true}
}

// One returns a batch with a single effect.
func One(e Effect) Effects {
	return Effects{effects: []Effect{e}, changed: true}
}

// Many returns a batch with the given effects, in order.
func Many(effs ...Effect) Effects {
	return Effects{effects: slices.Clone(effs), changed: true}
}

// Unchanged returns a copy of the batch that reports no state change.
// The effect list is untouched.
func (e Effects) Unchanged() Effects {
	e.changed = false
	return e
}

// Join concatenates other after e. The result is changed if either is.
func (e Effects) Join(other Effects) Effects {
	joined := make([]Effect, 0, len(e.effects)+len(other.effects))
	joined = append(joined, e.effects...)
	joined = append(joined, other.effects...)
	return Effects{effects: joined, changed: e.changed || other.changed}
}

// Changed reports whether the producing state changed.
func (e Effects) Changed() bool {
	return e.changed
}

// Len returns the number of effects.
func (e Effects) Len() int {
	return len(e.effects)
}

// List returns the effects in order. The slice is a copy.
func (e Effects) List() []Effect {
	return slices.Clone(e.effects)
}
