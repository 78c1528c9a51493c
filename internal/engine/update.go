package engine

import "github.com/roach88/mediacore/internal/msg"

// Update is the reducer contract: apply m to the receiver's state in place
// and return the effects to schedule. Implementations are pointer types.
//
// Update must not block and must not start goroutines; asynchronous work
// belongs in the returned effects.
type Update interface {
	Update(m msg.Msg) Effects
}

// UpdateWithCtx is Update with read-only access to a shared context value
// (for instance the user profile) that the model does not own.
type UpdateWithCtx[C any] interface {
	UpdateWithCtx(m msg.Msg, ctx C) Effects
}

// Dispatcher is anything the Muxer can offer a message to.
type Dispatcher interface {
	Dispatch(m msg.Msg) Effects
}

// Container owns a model and applies messages to it.
type Container[M Update] struct {
	model M
}

var _ Dispatcher = (*Container[Update])(nil)

// NewContainer wraps model.
func NewContainer[M Update](model M) *Container[M] {
	return &Container[M]{model: model}
}

// Dispatch applies m to the model.
func (c *Container[M]) Dispatch(m msg.Msg) Effects {
	return c.model.Update(m)
}

// Model returns the wrapped model. Read it only from the loop goroutine.
func (c *Container[M]) Model() M {
	return c.model
}

// CtxContainer owns a model that needs a shared context value. The context
// is read through a getter at dispatch time, so it always reflects the
// latest state of whatever owns it.
type CtxContainer[C any, M UpdateWithCtx[C]] struct {
	model M
	ctx   func() C
}

// NewCtxContainer wraps model; ctx is called on every dispatch.
func NewCtxContainer[C any, M UpdateWithCtx[C]](model M, ctx func() C) *CtxContainer[C, M] {
	return &CtxContainer[C, M]{model: model, ctx: ctx}
}

// Dispatch applies m to the model with the current context.
func (c *CtxContainer[C, M]) Dispatch(m msg.Msg) Effects {
	return c.model.UpdateWithCtx(m, c.ctx())
}

// Model returns the wrapped model. Read it only from the loop goroutine.
func (c *CtxContainer[C, M]) Model() M {
	return c.model
}
