package models

import (
	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/env"
)

// Container names, in dispatch order.
const (
	CtxName      = "ctx"
	CatalogsName = "catalogs"
	StreamsName  = "streams"
)

// Runtime is the standard set of models wired into one Muxer.
type Runtime struct {
	Muxer    *engine.Muxer
	Ctx      *Ctx
	Catalogs *Catalogs
	Streams  *Streams
}

// NewRuntime creates the models and registers them on a new Muxer. Ctx is
// registered first so the other models see the profile it just updated.
func NewRuntime(e env.Environment, opts ...engine.Option) *Runtime {
	rt := &Runtime{
		Muxer:    engine.New(e, opts...),
		Ctx:      NewCtx(e),
		Catalogs: NewCatalogs(e),
		Streams:  NewStreams(e),
	}
	ctx := func() *Ctx { return rt.Ctx }
	rt.Muxer.
		Add(CtxName, engine.NewContainer(rt.Ctx)).
		Add(CatalogsName, engine.NewCtxContainer(rt.Catalogs, ctx)).
		Add(StreamsName, engine.NewCtxContainer(rt.Streams, ctx))
	return rt
}

// Settled reports whether the Muxer is idle and no aggregation group is
// loading.
func (rt *Runtime) Settled() bool {
	return rt.Muxer.Idle() && rt.Catalogs.Settled() && rt.Streams.Settled()
}
