package models

import (
	"github.com/roach88/mediacore/internal/aggr"
	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/types"
)

// Streams collects streams for one title from every addon serving it.
type Streams struct {
	Ref    *types.ResourceRef
	Groups []aggr.ResourceGroup

	env env.Environment
}

var _ engine.UpdateWithCtx[*Ctx] = (*Streams)(nil)

// NewStreams creates an empty Streams model.
func NewStreams(e env.Environment) *Streams {
	return &Streams{env: e}
}

// UpdateWithCtx implements engine.UpdateWithCtx.
func (s *Streams) UpdateWithCtx(m msg.Msg, ctx *Ctx) engine.Effects {
	switch m := m.(type) {
	case msg.LoadStreams:
		ref := m.Ref
		groups, effs := aggr.PlanAndDispatch(s.env, ctx.Profile.Addons, aggr.AllOfResource{Ref: ref}, aggr.NewResourceGroup)
		s.Ref = &ref
		s.Groups = groups
		return effs

	case msg.AddonResponse:
		return aggr.Reconcile(s.Groups, m)

	case msg.Unload:
		if s.Ref == nil && s.Groups == nil {
			return engine.None().Unchanged()
		}
		s.Ref = nil
		s.Groups = nil
		return engine.None()
	}
	return engine.None().Unchanged()
}

// Settled reports whether no group is loading.
func (s *Streams) Settled() bool {
	for _, g := range s.Groups {
		if g.Content.IsLoading() {
			return false
		}
	}
	return true
}

// All returns the streams of every ready group, in addon order.
func (s *Streams) All() []types.Stream {
	var out []types.Stream
	for _, g := range s.Groups {
		out = append(out, g.Streams()...)
	}
	return out
}
