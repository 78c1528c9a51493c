package models

import (
	"github.com/roach88/mediacore/internal/aggr"
	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/msg"
)

// Catalogs aggregates catalogs from all installed addons.
type Catalogs struct {
	Request aggr.Request
	Groups  []aggr.CatalogGroup

	env env.Environment
}

var _ engine.UpdateWithCtx[*Ctx] = (*Catalogs)(nil)

// NewCatalogs creates an empty Catalogs model.
func NewCatalogs(e env.Environment) *Catalogs {
	return &Catalogs{env: e}
}

// UpdateWithCtx implements engine.UpdateWithCtx.
func (c *Catalogs) UpdateWithCtx(m msg.Msg, ctx *Ctx) engine.Effects {
	switch m := m.(type) {
	case msg.LoadCatalogs:
		if m.Request == nil {
			return engine.None().Unchanged()
		}
		groups, effs := aggr.PlanAndDispatch(c.env, ctx.Profile.Addons, m.Request, aggr.NewCatalogGroup)
		c.Request = m.Request
		c.Groups = groups
		return effs

	case msg.AddonResponse:
		return aggr.Reconcile(c.Groups, m)

	case msg.Unload:
		if c.Request == nil && c.Groups == nil {
			return engine.None().Unchanged()
		}
		c.Request = nil
		c.Groups = nil
		return engine.None()
	}
	return engine.None().Unchanged()
}

// Settled reports whether no group is loading.
func (c *Catalogs) Settled() bool {
	for _, g := range c.Groups {
		if g.Content.IsLoading() {
			return false
		}
	}
	return true
}
