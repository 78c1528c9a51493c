package aggr

import (
	"context"
	"log/slog"

	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/transport"
	"github.com/roach88/mediacore/internal/types"
)

// PlanAndDispatch starts a round: it plans req over addons and returns one
// loading group and one dispatch effect per distinct ResourceRequest, both in
// plan order. Duplicate requests are planned once (the first wins).
func PlanAndDispatch[G Group[G]](
	e env.Environment,
	addons []types.Descriptor,
	req Request,
	newGroup func(types.ResourceRequest) G,
) ([]G, engine.Effects) {
	planned := req.Plan(addons)

	groups := make([]G, 0, len(planned))
	effects := make([]engine.Effect, 0, len(planned))
	for _, r := range planned {
		if containsRequest(groups, r) {
			slog.Debug("duplicate request planned once", "url", r.String())
			continue
		}
		groups = append(groups, newGroup(r))
		effects = append(effects, Dispatch(e, r))
	}
	return groups, engine.Many(effects...)
}

// Dispatch returns the effect fetching r. The effect always yields an
// AddonResponse carrying r, with either the response or the error.
func Dispatch(e env.Environment, r types.ResourceRequest) engine.Effect {
	return engine.EffectFunc(func(ctx context.Context) msg.Msg {
		resp, err := transport.For(e, r.Base).Get(ctx, r.Path)
		if err != nil {
			return msg.NewAddonResponse(r, nil, err)
		}
		return msg.NewAddonResponse(r, resp, nil)
	})
}

// Reconcile folds m into groups. For an AddonResponse whose request matches
// a group, that group is replaced by its updated state and the result is
// changed. Anything else leaves groups untouched and reports unchanged.
// Reconcile never produces effects.
func Reconcile[G Group[G]](groups []G, m msg.Msg) engine.Effects {
	resp, ok := m.(msg.AddonResponse)
	if !ok {
		return engine.None().Unchanged()
	}
	for i, g := range groups {
		if g.Request().Equal(resp.Request) {
			groups[i] = g.Update(resp.Response, resp.Err)
			return engine.None()
		}
	}
	slog.Debug("addon response matched no group", "url", resp.Request.String())
	return engine.None().Unchanged()
}

func containsRequest[G Group[G]](groups []G, r types.ResourceRequest) bool {
	for _, g := range groups {
		if g.Request().Equal(r) {
			return true
		}
	}
	return false
}
