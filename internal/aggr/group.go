package aggr

import (
	"github.com/roach88/mediacore/internal/types"
)

// Group is the per-request state of one round. Update returns the new state
// after the response for Request() arrived; it does not modify the receiver.
type Group[G any] interface {
	Request() types.ResourceRequest
	Update(resp *types.ResourceResponse, err error) G
}

var (
	_ Group[ResourceGroup] = ResourceGroup{}
	_ Group[CatalogGroup]  = CatalogGroup{}
)

// ResourceGroup holds any kind of resource response.
type ResourceGroup struct {
	Req     types.ResourceRequest             `json:"request"`
	Content Loadable[*types.ResourceResponse] `json:"content"`
}

// NewResourceGroup returns a loading group for req.
func NewResourceGroup(req types.ResourceRequest) ResourceGroup {
	return ResourceGroup{Req: req}
}

// Request implements Group.
func (g ResourceGroup) Request() types.ResourceRequest {
	return g.Req
}

// Update implements Group.
func (g ResourceGroup) Update(resp *types.ResourceResponse, err error) ResourceGroup {
	switch {
	case err != nil:
		g.Content = NewFailed[*types.ResourceResponse](err)
	case resp == nil:
		g.Content = NewFailed[*types.ResourceResponse](ErrUnexpectedResponse)
	default:
		g.Content = NewReady(resp)
	}
	return g
}

// Streams returns the streams of a ready group, or nil.
func (g ResourceGroup) Streams() []types.Stream {
	if g.Content.State != Ready {
		return nil
	}
	return g.Content.Value.Streams
}

// Metas returns the metas of a ready group, or nil.
func (g ResourceGroup) Metas() []types.MetaPreview {
	if g.Content.State != Ready {
		return nil
	}
	return g.Content.Value.Metas
}

// CatalogGroup holds one addon catalog. Only meta lists are accepted; an
// empty list is reported as ErrEmptyContent.
type CatalogGroup struct {
	Req     types.ResourceRequest         `json:"request"`
	Content Loadable[[]types.MetaPreview] `json:"content"`
}

// NewCatalogGroup returns a loading group for req.
func NewCatalogGroup(req types.ResourceRequest) CatalogGroup {
	return CatalogGroup{Req: req}
}

// Request implements Group.
func (g CatalogGroup) Request() types.ResourceRequest {
	return g.Req
}

// Update implements Group.
func (g CatalogGroup) Update(resp *types.ResourceResponse, err error) CatalogGroup {
	switch {
	case err != nil:
		g.Content = NewFailed[[]types.MetaPreview](err)
	case resp == nil || resp.Metas == nil:
		g.Content = NewFailed[[]types.MetaPreview](ErrUnexpectedResponse)
	case len(resp.Metas) == 0:
		g.Content = NewFailed[[]types.MetaPreview](ErrEmptyContent)
	default:
		g.Content = NewReady(resp.Metas)
	}
	return g
}
