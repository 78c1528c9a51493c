package aggr

import (
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/types"
)

// Request is a logical, addon-independent request.
// Plan lists the concrete requests for addons, in addon order.
type Request interface {
	Plan(addons []types.Descriptor) []types.ResourceRequest
}

var (
	_ Request     = AllCatalogs{}
	_ Request     = AllCatalogsOfType{}
	_ Request     = AllOfResource{}
	_ Request     = FromAddon{}
	_ msg.Planner = Request(nil)
)

// AllCatalogs requests every catalog of every addon that accepts Extra.
type AllCatalogs struct {
	Extra []types.ExtraProp
}

// Plan implements Request.
func (r AllCatalogs) Plan(addons []types.Descriptor) []types.ResourceRequest {
	return planCatalogs(addons, "", r.Extra)
}

// AllCatalogsOfType is AllCatalogs restricted to one content type.
type AllCatalogsOfType struct {
	Type  string
	Extra []types.ExtraProp
}

// Plan implements Request.
func (r AllCatalogsOfType) Plan(addons []types.Descriptor) []types.ResourceRequest {
	return planCatalogs(addons, r.Type, r.Extra)
}

func planCatalogs(addons []types.Descriptor, typ string, extra []types.ExtraProp) []types.ResourceRequest {
	var out []types.ResourceRequest
	for _, addon := range addons {
		for _, cat := range addon.Manifest.Catalogs {
			if typ != "" && cat.Type != typ {
				continue
			}
			if !cat.AcceptsExtra(extra) {
				continue
			}
			ref := types.NewResourceRef(types.ResourceCatalog, cat.Type, cat.ID).WithExtra(extra...)
			out = append(out, types.NewResourceRequest(addon.TransportURL, ref))
		}
	}
	return out
}

// AllOfResource requests Ref from every addon whose manifest declares it.
type AllOfResource struct {
	Ref types.ResourceRef
}

// Plan implements Request.
func (r AllOfResource) Plan(addons []types.Descriptor) []types.ResourceRequest {
	var out []types.ResourceRequest
	for _, addon := range addons {
		if addon.Manifest.IsSupported(r.Ref) {
			out = append(out, types.NewResourceRequest(addon.TransportURL, r.Ref))
		}
	}
	return out
}

// FromAddon is exactly one request, regardless of installed addons.
type FromAddon struct {
	Request types.ResourceRequest
}

// Plan implements Request.
func (r FromAddon) Plan([]types.Descriptor) []types.ResourceRequest {
	return []types.ResourceRequest{r.Request}
}
