package types

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Resource names understood by the addon protocol.
const (
	ResourceCatalog   = "catalog"
	ResourceMeta      = "meta"
	ResourceStream    = "stream"
	ResourceSubtitles = "subtitles"
)

// ExtraProp is a single extra parameter of a resource reference
// (e.g. search=batman, skip=100, genre=Drama).
type ExtraProp struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResourceRef names a single fetchable resource of an addon.
type ResourceRef struct {
	Resource string      `json:"resource"`
	Type     string      `json:"type"`
	ID       string      `json:"id"`
	Extra    []ExtraProp `json:"extra,omitempty"`
}

// NewResourceRef creates a ResourceRef without extra parameters.
func NewResourceRef(resource, typ, id string) ResourceRef {
	return ResourceRef{Resource: resource, Type: typ, ID: id}
}

// WithExtra returns a copy of the reference carrying the given extra props.
// The receiver is not modified.
func (r ResourceRef) WithExtra(extra ...ExtraProp) ResourceRef {
	r.Extra = slices.Clone(extra)
	return r
}

// String renders the reference as the addon URL path:
//
//	/catalog/movie/top.json
//	/catalog/movie/top/genre=Drama&skip=100.json
//
// Path segments are escaped; extra props keep their declaration order.
func (r ResourceRef) String() string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(url.PathEscape(r.Resource))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(r.Type))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(r.ID))
	if len(r.Extra) > 0 {
		b.WriteByte('/')
		b.WriteString(EncodeExtra(r.Extra))
	}
	b.WriteString(".json")
	return b.String()
}

// Equal reports whether two references name the same resource.
// Extra props are compared in order.
func (r ResourceRef) Equal(other ResourceRef) bool {
	return r.Resource == other.Resource &&
		r.Type == other.Type &&
		r.ID == other.ID &&
		slices.Equal(r.Extra, other.Extra)
}

// ExtraValue returns the first value of the named extra prop.
func (r ResourceRef) ExtraValue(name string) (string, bool) {
	for _, e := range r.Extra {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// EncodeExtra query-encodes extra props preserving their order.
func EncodeExtra(extra []ExtraProp) string {
	parts := make([]string, len(extra))
	for i, e := range extra {
		parts[i] = url.QueryEscape(e.Name) + "=" + url.QueryEscape(e.Value)
	}
	return strings.Join(parts, "&")
}

// ResourceRequest pairs a resource reference with the addon that serves it.
// Base is the addon transport URL.
type ResourceRequest struct {
	Base string      `json:"base"`
	Path ResourceRef `json:"path"`
}

// NewResourceRequest creates a ResourceRequest.
func NewResourceRequest(base string, path ResourceRef) ResourceRequest {
	return ResourceRequest{Base: base, Path: path}
}

// Equal reports whether both requests target the same addon and resource.
// This is the correlation key used by the aggregation engine.
func (r ResourceRequest) Equal(other ResourceRequest) bool {
	return r.Base == other.Base && r.Path.Equal(other.Path)
}

// String renders the request for logs.
func (r ResourceRequest) String() string {
	return fmt.Sprintf("%s%s", r.Base, r.Path.String())
}
