package transport

import (
	"context"
	"strings"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/types"
)

// HTTP is the current addon protocol.
type HTTP struct {
	env          env.Environment
	transportURL string
}

var _ Transport = (*HTTP)(nil)

// NewHTTP creates an HTTP transport for the addon at transportURL.
func NewHTTP(e env.Environment, transportURL string) *HTTP {
	return &HTTP{env: e, transportURL: transportURL}
}

// Get fetches ref. The URL is the transport URL with ManifestPath replaced
// by the resource path.
func (t *HTTP) Get(ctx context.Context, ref types.ResourceRef) (*types.ResourceResponse, error) {
	req, err := env.NewGetRequest(t.ResourceURL(ref))
	if err != nil {
		return nil, err
	}
	resp, err := env.FetchJSON[types.ResourceResponse](ctx, t.env, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Manifest fetches the manifest from the transport URL itself.
func (t *HTTP) Manifest(ctx context.Context) (*types.Manifest, error) {
	req, err := env.NewGetRequest(t.transportURL)
	if err != nil {
		return nil, err
	}
	m, err := env.FetchJSON[types.Manifest](ctx, t.env, req)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ResourceURL returns the URL Get would fetch for ref.
func (t *HTTP) ResourceURL(ref types.ResourceRef) string {
	return strings.Replace(t.transportURL, ManifestPath, ref.String(), 1)
}
