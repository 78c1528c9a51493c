package transport

import (
	"context"
	"strings"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/types"
)

const (
	// ManifestPath is the suffix of every HTTP transport URL.
	ManifestPath = "/manifest.json"

	// LegacyPath marks a legacy JSON-RPC endpoint.
	LegacyPath = "/stremio/v1"
)

// Transport fetches an addon's manifest and resources.
type Transport interface {
	Get(ctx context.Context, ref types.ResourceRef) (*types.ResourceResponse, error)
	Manifest(ctx context.Context) (*types.Manifest, error)
}

// For returns the transport serving transportURL: Legacy when the URL points
// at a legacy endpoint (with or without /manifest.json), HTTP otherwise.
func For(e env.Environment, transportURL string) Transport {
	if IsLegacy(transportURL) {
		return NewLegacy(e, transportURL)
	}
	return NewHTTP(e, transportURL)
}

// IsLegacy reports whether transportURL is a legacy endpoint.
func IsLegacy(transportURL string) bool {
	return strings.HasSuffix(strings.TrimSuffix(transportURL, ManifestPath), LegacyPath)
}
