package transport

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/types"
)

// ManifestResult is the outcome of fetching one addon's manifest.
type ManifestResult struct {
	TransportURL string
	Manifest     *types.Manifest
	Err          error
}

// FetchManifests fetches the manifests of all urls concurrently, at most
// limit at a time (limit <= 0 means unbounded). Results keep the order of
// urls. A failing addon is reported in its own result and does not stop the
// others.
func FetchManifests(ctx context.Context, e env.Environment, urls []string, limit int) []ManifestResult {
	results := make([]ManifestResult, len(urls))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, u := range urls {
		g.Go(func() error {
			m, err := For(e, u).Manifest(ctx)
			results[i] = ManifestResult{TransportURL: u, Manifest: m, Err: err}
			return nil
		})
	}
	// Goroutines report failures in results; Wait only joins them
	g.Wait()

	return results
}

// Descriptors returns descriptors for the successful results, in order.
func Descriptors(results []ManifestResult) []types.Descriptor {
	var out []types.Descriptor
	for _, r := range results {
		if r.Err != nil || r.Manifest == nil {
			continue
		}
		out = append(out, types.Descriptor{Manifest: *r.Manifest, TransportURL: r.TransportURL})
	}
	return out
}
