package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/mediacore/internal/aggr"
	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/models"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/transport"
	"github.com/roach88/mediacore/internal/types"
)

// RoundOptions holds the flags shared by commands that run an aggregation
// round.
type RoundOptions struct {
	*RootOptions
	Timeout     time.Duration // how long to wait for the round to settle
	Concurrency int           // manifest fetches in flight
	MetricsAddr string        // serve Prometheus metrics while the round runs
}

func addRoundFlags(cmd *cobra.Command, opts *RoundOptions) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "give up waiting for addons after this long")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "manifest fetches in flight")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

// AddonFailure reports an addon that could not be installed.
type AddonFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// GroupResult summarizes one aggregation group.
type GroupResult struct {
	Addon   string              `json:"addon"`
	Path    string              `json:"path"`
	State   string              `json:"state"`
	Count   int                 `json:"count"`
	Error   string              `json:"error,omitempty"`
	Metas   []types.MetaPreview `json:"metas,omitempty"`
	Streams []types.Stream      `json:"streams,omitempty"`
}

// round is a finished (or timed out) aggregation round.
type round struct {
	rt       *models.Runtime
	failures []AddonFailure
	timedOut bool
}

// runRound installs the configured addons, dispatches start and runs the
// muxer until every group has settled or opts.Timeout elapses.
func runRound(ctx context.Context, s *session, opts *RoundOptions, start msg.Msg) (*round, error) {
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)
	if opts.MetricsAddr != "" {
		stop := serveMetrics(opts.MetricsAddr, reg)
		defer stop()
	}

	r := &round{rt: models.NewRuntime(s.env, engine.WithMetrics(metrics))}

	slog.Info("fetching manifests", "addons", len(s.cfg.Addons))
	results := transport.FetchManifests(ctx, s.env, s.cfg.Addons, opts.Concurrency)
	for i, res := range results {
		if res.Err == nil {
			res.Err = models.ValidateManifest(res.Manifest)
			results[i] = res
		}
		if res.Err != nil {
			slog.Warn("addon unavailable", "url", res.TransportURL, "error", res.Err)
			r.failures = append(r.failures, AddonFailure{URL: res.TransportURL, Error: res.Err.Error()})
		}
	}
	r.rt.Ctx.Profile = types.Profile{
		Addons:       transport.Descriptors(results),
		LastModified: s.env.Now(),
	}
	r.rt.Ctx.Loaded = true

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	r.rt.Muxer.Enqueue(start)
	err := r.rt.Muxer.RunUntil(runCtx, r.rt.Settled)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn("round timed out", "timeout", opts.Timeout, "in_flight", r.rt.Muxer.InFlight())
		r.timedOut = true
	case err != nil:
		return nil, err
	}
	return r, nil
}

// serveMetrics serves reg on addr until the returned stop function is called.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("metrics server shutdown", "error", err)
		}
	}
}

func groupResult(req types.ResourceRequest, state aggr.State, count int, err error) GroupResult {
	g := GroupResult{
		Addon: req.Base,
		Path:  req.Path.String(),
		State: state.String(),
		Count: count,
	}
	if err != nil {
		g.Error = err.Error()
	}
	return g
}

// timeoutError is returned after the results of a timed out round were
// printed.
func timeoutError(opts *RoundOptions) error {
	return NewExitError(ExitFailure, fmt.Sprintf("round did not settle within %s", opts.Timeout))
}
