package models

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mediacore/internal/aggr"
	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/testenv"
	"github.com/roach88/mediacore/internal/types"
)

const (
	cinemeta = "https://cinemeta.example/manifest.json"
	torrents = "https://torrents.example/manifest.json"
)

var routes = map[string]testenv.Reply{
	cinemeta: {Body: `{
		"id": "org.cinemeta", "version": "3.0.1", "name": "Cinemeta",
		"types": ["movie", "series"],
		"resources": ["catalog", "meta"],
		"catalogs": [{"type": "movie", "id": "top"}, {"type": "series", "id": "top"}]
	}`},
	torrents: {Body: `{
		"id": "org.torrents", "version": "1.2.0", "name": "Torrents",
		"types": ["movie"],
		"resources": ["stream"],
		"idPrefixes": ["tt"],
		"catalogs": []
	}`},
	"https://cinemeta.example/catalog/movie/top.json":  {Body: `{"metas":[{"id":"tt1","type":"movie","name":"One"}]}`},
	"https://cinemeta.example/catalog/series/top.json": {Body: `{"metas":[]}`},
	"https://torrents.example/stream/movie/tt1.json":   {Body: `{"streams":[{"infoHash":"abc","fileIdx":0}]}`},
}

func newTestRuntime(t *testing.T) (*Runtime, *testenv.Env) {
	t.Helper()
	e := testenv.New(testenv.WithResponder(testenv.Static(routes)))
	rt := NewRuntime(e,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithIDGenerator(engine.NewSequentialGenerator("")),
	)
	return rt, e
}

// settle alternates between the loop and the executor until both are quiet.
func settle(rt *Runtime, e *testenv.Env) {
	for {
		for rt.Muxer.Step() {
		}
		if e.RunPending() == 0 && rt.Muxer.Pending() == 0 {
			return
		}
	}
}

func dispatch(rt *Runtime, e *testenv.Env, m msg.Msg) {
	rt.Muxer.Dispatch(m)
	settle(rt, e)
}

func TestCtx_LoadEmptyProfile(t *testing.T) {
	rt, e := newTestRuntime(t)

	dispatch(rt, e, msg.LoadCtx{})

	assert.True(t, rt.Ctx.Loaded)
	assert.Empty(t, rt.Ctx.Profile.Addons)
}

func TestCtx_LoadStoredProfile(t *testing.T) {
	rt, e := newTestRuntime(t)
	stored := types.Profile{Addons: []types.Descriptor{{TransportURL: cinemeta, Manifest: types.Manifest{ID: "org.cinemeta"}}}}
	require.NoError(t, env.SetValue(context.Background(), e, types.ProfileStorageKey, &stored))

	dispatch(rt, e, msg.LoadCtx{})

	require.Len(t, rt.Ctx.Profile.Addons, 1)
	assert.Equal(t, "org.cinemeta", rt.Ctx.Profile.Addons[0].Manifest.ID)
}

func TestCtx_LoadCorruptProfile(t *testing.T) {
	rt, e := newTestRuntime(t)
	bad := "{not json"
	require.NoError(t, e.SetRaw(context.Background(), types.ProfileStorageKey, &bad))

	dispatch(rt, e, msg.LoadCtx{})

	assert.True(t, rt.Ctx.Loaded)
	assert.Empty(t, rt.Ctx.Profile.Addons)
}

func TestCtx_InstallAddonPersists(t *testing.T) {
	rt, e := newTestRuntime(t)
	e.Clock().Advance(time.Hour)

	dispatch(rt, e, msg.NewInstallAddon(cinemeta))

	require.Len(t, rt.Ctx.Profile.Addons, 1)
	assert.Equal(t, "Cinemeta", rt.Ctx.Profile.Addons[0].Manifest.Name)
	assert.Equal(t, testenv.DefaultStart.Add(time.Hour), rt.Ctx.Profile.LastModified)

	saved, err := env.GetValue[types.Profile](context.Background(), e, types.ProfileStorageKey)
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Len(t, saved.Addons, 1)
	assert.Equal(t, cinemeta, saved.Addons[0].TransportURL)
}

func TestCtx_ReinstallReplaces(t *testing.T) {
	rt, e := newTestRuntime(t)

	dispatch(rt, e, msg.NewInstallAddon(cinemeta))
	dispatch(rt, e, msg.NewInstallAddon(torrents))
	dispatch(rt, e, msg.NewInstallAddon(cinemeta))

	require.Len(t, rt.Ctx.Profile.Addons, 2)
	assert.Equal(t, cinemeta, rt.Ctx.Profile.Addons[0].TransportURL)
	assert.Equal(t, torrents, rt.Ctx.Profile.Addons[1].TransportURL)
}

func TestCtx_InstallRejectsBadManifest(t *testing.T) {
	rt, e := newTestRuntime(t)
	e.SetResponder(testenv.Static(map[string]testenv.Reply{
		"https://noversion.example/manifest.json": {Body: `{"id":"x","version":"latest","name":"X"}`},
		"https://noid.example/manifest.json":      {Body: `{"version":"1.0.0","name":"X"}`},
	}))

	dispatch(rt, e, msg.NewInstallAddon("https://noversion.example/manifest.json"))
	dispatch(rt, e, msg.NewInstallAddon("https://noid.example/manifest.json"))
	dispatch(rt, e, msg.NewInstallAddon("https://down.example/manifest.json"))

	assert.Empty(t, rt.Ctx.Profile.Addons)
	assert.Empty(t, e.Storage().Snapshot(), "nothing persisted")
}

func TestValidateManifest(t *testing.T) {
	assert.ErrorIs(t, ValidateManifest(nil), ErrMissingID)
	assert.ErrorIs(t, ValidateManifest(&types.Manifest{Version: "1.0.0"}), ErrMissingID)
	assert.ErrorIs(t, ValidateManifest(&types.Manifest{ID: "a", Version: "v1"}), ErrInvalidVersion)
	assert.NoError(t, ValidateManifest(&types.Manifest{ID: "a", Version: "1.0.0-beta.1"}))
}

func TestCtx_Uninstall(t *testing.T) {
	rt, e := newTestRuntime(t)
	dispatch(rt, e, msg.NewInstallAddon(cinemeta))

	effs := rt.Ctx.Update(msg.NewUninstallAddon("https://unknown.example/manifest.json"))
	assert.False(t, effs.Changed())
	assert.Zero(t, effs.Len())

	dispatch(rt, e, msg.NewUninstallAddon(cinemeta))
	assert.Empty(t, rt.Ctx.Profile.Addons)

	saved, err := env.GetValue[types.Profile](context.Background(), e, types.ProfileStorageKey)
	require.NoError(t, err)
	assert.Empty(t, saved.Addons)
}

func TestCtx_UninstallProtected(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.Ctx.Profile.Addons = []types.Descriptor{{TransportURL: cinemeta, Flags: types.DescriptorFlags{Protected: true}}}

	effs := rt.Ctx.Update(msg.NewUninstallAddon(cinemeta))
	assert.False(t, effs.Changed())
	assert.Len(t, rt.Ctx.Profile.Addons, 1)
}

func TestCatalogs_Round(t *testing.T) {
	rt, e := newTestRuntime(t)
	dispatch(rt, e, msg.NewInstallAddon(cinemeta))
	dispatch(rt, e, msg.NewInstallAddon(torrents))

	effs := rt.Muxer.Dispatch(msg.NewLoadCatalogs(aggr.AllCatalogs{}))
	assert.Equal(t, 2, effs.Len(), "torrents declares no catalogs")
	require.Len(t, rt.Catalogs.Groups, 2)
	assert.False(t, rt.Catalogs.Settled())
	assert.False(t, rt.Settled())

	settle(rt, e)

	assert.True(t, rt.Settled())
	assert.Equal(t, aggr.Ready, rt.Catalogs.Groups[0].Content.State)
	assert.Equal(t, "One", rt.Catalogs.Groups[0].Content.Value[0].Name)
	assert.ErrorIs(t, rt.Catalogs.Groups[1].Content.Err, aggr.ErrEmptyContent)
}

func TestCatalogs_StaleResponseIgnored(t *testing.T) {
	rt, e := newTestRuntime(t)
	dispatch(rt, e, msg.NewInstallAddon(cinemeta))

	rt.Muxer.Dispatch(msg.NewLoadCatalogs(aggr.AllCatalogs{}))
	// A new round replaces the groups before the first round's effects run
	rt.Muxer.Dispatch(msg.NewLoadCatalogs(aggr.AllCatalogsOfType{Type: "series"}))
	require.Len(t, rt.Catalogs.Groups, 1)

	settle(rt, e)

	require.Len(t, rt.Catalogs.Groups, 1)
	assert.Equal(t, "series", rt.Catalogs.Groups[0].Req.Path.Type)
	assert.Equal(t, aggr.Failed, rt.Catalogs.Groups[0].Content.State)
}

func TestCatalogs_Unload(t *testing.T) {
	c := NewCatalogs(testenv.New())
	ctx := NewCtx(testenv.New())

	assert.False(t, c.UpdateWithCtx(msg.Unload{}, ctx).Changed(), "nothing to unload")

	c.UpdateWithCtx(msg.NewLoadCatalogs(aggr.AllCatalogs{}), ctx)
	assert.True(t, c.UpdateWithCtx(msg.Unload{}, ctx).Changed())
	assert.Nil(t, c.Request)
	assert.Nil(t, c.Groups)
}

func TestStreams_Round(t *testing.T) {
	rt, e := newTestRuntime(t)
	dispatch(rt, e, msg.NewInstallAddon(cinemeta))
	dispatch(rt, e, msg.NewInstallAddon(torrents))

	dispatch(rt, e, msg.NewLoadStreams(types.NewResourceRef(types.ResourceStream, "movie", "tt1")))

	require.Len(t, rt.Streams.Groups, 1, "only torrents serves streams")
	assert.Equal(t, torrents, rt.Streams.Groups[0].Req.Base)
	streams := rt.Streams.All()
	require.Len(t, streams, 1)
	assert.Equal(t, "abc", streams[0].InfoHash)
	require.NotNil(t, streams[0].FileIdx)
	assert.Equal(t, 0, *streams[0].FileIdx)
	assert.Empty(t, rt.Catalogs.Groups, "stream responses never reach catalog groups")
}
