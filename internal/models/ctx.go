package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/transport"
	"github.com/roach88/mediacore/internal/types"
)

var (
	// ErrMissingID is returned for a manifest without an id.
	ErrMissingID = errors.New("manifest has no id")

	// ErrInvalidVersion is returned for a manifest whose version is not semver.
	ErrInvalidVersion = errors.New("manifest version is not valid semver")
)

// Ctx is the profile model.
type Ctx struct {
	Profile types.Profile
	Loaded  bool

	env env.Environment
}

var _ engine.Update = (*Ctx)(nil)

// NewCtx creates a Ctx with an empty profile.
func NewCtx(e env.Environment) *Ctx {
	return &Ctx{env: e}
}

// Update implements engine.Update.
func (c *Ctx) Update(m msg.Msg) engine.Effects {
	switch m := m.(type) {
	case msg.LoadCtx:
		return engine.One(c.loadProfile()).Unchanged()

	case msg.CtxLoaded:
		c.Loaded = true
		switch {
		case m.Err != nil:
			slog.Warn("profile not loaded, using empty profile", "error", m.Err)
			c.Profile = types.Profile{}
		case m.Profile != nil:
			c.Profile = *m.Profile
		default:
			c.Profile = types.Profile{}
		}
		return engine.None()

	case msg.InstallAddon:
		return engine.One(c.fetchManifest(m.TransportURL)).Unchanged()

	case msg.ManifestFetched:
		if m.Err != nil {
			slog.Warn("addon install failed", "url", m.TransportURL, "error", m.Err)
			return engine.None().Unchanged()
		}
		if err := ValidateManifest(m.Manifest); err != nil {
			slog.Warn("addon install rejected", "url", m.TransportURL, "error", err)
			return engine.None().Unchanged()
		}
		c.install(types.Descriptor{Manifest: *m.Manifest, TransportURL: m.TransportURL})
		return engine.One(c.persist())

	case msg.UninstallAddon:
		idx := c.Profile.AddonIndex(m.TransportURL)
		if idx < 0 {
			return engine.None().Unchanged()
		}
		if c.Profile.Addons[idx].Flags.Protected {
			slog.Warn("refusing to uninstall protected addon", "url", m.TransportURL)
			return engine.None().Unchanged()
		}
		c.Profile.Addons = slices.Delete(c.Profile.Addons, idx, idx+1)
		c.Profile.LastModified = c.env.Now()
		return engine.One(c.persist())

	case msg.ProfilePersisted:
		if m.Err != nil {
			slog.Error("profile not persisted", "error", m.Err)
		}
		return engine.None().Unchanged()
	}
	return engine.None().Unchanged()
}

// install appends d, or replaces the addon with the same transport URL.
func (c *Ctx) install(d types.Descriptor) {
	if idx := c.Profile.AddonIndex(d.TransportURL); idx >= 0 {
		d.Flags = c.Profile.Addons[idx].Flags
		c.Profile.Addons[idx] = d
	} else {
		c.Profile.Addons = append(c.Profile.Addons, d)
	}
	c.Profile.LastModified = c.env.Now()
}

func (c *Ctx) loadProfile() engine.Effect {
	e := c.env
	return engine.EffectFunc(func(ctx context.Context) msg.Msg {
		p, err := env.GetValue[types.Profile](ctx, e, types.ProfileStorageKey)
		return msg.NewCtxLoaded(p, err)
	})
}

func (c *Ctx) fetchManifest(transportURL string) engine.Effect {
	e := c.env
	return engine.EffectFunc(func(ctx context.Context) msg.Msg {
		m, err := transport.For(e, transportURL).Manifest(ctx)
		return msg.NewManifestFetched(transportURL, m, err)
	})
}

// persist snapshots the profile now; the effect never reads the live model.
func (c *Ctx) persist() engine.Effect {
	e := c.env
	snapshot := c.Profile
	snapshot.Addons = slices.Clone(c.Profile.Addons)
	return engine.EffectFunc(func(ctx context.Context) msg.Msg {
		err := env.SetValue(ctx, e, types.ProfileStorageKey, &snapshot)
		return msg.NewProfilePersisted(err)
	})
}

// ValidateManifest checks the fields an installed addon must have.
func ValidateManifest(m *types.Manifest) error {
	if m == nil || m.ID == "" {
		return ErrMissingID
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidVersion, m.Version, err)
	}
	return nil
}
