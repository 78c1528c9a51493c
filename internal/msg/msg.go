// Package msg defines the messages that drive the update loop.
//
// A Msg is either External (an action triggered by a user or the host
// system) or Internal (the result of a completed effect). Internal messages
// are only ever produced by effects; they close the effect -> reducer loop.
package msg

import (
	"github.com/roach88/mediacore/internal/types"
)

// Kind is the top-level branch of a message.
type Kind int

const (
	// KindExternal marks actions triggered outside the runtime.
	KindExternal Kind = iota + 1
	// KindInternal marks results produced by completed effects.
	KindInternal
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindExternal:
		return "external"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Msg is a message dispatched to containers.
type Msg interface {
	// Kind reports the branch of the message.
	Kind() Kind
	// Name identifies the concrete message in logs and traces.
	Name() string
}

// Planner expands one logical content request into concrete resource
// requests, one per addon able to serve it, in addon order.
// Implemented by the aggregation requests in internal/aggr.
type Planner interface {
	Plan(addons []types.Descriptor) []types.ResourceRequest
}

type external struct{}

func (external) Kind() Kind { return KindExternal }

type internal struct{}

func (internal) Kind() Kind { return KindInternal }

// LoadCtx asks the profile model to load the persisted profile.
type LoadCtx struct{ external }

func (LoadCtx) Name() string { return "LoadCtx" }

// InstallAddon asks the profile model to fetch a manifest and install the addon.
type InstallAddon struct {
	external
	TransportURL string
}

func (InstallAddon) Name() string { return "InstallAddon" }

// UninstallAddon removes an installed addon.
type UninstallAddon struct {
	external
	TransportURL string
}

func (UninstallAddon) Name() string { return "UninstallAddon" }

// LoadCatalogs starts an aggregation round for Request.
type LoadCatalogs struct {
	external
	Request Planner
}

func (LoadCatalogs) Name() string { return "LoadCatalogs" }

// LoadStreams asks every addon serving Ref for streams.
type LoadStreams struct {
	external
	Ref types.ResourceRef
}

func (LoadStreams) Name() string { return "LoadStreams" }

// Unload clears aggregation state.
type Unload struct{ external }

func (Unload) Name() string { return "Unload" }

// AddonResponse carries the outcome of one resource fetch together with the
// request that produced it. Exactly one of Response and Err is set.
type AddonResponse struct {
	internal
	Request  types.ResourceRequest
	Response *types.ResourceResponse
	Err      error
}

func (AddonResponse) Name() string { return "AddonResponse" }

// CtxLoaded carries the profile loaded from storage. Profile is nil when
// nothing was stored.
type CtxLoaded struct {
	internal
	Profile *types.Profile
	Err     error
}

func (CtxLoaded) Name() string { return "CtxLoaded" }

// ManifestFetched carries the outcome of a manifest fetch for an install.
type ManifestFetched struct {
	internal
	TransportURL string
	Manifest     *types.Manifest
	Err          error
}

func (ManifestFetched) Name() string { return "ManifestFetched" }

// ProfilePersisted reports the outcome of saving the profile.
type ProfilePersisted struct {
	internal
	Err error
}

func (ProfilePersisted) Name() string { return "ProfilePersisted" }

// NewInstallAddon creates an InstallAddon message.
func NewInstallAddon(transportURL string) InstallAddon {
	return InstallAddon{TransportURL: transportURL}
}

// NewUninstallAddon creates an UninstallAddon message.
func NewUninstallAddon(transportURL string) UninstallAddon {
	return UninstallAddon{TransportURL: transportURL}
}

// NewLoadCatalogs creates a LoadCatalogs message.
func NewLoadCatalogs(req Planner) LoadCatalogs {
	return LoadCatalogs{Request: req}
}

// NewLoadStreams creates a LoadStreams message.
func NewLoadStreams(ref types.ResourceRef) LoadStreams {
	return LoadStreams{Ref: ref}
}

// NewAddonResponse creates an AddonResponse message.
func NewAddonResponse(req types.ResourceRequest, resp *types.ResourceResponse, err error) AddonResponse {
	return AddonResponse{Request: req, Response: resp, Err: err}
}

// NewCtxLoaded creates a CtxLoaded message.
func NewCtxLoaded(p *types.Profile, err error) CtxLoaded {
	return CtxLoaded{Profile: p, Err: err}
}

// NewManifestFetched creates a ManifestFetched message.
func NewManifestFetched(transportURL string, m *types.Manifest, err error) ManifestFetched {
	return ManifestFetched{TransportURL: transportURL, Manifest: m, Err: err}
}

// NewProfilePersisted creates a ProfilePersisted message.
func NewProfilePersisted(err error) ProfilePersisted {
	return ProfilePersisted{Err: err}
}
