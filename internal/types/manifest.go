package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Manifest describes an addon and the resources it can serve.
type Manifest struct {
	ID          string             `json:"id"`
	Version     string             `json:"version"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Logo        string             `json:"logo,omitempty"`
	Types       []string           `json:"types"`
	Resources   []ManifestResource `json:"resources"`
	IDPrefixes  []string           `json:"idPrefixes"`
	Catalogs    []ManifestCatalog  `json:"catalogs"`
}

// ManifestResource declares a supported resource. On the wire it is either a
// bare string ("stream") or an object with its own types and id prefixes.
//
// A nil Types or IDPrefixes falls back to the manifest-level value, while an
// empty one matches nothing, so both fields are always written in the full
// form.
type ManifestResource struct {
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	IDPrefixes []string `json:"idPrefixes"`
}

// UnmarshalJSON accepts both the short and the full resource form.
func (r *ManifestResource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = ManifestResource{Name: name}
		return nil
	}

	type full ManifestResource
	var f full
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("manifest resource: %w", err)
	}
	if f.Name == "" {
		return fmt.Errorf("manifest resource: name is required")
	}
	*r = ManifestResource(f)
	return nil
}

// MarshalJSON writes the short form when the resource has no overrides.
func (r ManifestResource) MarshalJSON() ([]byte, error) {
	if r.Types == nil && r.IDPrefixes == nil {
		return json.Marshal(r.Name)
	}
	type full ManifestResource
	return json.Marshal(full(r))
}

// ManifestCatalog declares one catalog of an addon.
type ManifestCatalog struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Name  string          `json:"name,omitempty"`
	Extra []ManifestExtra `json:"extra,omitempty"`

	// Older manifests list extras as plain names.
	ExtraSupported []string `json:"extraSupported,omitempty"`
	ExtraRequired  []string `json:"extraRequired,omitempty"`
}

// ManifestExtra declares an extra parameter accepted by a catalog.
type ManifestExtra struct {
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// RequiredExtra lists the extra names the catalog cannot be fetched without.
func (c ManifestCatalog) RequiredExtra() []string {
	var names []string
	for _, e := range c.Extra {
		if e.IsRequired {
			names = append(names, e.Name)
		}
	}
	for _, n := range c.ExtraRequired {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

// SupportsExtra reports whether the catalog accepts the named extra.
func (c ManifestCatalog) SupportsExtra(name string) bool {
	for _, e := range c.Extra {
		if e.Name == name {
			return true
		}
	}
	return slices.Contains(c.ExtraSupported, name) || slices.Contains(c.ExtraRequired, name)
}

// AcceptsExtra reports whether a request with the given extra props can be
// served by the catalog: every required extra is present and every given
// extra is supported.
func (c ManifestCatalog) AcceptsExtra(extra []ExtraProp) bool {
	for _, req := range c.RequiredExtra() {
		if !slices.ContainsFunc(extra, func(e ExtraProp) bool { return e.Name == req }) {
			return false
		}
	}
	for _, e := range extra {
		if !c.SupportsExtra(e.Name) {
			return false
		}
	}
	return true
}

// IsSupported reports whether the manifest declares the referenced resource.
//
// Catalogs are matched by (type, id) against the declared catalogs.
// Other resources are matched by name, then by type and id prefix, where the
// resource-level types/prefixes take precedence over the manifest-level ones.
func (m Manifest) IsSupported(ref ResourceRef) bool {
	if ref.Resource == ResourceCatalog {
		return slices.ContainsFunc(m.Catalogs, func(c ManifestCatalog) bool {
			return c.Type == ref.Type && c.ID == ref.ID
		})
	}

	idx := slices.IndexFunc(m.Resources, func(r ManifestResource) bool {
		return r.Name == ref.Resource
	})
	if idx < 0 {
		return false
	}
	res := m.Resources[idx]

	types := m.Types
	if res.Types != nil {
		types = res.Types
	}
	if !slices.Contains(types, ref.Type) {
		return false
	}

	prefixes := m.IDPrefixes
	if res.IDPrefixes != nil {
		prefixes = res.IDPrefixes
	}
	if prefixes == nil {
		return true
	}
	return slices.ContainsFunc(prefixes, func(p string) bool {
		return strings.HasPrefix(ref.ID, p)
	})
}

// Descriptor is an installed addon: its manifest and where to reach it.
type Descriptor struct {
	Manifest     Manifest        `json:"manifest"`
	TransportURL string          `json:"transportUrl"`
	Flags        DescriptorFlags `json:"flags"`
}

// DescriptorFlags carry install-time flags of an addon.
type DescriptorFlags struct {
	Official  bool `json:"official"`
	Protected bool `json:"protected"`
}
