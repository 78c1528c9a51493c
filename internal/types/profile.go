package types

import (
	"slices"
	"time"
)

// ProfileStorageKey is the storage key the profile is persisted under.
const ProfileStorageKey = "profile"

// Profile is the persisted user state the runtime needs: installed addons.
type Profile struct {
	Addons       []Descriptor `json:"addons"`
	LastModified time.Time    `json:"lastModified"`
}

// AddonIndex returns the index of the addon installed from transportURL, or -1.
func (p *Profile) AddonIndex(transportURL string) int {
	return slices.IndexFunc(p.Addons, func(d Descriptor) bool {
		return d.TransportURL == transportURL
	})
}
