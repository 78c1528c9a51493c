package aggr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mediacore/internal/types"
)

func catalogAddon(url string, catalogs ...types.ManifestCatalog) types.Descriptor {
	return types.Descriptor{
		TransportURL: url,
		Manifest: types.Manifest{
			ID:        url,
			Version:   "1.0.0",
			Types:     []string{"movie", "series"},
			Resources: []types.ManifestResource{{Name: types.ResourceCatalog}},
			Catalogs:  catalogs,
		},
	}
}

func TestAllCatalogs_Plan(t *testing.T) {
	addons := []types.Descriptor{
		catalogAddon("https://a.example/manifest.json",
			types.ManifestCatalog{Type: "movie", ID: "top"},
			types.ManifestCatalog{Type: "series", ID: "top"},
		),
		catalogAddon("https://b.example/manifest.json",
			types.ManifestCatalog{Type: "movie", ID: "popular"},
			types.ManifestCatalog{Type: "movie", ID: "search", Extra: []types.ManifestExtra{{Name: "search", IsRequired: true}}},
		),
	}

	planned := AllCatalogs{}.Plan(addons)
	require.Len(t, planned, 3, "catalogs with unmet required extra are skipped")
	assert.Equal(t, "https://a.example/manifest.json/catalog/movie/top.json", planned[0].String())
	assert.Equal(t, "https://a.example/manifest.json/catalog/series/top.json", planned[1].String())
	assert.Equal(t, "https://b.example/manifest.json/catalog/movie/popular.json", planned[2].String())
}

func TestAllCatalogs_PlanWithExtra(t *testing.T) {
	addons := []types.Descriptor{
		catalogAddon("a",
			types.ManifestCatalog{Type: "movie", ID: "top"},
			types.ManifestCatalog{Type: "movie", ID: "search", ExtraRequired: []string{"search"}},
		),
	}
	extra := []types.ExtraProp{{Name: "search", Value: "matrix"}}

	planned := AllCatalogs{Extra: extra}.Plan(addons)
	require.Len(t, planned, 1, "catalogs not supporting the extra are skipped")
	assert.Equal(t, "search", planned[0].Path.ID)
	assert.Equal(t, extra, planned[0].Path.Extra)
}

func TestAllCatalogsOfType_Plan(t *testing.T) {
	addons := []types.Descriptor{
		catalogAddon("a",
			types.ManifestCatalog{Type: "movie", ID: "top"},
			types.ManifestCatalog{Type: "series", ID: "top"},
		),
	}

	planned := AllCatalogsOfType{Type: "series"}.Plan(addons)
	require.Len(t, planned, 1)
	assert.Equal(t, "series", planned[0].Path.Type)
}

func TestAllOfResource_Plan(t *testing.T) {
	streams := types.Descriptor{
		TransportURL: "s",
		Manifest: types.Manifest{
			Types:      []string{"movie"},
			Resources:  []types.ManifestResource{{Name: types.ResourceStream}},
			IDPrefixes: []string{"tt"},
		},
	}
	other := types.Descriptor{
		TransportURL: "o",
		Manifest: types.Manifest{
			Types:      []string{"movie"},
			Resources:  []types.ManifestResource{{Name: types.ResourceStream}},
			IDPrefixes: []string{"yt:"},
		},
	}
	ref := types.NewResourceRef(types.ResourceStream, "movie", "tt1")

	planned := AllOfResource{Ref: ref}.Plan([]types.Descriptor{streams, other})
	require.Len(t, planned, 1)
	assert.Equal(t, "s", planned[0].Base)
	assert.True(t, planned[0].Path.Equal(ref))
}

func TestFromAddon_Plan(t *testing.T) {
	r := types.NewResourceRequest("x", types.NewResourceRef(types.ResourceMeta, "movie", "tt1"))
	planned := FromAddon{Request: r}.Plan(nil)
	require.Len(t, planned, 1)
	assert.True(t, planned[0].Equal(r))
}
