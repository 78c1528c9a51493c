package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/types"
)

// openTestStore creates a store in a temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	v := `"kept"`
	require.NoError(t, s1.SetRaw(ctx, "k", &v))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, ok, err := s2.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"kept"`, got)
}

func TestStore_SetGetDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetRaw(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	v1, v2 := "1", "2"
	require.NoError(t, s.SetRaw(ctx, "k", &v1))
	require.NoError(t, s.SetRaw(ctx, "k", &v2))

	got, ok, err := s.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", got, "last write wins")

	require.NoError(t, s.SetRaw(ctx, "k", nil))
	_, ok, err = s.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Keys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	v := "x"
	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, s.SetRaw(ctx, k, &v))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	v := "x"
	require.NoError(t, s.SetRaw(context.Background(), "k", &v))
	got, ok, err := s.GetRaw(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", got)
}

func TestStore_ProfileRoundTripThroughEnvHelpers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	profile := types.Profile{Addons: []types.Descriptor{{
		TransportURL: "https://a.example/manifest.json",
		Manifest:     types.Manifest{ID: "a", Version: "1.0.0", Name: "A"},
	}}}
	require.NoError(t, env.SetValue(ctx, s, types.ProfileStorageKey, &profile))

	got, err := env.GetValue[types.Profile](ctx, s, types.ProfileStorageKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profile.Addons[0].TransportURL, got.Addons[0].TransportURL)
	assert.Equal(t, "A", got.Addons[0].Manifest.Name)

	require.NoError(t, env.SetValue[types.Profile](ctx, s, types.ProfileStorageKey, nil))
	got, err = env.GetValue[types.Profile](ctx, s, types.ProfileStorageKey)
	require.NoError(t, err)
	assert.Nil(t, got)
}
