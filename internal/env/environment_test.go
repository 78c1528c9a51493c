package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewGetRequest(t *testing.T) {
	req, err := NewGetRequest("https://addon.example/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://addon.example/manifest.json", req.URL)
	assert.Nil(t, req.Body)
}

func TestNewGetRequest_Invalid(t *testing.T) {
	for _, raw := range []string{
		"://missing-scheme",
		"ftp://addon.example/manifest.json",
		"https:///manifest.json",
		"not a url",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := NewGetRequest(raw)
			require.Error(t, err)
			assert.True(t, IsInvalidRequest(err), "got %v", err)
		})
	}
}

func TestValue_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	v := sample{Name: "x", Count: 3}
	require.NoError(t, SetValue(ctx, s, "k", &v))

	got, err := GetValue[sample](ctx, s, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v, *got)

	require.NoError(t, SetValue[sample](ctx, s, "k", nil))
	got, err = GetValue[sample](ctx, s, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, s.Snapshot())
}

func TestGetValue_Missing(t *testing.T) {
	got, err := GetValue[sample](context.Background(), NewMemoryStorage(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetValue_DecodeError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	raw := `{"name": 42}`
	require.NoError(t, s.SetRaw(ctx, "k", &raw))

	got, err := GetValue[sample](ctx, s, "k")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, IsStorageDecodeError(err))
	assert.Contains(t, err.Error(), "key k")
}

func TestMemoryStorage_Reset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	v := "1"
	require.NoError(t, s.SetRaw(ctx, "a", &v))
	require.NoError(t, s.SetRaw(ctx, "b", &v))
	assert.Len(t, s.Snapshot(), 2)

	s.Reset()
	_, ok, err := s.GetRaw(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
