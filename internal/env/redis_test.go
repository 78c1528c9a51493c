package env

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage_Miniredis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewRedisStorage(mr.Addr(), "", 0, "mediacore:")
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Ping(ctx))

	_, ok, err := s.GetRaw(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	v := sample{Name: "redis", Count: 1}
	require.NoError(t, SetValue(ctx, s, "k", &v))
	raw, err := mr.Get("mediacore:k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"redis","count":1}`, raw)

	got, err := GetValue[sample](ctx, s, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v, *got)

	require.NoError(t, SetValue[sample](ctx, s, "k", nil))
	assert.False(t, mr.Exists("mediacore:k"))
	got, err = GetValue[sample](ctx, s, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStorage_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	a := NewRedisStorage(mr.Addr(), "", 0, "a:")
	b := NewRedisStorage(mr.Addr(), "", 0, "b:")
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})

	one, two := "1", "2"
	require.NoError(t, a.SetRaw(ctx, "profile", &one))
	require.NoError(t, b.SetRaw(ctx, "profile", &two))
	assert.True(t, mr.Exists("a:profile"))
	assert.True(t, mr.Exists("b:profile"))

	got, ok, err := a.GetRaw(ctx, "profile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", got)

	require.NoError(t, a.SetRaw(ctx, "profile", nil))
	_, ok, err = a.GetRaw(ctx, "profile")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err = b.GetRaw(ctx, "profile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", got)
}

func TestRedisStorage_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := NewRedisStorage(addr, "", 0, "")
	t.Cleanup(func() { s.Close() })
	require.Error(t, s.Ping(context.Background()))
	_, _, err := s.GetRaw(context.Background(), "k")
	require.Error(t, err)
}

// Set MEDIACORE_TEST_REDIS_ADDR (e.g. localhost:6379) to run against a real server.
func TestRedisStorage_RoundTrip(t *testing.T) {
	addr := os.Getenv("MEDIACORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MEDIACORE_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	s := NewRedisStorage(addr, "", 0, "mediacore-test:")
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Ping(ctx))

	v := sample{Name: "redis", Count: 1}
	require.NoError(t, SetValue(ctx, s, "k", &v))
	got, err := GetValue[sample](ctx, s, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v, *got)

	require.NoError(t, SetValue[sample](ctx, s, "k", nil))
	got, err = GetValue[sample](ctx, s, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}
