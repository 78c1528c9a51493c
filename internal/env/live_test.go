package env

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLive_FetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"name":"ok","count":2}`))
	}))
	defer srv.Close()

	l := NewLive(NewMemoryStorage(), WithUserAgent("test-agent"))
	req, err := NewGetRequest(srv.URL + "/manifest.json")
	require.NoError(t, err)

	got, err := FetchJSON[sample](context.Background(), l, req)
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "ok", Count: 2}, got)
}

func TestLive_FetchSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"name":"in","count":1}`, string(body))
		_, _ = w.Write([]byte(`{"name":"out","count":1}`))
	}))
	defer srv.Close()

	l := NewLive(NewMemoryStorage())
	got, err := FetchJSON[sample](context.Background(), l, Request{
		URL:    srv.URL,
		Method: "POST",
		Body:   sample{Name: "in", Count: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "out", got.Name)
}

func TestLive_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLive(NewMemoryStorage()).Fetch(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, ErrCodeStatus, CodeOf(err))
	assert.True(t, IsTransportError(err))
}

func TestLive_FetchDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := FetchJSON[sample](context.Background(), NewLive(NewMemoryStorage()), Request{URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, ErrCodeDecode, CodeOf(err))
}

func TestLive_FetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewLive(NewMemoryStorage(), WithTimeout(time.Second)).Fetch(context.Background(), Request{URL: url})
	require.Error(t, err)
	assert.Equal(t, ErrCodeFetch, CodeOf(err))
}

func TestLive_TimeoutOption(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewLive(NewMemoryStorage()).client.Timeout)
	assert.Equal(t, 5*time.Second, NewLive(NewMemoryStorage(), WithTimeout(5*time.Second)).client.Timeout)
}

func TestLive_TimeoutLeavesInjectedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	for _, opts := range [][]LiveOption{
		{WithHTTPClient(shared), WithTimeout(time.Second)},
		{WithTimeout(time.Second), WithHTTPClient(shared)},
	} {
		l := NewLive(NewMemoryStorage(), opts...)
		assert.Same(t, shared, l.client)
		assert.Equal(t, time.Minute, shared.Timeout)
	}
}

func TestLive_RateLimitHonoursContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	l := NewLive(NewMemoryStorage(), WithRateLimit(rate.Every(time.Hour), 1))
	_, err := l.Fetch(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Fetch(ctx, Request{URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, ErrCodeFetch, CodeOf(err))
	assert.Equal(t, int32(1), hits.Load(), "second fetch must not reach the server")
}

func TestLive_ExecAndWait(t *testing.T) {
	l := NewLive(NewMemoryStorage())
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		l.Exec(func() { n.Add(1) })
	}
	l.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestLive_NowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewLive(NewMemoryStorage()).Now().Location())
}
