package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// addonServer serves a few addons under path prefixes:
//
//	/one     catalogs movie/top (2 items) and series/top (503)
//	/two     streams for movie tt prefixed ids
//	/broken  no manifest (404)
//	/slow    catalog movie/slow that never answers before the client gives up
func addonServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/one/manifest.json", jsonHandler(`{
		"id": "one", "version": "1.0.0", "name": "One",
		"types": ["movie", "series"],
		"resources": ["catalog"],
		"catalogs": [
			{"type": "movie", "id": "top", "name": "Top", "extra": [{"name": "genre"}]},
			{"type": "series", "id": "top"}
		]
	}`))
	mux.HandleFunc("/one/catalog/movie/top.json", jsonHandler(`{"metas": [
		{"id": "tt1", "type": "movie", "name": "First"},
		{"id": "tt2", "type": "movie", "name": "Second"}
	]}`))
	mux.HandleFunc("/one/catalog/movie/top/genre=Drama.json", jsonHandler(`{"metas": [
		{"id": "tt3", "type": "movie", "name": "Drama"}
	]}`))
	mux.HandleFunc("/one/catalog/series/top.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	mux.HandleFunc("/two/manifest.json", jsonHandler(`{
		"id": "two", "version": "2.1.0", "name": "Two",
		"types": ["movie"],
		"resources": ["stream"],
		"idPrefixes": ["tt"],
		"catalogs": []
	}`))
	mux.HandleFunc("/two/stream/movie/tt1.json", jsonHandler(`{"streams": [
		{"title": "1080p", "url": "https://cdn.example/1.mp4"},
		{"name": "Torrent", "infoHash": "abcdef"}
	]}`))

	mux.HandleFunc("/slow/manifest.json", jsonHandler(`{
		"id": "slow", "version": "1.0.0", "name": "Slow",
		"types": ["movie"],
		"resources": ["catalog"],
		"catalogs": [{"type": "movie", "id": "slow"}]
	}`))
	mux.HandleFunc("/slow/catalog/movie/slow.json", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

// writeConfig writes a YAML config listing addons and returns its path.
// storage is the YAML body of the storage section.
func writeConfig(t *testing.T, addons []string, storage string, extra string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("addons:\n")
	for _, a := range addons {
		fmt.Fprintf(&b, "  - %s\n", a)
	}
	if len(addons) == 0 {
		b.Reset()
		b.WriteString("addons: []\n")
	}
	if storage == "" {
		storage = "driver: memory"
	}
	b.WriteString("storage:\n")
	for _, line := range strings.Split(storage, "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	b.WriteString(extra)

	path := filepath.Join(t.TempDir(), "mediacore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
