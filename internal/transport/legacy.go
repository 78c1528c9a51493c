package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/types"
)

// ErrUnsupportedResource is returned by Legacy.Get for resources the legacy
// protocol has no method for.
var ErrUnsupportedResource = errors.New("legacy transport: unsupported resource")

// legacyCatalogLimit is the page size requested from meta.find.
const legacyCatalogLimit = 100

// RPCError is an error object returned by a legacy endpoint.
type RPCError struct {
	URL     string
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("legacy %s at %s: %s (code %d)", e.Method, e.URL, e.Message, e.Code)
}

// Legacy speaks the JSON-RPC protocol of old addons. Every call is a GET of
// {base}/q.json?b=<base64 request>.
type Legacy struct {
	env          env.Environment
	transportURL string
}

var _ Transport = (*Legacy)(nil)

// NewLegacy creates a legacy transport. transportURL may end in LegacyPath
// or in LegacyPath + ManifestPath.
func NewLegacy(e env.Environment, transportURL string) *Legacy {
	return &Legacy{env: e, transportURL: transportURL}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  [2]any `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Get maps ref onto the legacy method serving it.
func (t *Legacy) Get(ctx context.Context, ref types.ResourceRef) (*types.ResourceResponse, error) {
	method, params, err := legacyCall(ref)
	if err != nil {
		return nil, err
	}
	result, err := t.call(ctx, method, params)
	if err != nil {
		return nil, err
	}

	var out types.ResourceResponse
	switch ref.Resource {
	case types.ResourceCatalog:
		if err := json.Unmarshal(result, &out.Metas); err != nil {
			return nil, env.NewDecodeError(t.base(), err)
		}
		if out.Metas == nil {
			out.Metas = []types.MetaPreview{}
		}
	case types.ResourceMeta:
		if err := json.Unmarshal(result, &out.Meta); err != nil {
			return nil, env.NewDecodeError(t.base(), err)
		}
		if out.Meta == nil {
			return nil, env.NewDecodeError(t.base(), types.ErrUnrecognizedResponse)
		}
	case types.ResourceStream:
		if err := json.Unmarshal(result, &out.Streams); err != nil {
			return nil, env.NewDecodeError(t.base(), err)
		}
		if out.Streams == nil {
			out.Streams = []types.Stream{}
		}
	case types.ResourceSubtitles:
		var subs struct {
			All []types.Subtitle `json:"all"`
		}
		if err := json.Unmarshal(result, &subs); err != nil {
			return nil, env.NewDecodeError(t.base(), err)
		}
		out.Subtitles = subs.All
		if out.Subtitles == nil {
			out.Subtitles = []types.Subtitle{}
		}
	}
	return &out, nil
}

// Manifest calls the "meta" method and maps the legacy manifest.
func (t *Legacy) Manifest(ctx context.Context) (*types.Manifest, error) {
	result, err := t.call(ctx, "meta", nil)
	if err != nil {
		return nil, err
	}
	var lm legacyManifestResult
	if err := json.Unmarshal(result, &lm); err != nil {
		return nil, env.NewDecodeError(t.base(), err)
	}
	m := lm.toManifest()
	return &m, nil
}

// RequestURL returns the URL that calling method with params would fetch.
func (t *Legacy) RequestURL(method string, params any) (string, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  [2]any{nil, params},
	})
	if err != nil {
		return "", env.NewInvalidRequestError(t.base(), err)
	}
	return t.base() + "/q.json?b=" + base64.URLEncoding.EncodeToString(payload), nil
}

func (t *Legacy) base() string {
	return strings.TrimSuffix(t.transportURL, ManifestPath)
}

func (t *Legacy) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	u, err := t.RequestURL(method, params)
	if err != nil {
		return nil, err
	}
	req, err := env.NewGetRequest(u)
	if err != nil {
		return nil, err
	}
	resp, err := env.FetchJSON[rpcResponse](ctx, t.env, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &RPCError{URL: t.base(), Method: method, Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, env.NewDecodeError(t.base(), types.ErrUnrecognizedResponse)
	}
	return resp.Result, nil
}

// legacyCall returns the method and params for ref.
func legacyCall(ref types.ResourceRef) (string, map[string]any, error) {
	switch ref.Resource {
	case types.ResourceCatalog:
		query := map[string]any{"type": ref.Type}
		if genre, ok := ref.ExtraValue("genre"); ok {
			query["genre"] = genre
		}
		params := map[string]any{"query": query, "limit": legacyCatalogLimit}
		// "top" is the default catalog; any other id is a sort property
		if ref.ID != "top" {
			params["sort"] = map[string]any{ref.ID: -1}
		}
		if skip, ok := ref.ExtraValue("skip"); ok {
			if n, err := strconv.Atoi(skip); err == nil {
				params["skip"] = n
			}
		}
		return "meta.find", params, nil
	case types.ResourceMeta:
		return "meta.get", map[string]any{"query": queryFromID(ref.ID)}, nil
	case types.ResourceStream:
		query := queryFromID(ref.ID)
		query["type"] = ref.Type
		return "stream.find", map[string]any{"query": query}, nil
	case types.ResourceSubtitles:
		query := map[string]any{"itemHash": strings.ReplaceAll(ref.ID, ":", " ")}
		return "subtitles.find", map[string]any{"query": query}, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedResource, ref.Resource)
}

// queryFromID turns a content id into a legacy query:
// "tt1:2:3" -> imdb_id, season, episode; "yt_id:abc" -> {"yt_id": "abc"}.
func queryFromID(id string) map[string]any {
	parts := strings.Split(id, ":")
	query := map[string]any{}
	rest := parts[1:]
	if strings.HasPrefix(parts[0], "tt") {
		query["imdb_id"] = parts[0]
	} else if len(parts) >= 2 {
		query[parts[0]] = parts[1]
		rest = parts[2:]
	} else {
		query["id"] = parts[0]
	}
	if len(rest) == 2 {
		if season, err := strconv.Atoi(rest[0]); err == nil {
			query["season"] = season
		}
		if episode, err := strconv.Atoi(rest[1]); err == nil {
			query["episode"] = episode
		}
	}
	return query
}

type legacyManifestResult struct {
	Manifest legacyManifest `json:"manifest"`
	Methods  []string       `json:"methods"`
}

type legacyManifest struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Logo        string       `json:"logo"`
	Types       []string     `json:"types"`
	IDProperty  idProperty   `json:"idProperty"`
	Sorts       []legacySort `json:"sorts"`
}

type legacySort struct {
	Prop  string   `json:"prop"`
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// idProperty is a string or a list of strings on the wire.
type idProperty []string

func (p *idProperty) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*p = idProperty{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("idProperty: %w", err)
	}
	*p = many
	return nil
}

var legacyMethodResources = map[string]string{
	"meta.find":      types.ResourceCatalog,
	"meta.get":       types.ResourceMeta,
	"stream.find":    types.ResourceStream,
	"subtitles.find": types.ResourceSubtitles,
}

func (r legacyManifestResult) toManifest() types.Manifest {
	lm := r.Manifest
	m := types.Manifest{
		ID:          lm.ID,
		Version:     lm.Version,
		Name:        lm.Name,
		Description: lm.Description,
		Logo:        lm.Logo,
		Types:       lm.Types,
		Resources:   []types.ManifestResource{},
		Catalogs:    []types.ManifestCatalog{},
	}

	hasCatalog := false
	for _, method := range r.Methods {
		res, ok := legacyMethodResources[method]
		if !ok {
			continue
		}
		if res == types.ResourceCatalog {
			hasCatalog = true
			continue
		}
		m.Resources = append(m.Resources, types.ManifestResource{Name: res})
	}

	for _, p := range lm.IDProperty {
		if p == "imdb_id" {
			m.IDPrefixes = append(m.IDPrefixes, "tt")
		} else {
			m.IDPrefixes = append(m.IDPrefixes, p+":")
		}
	}

	if hasCatalog {
		for _, t := range lm.Types {
			m.Catalogs = append(m.Catalogs, types.ManifestCatalog{
				ID:             "top",
				Type:           t,
				Name:           lm.Name,
				ExtraSupported: []string{"genre", "skip"},
			})
		}
		for _, s := range lm.Sorts {
			for _, t := range s.Types {
				m.Catalogs = append(m.Catalogs, types.ManifestCatalog{
					ID:             s.Prop,
					Type:           t,
					Name:           s.Name,
					ExtraSupported: []string{"genre", "skip"},
				})
			}
		}
	}
	return m
}
