package env

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Environment is the capability object injected into every component that
// performs I/O. One implementation is chosen for the life of the process.
type Environment interface {
	Storage

	// Fetch performs req and returns the body of a successful response.
	// A non-nil req.Body is serialized as JSON by the implementation.
	Fetch(ctx context.Context, req Request) ([]byte, error)

	// Now returns the current time. Must be cheap and never block.
	Now() time.Time

	// Exec schedules task for independent, non-blocking progress.
	Exec(task func())
}

// Storage is a string key-value store.
type Storage interface {
	// GetRaw returns the stored value and true, or "" and false if absent.
	GetRaw(ctx context.Context, key string) (string, bool, error)

	// SetRaw stores value under key, or deletes key when value is nil.
	SetRaw(ctx context.Context, key string, value *string) error
}

// Request is an outbound fetch.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    any
}

// NewGetRequest validates rawURL and builds a GET request for it.
//
// Validation is local: a malformed URL fails here with ErrCodeInvalidRequest
// and never reaches the network.
func NewGetRequest(rawURL string) (Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, NewInvalidRequestError(rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Request{}, NewInvalidRequestError(rawURL, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return Request{}, NewInvalidRequestError(rawURL, fmt.Errorf("missing host"))
	}
	return Request{URL: rawURL, Method: "GET"}, nil
}

// FetchJSON performs req through e and decodes the response body as Resp.
// A body that does not match Resp fails with ErrCodeDecode.
func FetchJSON[Resp any](ctx context.Context, e Environment, req Request) (Resp, error) {
	var out Resp
	body, err := e.Fetch(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, NewDecodeError(req.URL, err)
	}
	return out, nil
}

// GetValue loads the value stored under key and decodes it as T.
// Returns nil, nil if the key is absent.
func GetValue[T any](ctx context.Context, s Storage, key string) (*T, error) {
	raw, ok, err := s.GetRaw(ctx, key)
	if err != nil {
		return nil, NewStorageError(key, err)
	}
	if !ok {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, NewStorageDecodeError(key, err)
	}
	return &v, nil
}

// SetValue stores value under key as JSON. A nil value deletes the key.
func SetValue[T any](ctx context.Context, s Storage, key string, value *T) error {
	if value == nil {
		if err := s.SetRaw(ctx, key, nil); err != nil {
			return NewStorageError(key, err)
		}
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return NewStorageError(key, fmt.Errorf("encode: %w", err))
	}
	raw := string(data)
	if err := s.SetRaw(ctx, key, &raw); err != nil {
		return NewStorageError(key, err)
	}
	return nil
}
