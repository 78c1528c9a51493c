package aggr

import (
	"encoding/json"
	"errors"
)

// ErrEmptyContent marks a catalog response with no items.
var ErrEmptyContent = errors.New("empty content")

// ErrUnexpectedResponse marks a response of the wrong kind for the group
// (for example streams in answer to a catalog request).
var ErrUnexpectedResponse = errors.New("unexpected response kind")

// State is the lifecycle stage of a Loadable.
type State int

const (
	// Loading is the initial state: the request is in flight.
	Loading State = iota
	// Ready means Value holds the content.
	Ready
	// Failed means Err holds the reason.
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "err"
	default:
		return "unknown"
	}
}

// Loadable is content that is loading, ready or failed.
type Loadable[T any] struct {
	State State
	Value T
	Err   error
}

// NewReady returns a ready Loadable.
func NewReady[T any](v T) Loadable[T] {
	return Loadable[T]{State: Ready, Value: v}
}

// NewFailed returns a failed Loadable.
func NewFailed[T any](err error) Loadable[T] {
	return Loadable[T]{State: Failed, Err: err}
}

// IsLoading reports whether the content is still loading.
func (l Loadable[T]) IsLoading() bool {
	return l.State == Loading
}

// MarshalJSON writes {"state": ..., "content": ...} or {"state": "err", "error": ...}.
func (l Loadable[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		State   string `json:"state"`
		Content any    `json:"content,omitempty"`
		Error   string `json:"error,omitempty"`
	}{State: l.State.String()}

	switch l.State {
	case Ready:
		out.Content = l.Value
	case Failed:
		if l.Err != nil {
			out.Error = l.Err.Error()
		}
	}
	return json.Marshal(out)
}
