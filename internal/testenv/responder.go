package testenv

import (
	"errors"
	"net/http"

	"github.com/roach88/mediacore/internal/env"
)

// ErrNoRoute is returned by Static for URLs without a configured reply.
var ErrNoRoute = errors.New("no route")

// Responder answers a logged request. It plays the role of the network.
type Responder func(req Request) ([]byte, error)

// Reply is a canned answer for one URL.
type Reply struct {
	// Status defaults to 200.
	Status int `yaml:"status,omitempty"`
	// Body is returned for 2xx statuses.
	Body string `yaml:"body,omitempty"`
	// Err, if set, simulates a network failure.
	Err string `yaml:"error,omitempty"`
}

// Static answers from a fixed URL -> Reply table.
// Unknown URLs fail as network errors wrapping ErrNoRoute.
func Static(routes map[string]Reply) Responder {
	return func(req Request) ([]byte, error) {
		reply, ok := routes[req.URL]
		if !ok {
			return nil, env.NewFetchError(req.URL, ErrNoRoute)
		}
		return reply.Respond(req.URL)
	}
}

// Respond turns the reply into Fetch results.
func (r Reply) Respond(url string) ([]byte, error) {
	if r.Err != "" {
		return nil, env.NewFetchError(url, errors.New(r.Err))
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status < 200 || status > 299 {
		return nil, env.NewStatusError(url, status)
	}
	return []byte(r.Body), nil
}
