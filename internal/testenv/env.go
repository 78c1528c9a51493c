package testenv

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/types"
)

// Request is a logged fetch, recorded before the responder sees it.
type Request struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Env is the deterministic Environment.
//
// State cells (request log, storage, clock, pending tasks) each have their
// own lock, so effects may call into Env concurrently; concurrent writers
// resolve last-writer-wins.
type Env struct {
	reqMu     sync.Mutex
	requests  []Request
	responder Responder

	storage *env.MemoryStorage
	clock   *Clock

	taskMu sync.Mutex
	tasks  []func()
	async  bool
	wg     sync.WaitGroup
}

var _ env.Environment = (*Env)(nil)

// Option configures an Env.
type Option func(*Env)

// WithResponder sets the responder answering fetches.
func WithResponder(r Responder) Option {
	return func(e *Env) {
		e.responder = r
	}
}

// WithStart sets the initial clock time.
func WithStart(t time.Time) Option {
	return func(e *Env) {
		e.clock = NewClock(t)
	}
}

// WithAsyncExec runs Exec'd tasks immediately on goroutines instead of
// deferring them. Use Wait to join them.
func WithAsyncExec() Option {
	return func(e *Env) {
		e.async = true
	}
}

// New creates an Env with empty log and storage and the clock at DefaultStart.
func New(opts ...Option) *Env {
	e := &Env{
		storage: env.NewMemoryStorage(),
		clock:   NewClock(time.Time{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fetch logs req and answers it with the responder.
// Without a responder every fetch fails with ErrNoRoute.
func (e *Env) Fetch(_ context.Context, req env.Request) ([]byte, error) {
	logged := newRequest(req)

	e.reqMu.Lock()
	e.requests = append(e.requests, logged)
	responder := e.responder
	e.reqMu.Unlock()

	if responder == nil {
		return nil, env.NewFetchError(req.URL, ErrNoRoute)
	}
	return responder(logged)
}

func newRequest(req env.Request) Request {
	method := req.Method
	if method == "" {
		method = "GET"
	}
	headers := make(map[string]string, len(req.Headers))
	maps.Copy(headers, req.Headers)

	body, err := types.MarshalCanonical(req.Body)
	if err != nil {
		body = []byte("<unserializable: " + err.Error() + ">")
	}
	return Request{URL: req.URL, Method: method, Headers: headers, Body: string(body)}
}

// GetRaw reads from the in-memory storage.
func (e *Env) GetRaw(ctx context.Context, key string) (string, bool, error) {
	return e.storage.GetRaw(ctx, key)
}

// SetRaw writes to the in-memory storage.
func (e *Env) SetRaw(ctx context.Context, key string, value *string) error {
	return e.storage.SetRaw(ctx, key, value)
}

// Now reads the virtual clock.
func (e *Env) Now() time.Time {
	return e.clock.Now()
}

// Exec defers task until RunPending/RunNext/RunAt, or runs it on a
// goroutine when WithAsyncExec is set.
func (e *Env) Exec(task func()) {
	if e.async {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			task()
		}()
		return
	}
	e.taskMu.Lock()
	defer e.taskMu.Unlock()
	e.tasks = append(e.tasks, task)
}

// PendingTasks returns the number of deferred tasks.
func (e *Env) PendingTasks() int {
	e.taskMu.Lock()
	defer e.taskMu.Unlock()
	return len(e.tasks)
}

// RunAt runs the i-th deferred task (0-based, in Exec order) and removes it.
// Returns false if there is no such task.
func (e *Env) RunAt(i int) bool {
	e.taskMu.Lock()
	if i < 0 || i >= len(e.tasks) {
		e.taskMu.Unlock()
		return false
	}
	task := e.tasks[i]
	e.tasks = slices.Delete(e.tasks, i, i+1)
	e.taskMu.Unlock()

	// Run outside the lock: the task may Exec further tasks
	task()
	return true
}

// RunNext runs the oldest deferred task.
func (e *Env) RunNext() bool {
	return e.RunAt(0)
}

// RunPending runs deferred tasks in FIFO order until none are left,
// including tasks scheduled while running. Returns how many ran.
func (e *Env) RunPending() int {
	n := 0
	for e.RunNext() {
		n++
	}
	return n
}

// Wait joins tasks started with WithAsyncExec.
func (e *Env) Wait() {
	e.wg.Wait()
}

// Requests returns a copy of the request log.
func (e *Env) Requests() []Request {
	e.reqMu.Lock()
	defer e.reqMu.Unlock()
	return slices.Clone(e.requests)
}

// Storage exposes the in-memory storage for inspection.
func (e *Env) Storage() *env.MemoryStorage {
	return e.storage
}

// Clock exposes the virtual clock.
func (e *Env) Clock() *Clock {
	return e.clock
}

// SetResponder replaces the responder.
func (e *Env) SetResponder(r Responder) {
	e.reqMu.Lock()
	defer e.reqMu.Unlock()
	e.responder = r
}

// Reset empties the request log, storage and deferred tasks and moves the
// clock back to its start.
func (e *Env) Reset() {
	e.reqMu.Lock()
	e.requests = nil
	e.reqMu.Unlock()

	e.storage.Reset()
	e.clock.Reset()

	e.taskMu.Lock()
	e.tasks = nil
	e.taskMu.Unlock()
}
