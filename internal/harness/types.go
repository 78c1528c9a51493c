package harness

// Trace event types.
const (
	EventRequest = "request"
	EventChange  = "change"
)

// TraceEvent is either a request made by an effect or a state change of
// a container.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	Method    string `json:"method,omitempty"`
	Container string `json:"container,omitempty"`
	Msg       string `json:"msg,omitempty"`
}

// State is the final state of the runtime.
type State struct {
	Addons   []string     `json:"addons"`
	Catalogs []GroupState `json:"catalogs"`
	Streams  []GroupState `json:"streams"`
}

// GroupState summarizes one aggregation group.
type GroupState struct {
	Addon string `json:"addon"`
	Path  string `json:"path"`
	State string `json:"state"`
	Items int    `json:"items"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains all requests and state changes in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final runtime state.
	State State `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State: State{
			Addons:   []string{},
			Catalogs: []GroupState{},
			Streams:  []GroupState{},
		},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddRequestTrace adds a request to the trace.
func (r *Result) AddRequestTrace(url, method string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    r.nextSeq(),
		Type:   EventRequest,
		URL:    url,
		Method: method,
	})
}

// AddChangeTrace adds a state change to the trace.
func (r *Result) AddChangeTrace(container, msg string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:       r.nextSeq(),
		Type:      EventChange,
		Container: container,
		Msg:       msg,
	})
}

func (r *Result) nextSeq() int64 {
	return int64(len(r.Trace)) + 1
}
