package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/roach88/mediacore/internal/aggr"
	"github.com/roach88/mediacore/internal/engine"
	"github.com/roach88/mediacore/internal/models"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/testenv"
	"github.com/roach88/mediacore/internal/types"
)

// Harness is the scenario execution engine.
//
// Effects are held by the testenv executor. held mirrors its task list: for
// every held task it records the aggregation request the task will fetch,
// or nil for other effects (manifest fetches, persistence).
type Harness struct {
	env    *testenv.Env
	rt     *models.Runtime
	result *Result
	logger *slog.Logger

	held         []*types.ResourceRequest
	seenRequests int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh Environment for isolation.
//
// Execution flow:
// 1. Serve addon manifests and canned responses from a testenv.Env
// 2. Build the runtime (ctx, catalogs, streams) on a Muxer
// 3. Execute steps, recording requests and state changes
// 4. Snapshot the final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	routes := make(map[string]testenv.Reply, len(scenario.Responses)+len(scenario.Addons))
	maps.Copy(routes, scenario.Responses)
	for _, a := range scenario.Addons {
		body, err := json.Marshal(a.Manifest)
		if err != nil {
			return nil, fmt.Errorf("addon %s: failed to encode manifest: %w", a.URL, err)
		}
		routes[a.URL] = testenv.Reply{Body: string(body)}
	}

	opts := []testenv.Option{testenv.WithResponder(testenv.Static(routes))}
	if scenario.Start != "" {
		start, err := time.Parse(time.RFC3339, scenario.Start)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		opts = append(opts, testenv.WithStart(start))
	}

	h := &Harness{
		env:    testenv.New(opts...),
		result: NewResult(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.rt = models.NewRuntime(h.env,
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(engine.NewSequentialGenerator("")),
		engine.WithChangeListener(func(container string, m msg.Msg) {
			h.result.AddChangeTrace(container, m.Name())
		}),
	)

	for i, step := range scenario.Steps {
		if err := h.executeStep(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	h.result.State = h.snapshot()
	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(errMsg)
	}

	return h.result, nil
}

func (h *Harness) executeStep(step Step) error {
	switch {
	case step.Install != "":
		from := len(h.held)
		h.dispatch(msg.NewInstallAddon(step.Install), nil)
		h.runFrom(from)

	case step.Uninstall != "":
		from := len(h.held)
		h.dispatch(msg.NewUninstallAddon(step.Uninstall), nil)
		h.runFrom(from)

	case step.LoadCatalogs != nil:
		var req aggr.Request = aggr.AllCatalogs{Extra: step.LoadCatalogs.Extra}
		if step.LoadCatalogs.Type != "" {
			req = aggr.AllCatalogsOfType{Type: step.LoadCatalogs.Type, Extra: step.LoadCatalogs.Extra}
		}
		h.dispatch(msg.NewLoadCatalogs(req), func() []types.ResourceRequest {
			reqs := make([]types.ResourceRequest, len(h.rt.Catalogs.Groups))
			for i, g := range h.rt.Catalogs.Groups {
				reqs[i] = g.Req
			}
			return reqs
		})

	case step.LoadStreams != nil:
		ref := types.NewResourceRef(types.ResourceStream, step.LoadStreams.Type, step.LoadStreams.ID)
		h.dispatch(msg.NewLoadStreams(ref), func() []types.ResourceRequest {
			reqs := make([]types.ResourceRequest, len(h.rt.Streams.Groups))
			for i, g := range h.rt.Streams.Groups {
				reqs[i] = g.Req
			}
			return reqs
		})

	case step.Deliver != nil:
		idx := slices.IndexFunc(h.held, func(r *types.ResourceRequest) bool {
			return r != nil && r.Base == step.Deliver.Addon &&
				(step.Deliver.Path == "" || r.Path.String() == step.Deliver.Path)
		})
		if idx < 0 {
			return fmt.Errorf("deliver: no held request for addon %s%s", step.Deliver.Addon, step.Deliver.Path)
		}
		h.runAt(idx)

	case step.DeliverAll:
		h.runFrom(0)

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		h.env.Clock().Advance(d)

	case step.Unload:
		h.dispatch(msg.Unload{}, nil)

	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

// dispatch offers m to the runtime. The effects it schedules are held and
// labelled with the requests returned by labels, in order.
func (h *Harness) dispatch(m msg.Msg, labels func() []types.ResourceRequest) {
	before := h.env.PendingTasks()
	h.rt.Muxer.Dispatch(m)

	var reqs []types.ResourceRequest
	if labels != nil {
		reqs = labels()
	}
	for i := range h.env.PendingTasks() - before {
		var label *types.ResourceRequest
		if i < len(reqs) {
			label = &reqs[i]
		}
		h.held = append(h.held, label)
	}
	h.drain()
}

// runAt runs the i-th held task, then lets the loop process its message.
func (h *Harness) runAt(i int) {
	h.held = slices.Delete(h.held, i, i+1)
	h.env.RunAt(i)
	h.collectRequests()
	h.drain()
}

// runFrom runs held tasks from index from onwards, including tasks they
// cause, until only the first from tasks are left.
func (h *Harness) runFrom(from int) {
	for h.env.PendingTasks() > from {
		h.runAt(from)
	}
}

// drain processes queued messages. Effects they schedule are held unlabelled.
func (h *Harness) drain() {
	for h.rt.Muxer.Step() {
		for range h.env.PendingTasks() - len(h.held) {
			h.held = append(h.held, nil)
		}
	}
}

func (h *Harness) collectRequests() {
	reqs := h.env.Requests()
	for _, r := range reqs[h.seenRequests:] {
		h.result.AddRequestTrace(r.URL, r.Method)
	}
	h.seenRequests = len(reqs)
}

func (h *Harness) snapshot() State {
	state := State{
		Addons:   []string{},
		Catalogs: []GroupState{},
		Streams:  []GroupState{},
	}
	for _, a := range h.rt.Ctx.Profile.Addons {
		state.Addons = append(state.Addons, a.Manifest.ID)
	}
	for _, g := range h.rt.Catalogs.Groups {
		state.Catalogs = append(state.Catalogs, groupState(g.Req, g.Content.State, len(g.Content.Value), g.Content.Err))
	}
	for _, g := range h.rt.Streams.Groups {
		state.Streams = append(state.Streams, groupState(g.Req, g.Content.State, len(g.Streams()), g.Content.Err))
	}
	return state
}

func groupState(req types.ResourceRequest, s aggr.State, items int, err error) GroupState {
	gs := GroupState{
		Addon: req.Base,
		Path:  req.Path.String(),
		State: s.String(),
		Items: items,
	}
	if err != nil {
		gs.Error = err.Error()
	}
	return gs
}
