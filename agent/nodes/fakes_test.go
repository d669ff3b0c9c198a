package nodes

import (
	"context"
	"sync"

	"github.com/founding-ai/orchestra/agent/contract"
	"github.com/founding-ai/orchestra/agent/memory"
)

type fakeAgent struct {
	id      contract.AgentID
	display string

	mu      sync.Mutex
	outputs []map[string]any
	err     error
	calls   int
	seen    []*contract.Snapshot
}

func (f *fakeAgent) ID() contract.AgentID { return f.id }

func (f *fakeAgent) DisplayName() string { return f.display }

func (f *fakeAgent) Run(ctx context.Context, snap *contract.Snapshot) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seen = append(f.seen, snap)
	idx := f.calls
	f.calls++

	if f.err != nil {
		return nil, f.err
	}
	if idx < len(f.outputs) {
		return f.outputs[idx], nil
	}
	if len(f.outputs) > 0 {
		return f.outputs[len(f.outputs)-1], nil
	}
	return map[string]any{}, nil
}

func (f *fakeAgent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAgent) snapshots() []*contract.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*contract.Snapshot(nil), f.seen...)
}

type fakeRoster map[contract.AgentID]contract.Capability

func (r fakeRoster) Get(id contract.AgentID) (contract.Capability, bool) {
	agent, ok := r[id]
	return agent, ok
}

func (r fakeRoster) IDs() []contract.AgentID {
	ids := make([]contract.AgentID, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	return ids
}

type recordSink struct {
	mu     sync.Mutex
	events []contract.Event
}

func (s *recordSink) Publish(ev contract.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) all() []contract.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contract.Event(nil), s.events...)
}

func (s *recordSink) artifacts(id string) []contract.ArtifactUpdate {
	var out []contract.ArtifactUpdate
	for _, ev := range s.all() {
		if ev.Type != contract.EventArtifact {
			continue
		}
		if data, ok := ev.Data.(contract.ArtifactUpdate); ok && data.ID == id {
			out = append(out, data)
		}
	}
	return out
}

func (s *recordSink) timelineActions() []string {
	var out []string
	for _, ev := range s.all() {
		if ev.Type != contract.EventTimeline {
			continue
		}
		if data, ok := ev.Data.(contract.TimelineEvent); ok {
			out = append(out, data.Action)
		}
	}
	return out
}

func (s *recordSink) contentions() []contract.Contention {
	var out []contract.Contention
	for _, ev := range s.all() {
		if ev.Type != contract.EventContention {
			continue
		}
		if data, ok := ev.Data.(contract.Contention); ok {
			out = append(out, data)
		}
	}
	return out
}

func (s *recordSink) completions() []contract.Completion {
	var out []contract.Completion
	for _, ev := range s.all() {
		if ev.Type != contract.EventCompletion {
			continue
		}
		if data, ok := ev.Data.(contract.Completion); ok {
			out = append(out, data)
		}
	}
	return out
}

func newRunState(command string, required ...string) *RunState {
	mem := memory.New()
	mem.Init(command)
	return &RunState{
		Input:  RunInput{Command: command},
		Memory: mem,
		Intent: contract.Intent{Mode: contract.ModeLaunch, RequiredAgents: required},
	}
}

func hasAction(actions []string, want string) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}
