// Package memory holds the single run-scoped accumulator of everything the
// agents have produced. A Memory is created fresh for every top-level run and
// mutated only by the orchestrating goroutine between awaited steps.
package memory

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
)

type Memory struct {
	state contract.Snapshot
	now   func() time.Time
}

func New() *Memory {
	return &Memory{
		state: contract.Snapshot{
			Constraints:      map[string]string{},
			ExecutionPlan:    []string{},
			AgentOutputs:     map[string]map[string]any{},
			RevisionRequests: []contract.RevisionRequest{},
			FinancialChecks:  []contract.FinancialCheck{},
			Status:           contract.StatusInitialized,
		},
		now: time.Now,
	}
}

// Init stores the user command and moves the run into planning.
func (m *Memory) Init(command string) {
	m.state.UserIntent = command
	m.state.Status = contract.StatusPlanning
}

func (m *Memory) SetImages(images []string) {
	m.state.Images = images
}

func (m *Memory) SetProfileContext(profile, metrics map[string]any) {
	m.state.BusinessProfile = profile
	m.state.Metrics = metrics
}

// UpdateConstraints merges router-extracted constraints; later writes win per
// key.
func (m *Memory) UpdateConstraints(constraints map[string]string) {
	for k, v := range constraints {
		m.state.Constraints[k] = v
	}
}

// SetPlan stores the advisory execution ordering. It is consumed only for
// display, never enforced.
func (m *Memory) SetPlan(plan []string) {
	m.state.ExecutionPlan = plan
}

func (m *Memory) SetStatus(status contract.RunStatus) {
	m.state.Status = status
}

func (m *Memory) Status() contract.RunStatus {
	return m.state.Status
}

// SaveArtifact appends an agent output; last write per key wins.
func (m *Memory) SaveArtifact(agentName, key string, data any) {
	if m.state.AgentOutputs[agentName] == nil {
		m.state.AgentOutputs[agentName] = map[string]any{}
	}
	m.state.AgentOutputs[agentName][key] = data
	log.Debug().Str("agent", agentName).Str("artifact", key).Msg("artifact saved")
}

// Artifact returns a previously saved output, or nil.
func (m *Memory) Artifact(agentName, key string) any {
	outputs, ok := m.state.AgentOutputs[agentName]
	if !ok {
		return nil
	}
	return outputs[key]
}

func (m *Memory) Artifacts() map[string]map[string]any {
	return m.Snapshot().AgentOutputs
}

// AddRevisionRequest logs a rejection and re-enters the revising status.
// Resolved stays false; the log is audit-only.
func (m *Memory) AddRevisionRequest(from, to, reason string) {
	m.state.RevisionRequests = append(m.state.RevisionRequests, contract.RevisionRequest{
		Timestamp: m.now().UTC(),
		From:      from,
		To:        to,
		Reason:    reason,
	})
	m.state.Status = contract.StatusRevising
	log.Info().Str("from", from).Str("to", to).Str("reason", reason).Msg("revision requested")
}

// LogFinancialCheck appends one Finance verdict; ordering is call order.
func (m *Memory) LogFinancialCheck(decision contract.Decision, reason string) {
	m.state.FinancialChecks = append(m.state.FinancialChecks, contract.FinancialCheck{
		Timestamp: m.now().UTC(),
		Decision:  decision,
		Reason:    reason,
	})
}

func (m *Memory) RevisionRequests() []contract.RevisionRequest {
	return append([]contract.RevisionRequest(nil), m.state.RevisionRequests...)
}

func (m *Memory) FinancialChecks() []contract.FinancialCheck {
	return append([]contract.FinancialCheck(nil), m.state.FinancialChecks...)
}

// LastFinancialCheck returns the newest verdict, or false when Finance never
// ran.
func (m *Memory) LastFinancialCheck() (contract.FinancialCheck, bool) {
	if len(m.state.FinancialChecks) == 0 {
		return contract.FinancialCheck{}, false
	}
	return m.state.FinancialChecks[len(m.state.FinancialChecks)-1], true
}

func (m *Memory) HasImages() bool {
	return len(m.state.Images) > 0
}

// Snapshot returns a deep copy of the full state, images included.
func (m *Memory) Snapshot() *contract.Snapshot {
	return deepCopy(&m.state)
}

// Sanitized returns a deep copy with image payloads stripped, for text-only
// agents.
func (m *Memory) Sanitized() *contract.Snapshot {
	snap := deepCopy(&m.state)
	snap.Images = nil
	return snap
}

func deepCopy(s *contract.Snapshot) *contract.Snapshot {
	raw, err := json.Marshal(s)
	if err != nil {
		// Snapshot holds only JSON-built values; a marshal failure means a
		// programming error upstream.
		log.Error().Err(err).Msg("snapshot marshal failed")
		clone := *s
		return &clone
	}
	var clone contract.Snapshot
	if err := json.Unmarshal(raw, &clone); err != nil {
		log.Error().Err(err).Msg("snapshot unmarshal failed")
		c := *s
		return &c
	}
	return &clone
}
