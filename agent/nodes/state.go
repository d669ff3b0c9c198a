// Package nodes holds the pipeline step functions composed by the
// orchestrator graph. Each node is a plain function over the shared RunState;
// the graph only wires them.
package nodes

import (
	"encoding/json"
	"fmt"

	"github.com/founding-ai/orchestra/agent/contract"
	"github.com/founding-ai/orchestra/agent/memory"
)

// RunInput is the command a run starts from.
type RunInput struct {
	Command string
	Role    string
	Images  []string
}

// RunOutput is the terminal result of a run. Nothing else is returned to the
// caller; progress is observable only through emitted events and the final
// memory snapshot.
type RunOutput struct {
	Status     string
	Question   string
	Blueprint  any
	PreviewURL string
}

const (
	RunCompleted           = "completed"
	RunClarificationNeeded = "clarification_needed"
)

// RunState travels through the pipeline. It is mutated only by the
// orchestrating goroutine between steps.
type RunState struct {
	Input  RunInput
	Memory *memory.Memory
	Intent contract.Intent

	// Debate outcome. Approved is meaningful only when DebateRan is set.
	DebateRan bool
	Approved  bool

	PreviewURL string

	// Set when fan-out already emitted the completion event (live preview
	// short-circuit); later stages pass through.
	Done      bool
	Blueprint any
}

// decodeInto round-trips a structured artifact into a typed value.
func decodeInto[T any](m map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(m)
	if err != nil {
		return out, fmt.Errorf("%w: encode artifact: %v", contract.ErrValidation, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: decode artifact: %v", contract.ErrValidation, err)
	}
	return out, nil
}

// artifactJSON renders an artifact for an artifact_update payload.
func artifactJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}
