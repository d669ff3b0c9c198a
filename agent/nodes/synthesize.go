package nodes

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
)

// Synthesize compiles the accumulated artifacts into the final blueprint.
// A debate that ended without Finance approval fails closed: no synthesis
// model call is made and the blueprint reports the standing rejection.
func Synthesize(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
) (*RunState, error) {
	if st.Done {
		return st, nil
	}

	if st.DebateRan && !st.Approved {
		blueprint := map[string]any{
			"message":   "Plan rejected: financial viability could not be established within the revision limit.",
			"artifacts": st.Memory.Artifacts(),
		}
		if check, ok := st.Memory.LastFinancialCheck(); ok {
			blueprint["final_financial_check"] = map[string]any{
				"decision": string(check.Decision),
				"reason":   check.Reason,
			}
		}
		st.Blueprint = blueprint
		return st, nil
	}

	agent, ok := roster.Get(contract.AgentSynthesis)
	wantsSynthesis := st.Intent.Has(contract.AgentSynthesis) || len(st.Intent.RequiredAgents) > 3
	if ok && wantsSynthesis {
		sink.Publish(contract.Timeline(agent.DisplayName(), "Synthesizing Final Blueprint", contract.TimelinePending))
		result, err := agent.Run(ctx, st.Memory.Sanitized())
		if err != nil {
			return nil, err
		}
		blueprint := result["final_blueprint"]
		if blueprint == nil {
			blueprint = result
		}
		st.Memory.SaveArtifact("SynthesisAgent", "blueprint", blueprint)
		sink.Publish(contract.Artifact("blueprint", "Final Business Blueprint", artifactJSON(blueprint), 1))
		sink.Publish(contract.Timeline(agent.DisplayName(), "Blueprint Compiled", contract.TimelineAccepted))
		log.Info().Msg("synthesis complete")
		st.Blueprint = blueprint
		return st, nil
	}

	st.Blueprint = map[string]any{
		"message":   "Task Complete",
		"artifacts": st.Memory.Artifacts(),
	}
	return st, nil
}

// Finalize closes out the run, emitting the completion event unless a
// preview deployment already did.
func Finalize(ctx context.Context, st *RunState, sink contract.Sink) (*RunOutput, error) {
	if !st.Done {
		st.Memory.SetStatus(contract.StatusCompleted)
		sink.Publish(contract.Event{Type: contract.EventCompletion, Data: contract.Completion{
			Blueprint: st.Blueprint,
		}})
	}
	return &RunOutput{
		Status:     RunCompleted,
		Blueprint:  st.Blueprint,
		PreviewURL: st.PreviewURL,
	}, nil
}
