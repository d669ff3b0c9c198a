package nodes

import (
	"context"

	"github.com/founding-ai/orchestra/agent/contract"
)

// Plan asks the planner agent for an advisory execution ordering. The plan is
// stored for display only; the pipeline never enforces it.
func Plan(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
) (*RunState, error) {
	if !st.Intent.Has(contract.AgentPlanner) {
		return st, nil
	}

	planner, ok := roster.Get(contract.AgentPlanner)
	if !ok {
		return st, nil
	}

	sink.Publish(contract.Timeline(planner.DisplayName(), "Generating Execution Plan...", contract.TimelinePending))

	result, err := planner.Run(ctx, st.Memory.Sanitized())
	if err != nil {
		return nil, err
	}

	plan, err := decodeInto[struct {
		ExecutionPlan []string `json:"execution_plan"`
	}](result)
	if err != nil {
		return nil, err
	}
	st.Memory.SetPlan(plan.ExecutionPlan)

	sink.Publish(contract.Timeline(planner.DisplayName(), "Plan Generated", contract.TimelineAccepted))
	return st, nil
}
