package nodes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
)

// AnalyzeIntent routes the free-form command to an operating mode and a
// minimal required-agent set, merging any extracted constraints into shared
// memory.
func AnalyzeIntent(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
) (*RunState, error) {
	intentAgent, ok := roster.Get(contract.AgentIntent)
	if !ok {
		return nil, fmt.Errorf("%w: intent agent missing from roster", contract.ErrValidation)
	}

	sink.Publish(contract.Timeline(intentAgent.DisplayName(), "Thinking...", contract.TimelinePending))

	result, err := intentAgent.Run(ctx, st.Memory.Sanitized())
	if err != nil {
		return nil, err
	}

	intent, err := decodeInto[contract.Intent](result)
	if err != nil {
		return nil, err
	}
	if intent.Mode != contract.ModeLaunch && intent.Mode != contract.ModeOperate {
		return nil, fmt.Errorf("%w: router returned mode %q", contract.ErrValidation, intent.Mode)
	}

	st.Memory.UpdateConstraints(intent.Constraints)
	st.Intent = intent

	log.Info().
		Str("mode", string(intent.Mode)).
		Strs("agents", intent.RequiredAgents).
		Msg("intent analyzed")
	sink.Publish(contract.Timeline(intentAgent.DisplayName(), fmt.Sprintf("Analyzed Intent: %s", intent.Mode), contract.TimelineAccepted))

	return st, nil
}
