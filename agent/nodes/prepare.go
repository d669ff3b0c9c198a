package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
	"github.com/founding-ai/orchestra/agent/memory"
	"github.com/founding-ai/orchestra/agent/profile"
)

// PrepareRun seeds a fresh working memory for the run. The durable business
// profile, when present, is injected so operating-mode agents see current
// metrics without re-deriving them.
func PrepareRun(ctx context.Context, in RunInput, profiles profile.Store) (*RunState, error) {
	command := in.Command
	if in.Role != "" {
		command = fmt.Sprintf("[Role: %s] %s", in.Role, command)
	}

	mem := memory.New()
	mem.Init(command)
	if len(in.Images) > 0 {
		mem.SetImages(in.Images)
	}

	if profiles != nil {
		p, err := profiles.Load(ctx)
		switch {
		case errors.Is(err, profile.ErrNotFound):
			// first run, nothing to inject
		case err != nil:
			log.Warn().Err(err).Msg("business profile unavailable, continuing without it")
		default:
			mem.SetProfileContext(p.BusinessProfile, p.Metrics)
		}
	}

	return &RunState{Input: in, Memory: mem}, nil
}

// HaltForClarification suspends the run and surfaces the router's question.
// The run resumes as a fresh invocation once the user replies.
func HaltForClarification(ctx context.Context, st *RunState, sink contract.Sink) (*RunOutput, error) {
	question := st.Intent.ClarificationQuestion
	if question == "" {
		question = "Could you share more detail about what you want to do?"
	}

	sink.Publish(contract.Event{Type: contract.EventClarification, Data: contract.Clarification{
		Question: question,
	}})
	log.Info().Strs("missing_fields", st.Intent.MissingFields).Msg("run halted pending clarification")

	return &RunOutput{
		Status:   RunClarificationNeeded,
		Question: question,
	}, nil
}

// NeedsClarification reports whether the router refused to proceed. Only an
// explicit question halts the run; missing_fields alone is advisory and the
// selected agents execute with what they have.
func NeedsClarification(st *RunState) bool {
	return st.Intent.ClarificationQuestion != ""
}
