package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
)

// MaxRevisions bounds the debate loop: at most this many full
// Strategy→Operations→Finance iterations before the loop exits rejected.
const MaxRevisions = 2

const contentionID = "budget-viability"

type financeVerdict struct {
	Financials      map[string]any `json:"financials"`
	Decision        string         `json:"decision"`
	RevisionRequest *struct {
		TargetAgent string `json:"target_agent"`
		Issue       string `json:"issue"`
		Suggestion  string `json:"suggestion"`
	} `json:"revision_request"`
}

// Debate runs the bounded adversarial loop between Strategy, Operations, and
// Finance, with Finance as final arbiter. It activates only when all three
// are selected; otherwise each selected agent runs once, linearly.
func Debate(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
) (*RunState, error) {
	st.Memory.SetStatus(contract.StatusExecuting)

	debateMode := st.Intent.Has(contract.AgentStrategy) &&
		st.Intent.Has(contract.AgentOps) &&
		st.Intent.Has(contract.AgentFinance)
	if !debateMode {
		return runLinear(ctx, st, roster, sink)
	}

	st.DebateRan = true

	for revisions := 0; !st.Approved && revisions < MaxRevisions; revisions++ {
		version := revisions + 1
		log.Info().Int("iteration", version).Msg("debate iteration")

		// Each iteration fully re-derives Strategy and Operations from the
		// latest memory, including any appended revision request.
		if err := runDebateStep(ctx, st, roster, sink, contract.AgentStrategy,
			"Defining Business Strategy", "Strategy Drafted",
			"StrategyAgent", "strategy", "concept", "Business Strategy", version); err != nil {
			return nil, err
		}
		if err := runDebateStep(ctx, st, roster, sink, contract.AgentOps,
			"Planning Operations", "Operations Planned",
			"OperationsAgent", "operations", "ops", "Operations Plan", version); err != nil {
			return nil, err
		}

		finance, ok := roster.Get(contract.AgentFinance)
		if !ok {
			return nil, fmt.Errorf("%w: agent %s missing from roster", contract.ErrValidation, contract.AgentFinance)
		}
		sink.Publish(contract.Timeline(finance.DisplayName(), "Validating Financial Viability", contract.TimelinePending))

		result, err := finance.Run(ctx, st.Memory.Sanitized())
		if err != nil {
			return nil, err
		}
		verdict, err := decodeInto[financeVerdict](result)
		if err != nil {
			return nil, err
		}

		st.Memory.SaveArtifact("FinanceAgent", "financials", verdict.Financials)
		sink.Publish(contract.Artifact("finance", "Financial Model", artifactJSON(verdict.Financials), version))

		if strings.EqualFold(verdict.Decision, string(contract.DecisionPass)) {
			st.Memory.LogFinancialCheck(contract.DecisionPass, "Plan is financially sound.")

			statementA := "Plan is financially sound."
			if len(st.Memory.RevisionRequests()) > 0 {
				statementA = "Revised plan meets margin targets."
			}
			sink.Publish(contract.Event{Type: contract.EventContention, Data: contract.Contention{
				ID:         contentionID,
				Title:      "Financial Viability",
				Agents:     []string{"Finance", "Strategy"},
				Status:     contract.ContentionResolved,
				StatementA: statementA,
				StatementB: "Strategy optimized for efficiency.",
				Outcome:    "Budget & Strategy Aligned",
			}})
			sink.Publish(contract.Timeline(finance.DisplayName(), "Budget Approved", contract.TimelineAccepted))
			st.Approved = true
			continue
		}

		// Rejection: Finance's verdict is authoritative and not overridable.
		issue := "Financials not viable."
		suggestion := "Reduce costs."
		target := "StrategyAgent"
		if verdict.RevisionRequest != nil {
			if v := strings.TrimSpace(verdict.RevisionRequest.Issue); v != "" {
				issue = v
			}
			if v := strings.TrimSpace(verdict.RevisionRequest.Suggestion); v != "" {
				suggestion = v
			}
			if v := strings.TrimSpace(verdict.RevisionRequest.TargetAgent); v != "" {
				target = v
			}
		}

		st.Memory.LogFinancialCheck(contract.DecisionFail, issue)
		st.Memory.AddRevisionRequest("FinanceAgent", target, issue+" Suggestion: "+suggestion)

		sink.Publish(contract.Event{Type: contract.EventContention, Data: contract.Contention{
			ID:         contentionID,
			Title:      "Financial Viability Conflict",
			Agents:     []string{"Finance", "Strategy"},
			Status:     contract.ContentionOpen,
			StatementA: issue,
			StatementB: "Strategy focuses on aggressive growth.",
			Outcome:    suggestion,
		}})
		sink.Publish(contract.Timeline(finance.DisplayName(), "Budget Rejected - Revisions Requested", contract.TimelineRevised))
	}

	if !st.Approved {
		log.Warn().Int("max_revisions", MaxRevisions).Msg("debate exhausted without financial approval")
	}
	return st, nil
}

func runDebateStep(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
	id contract.AgentID,
	pendingAction, doneAction string,
	memoryKey, resultKey, artifactID, title string,
	version int,
) error {
	agent, ok := roster.Get(id)
	if !ok {
		return fmt.Errorf("%w: agent %s missing from roster", contract.ErrValidation, id)
	}

	sink.Publish(contract.Timeline(agent.DisplayName(), pendingAction, contract.TimelinePending))

	result, err := agent.Run(ctx, st.Memory.Sanitized())
	if err != nil {
		return err
	}

	artifact := result[resultKey]
	if artifact == nil {
		artifact = result
	}
	st.Memory.SaveArtifact(memoryKey, resultKey, artifact)

	sink.Publish(contract.Artifact(artifactID, title, artifactJSON(artifact), version))
	sink.Publish(contract.Timeline(agent.DisplayName(), doneAction, contract.TimelineAccepted))
	return nil
}

// runLinear is the fallback when the debate trio is not fully selected: each
// selected agent runs once with no negotiation. Finance still feeds the
// financial-check audit log.
func runLinear(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
) (*RunState, error) {
	if st.Intent.Has(contract.AgentStrategy) {
		if err := runDebateStep(ctx, st, roster, sink, contract.AgentStrategy,
			"Defining Business Strategy", "Strategy Drafted",
			"StrategyAgent", "strategy", "concept", "Business Strategy", 1); err != nil {
			return nil, err
		}
	}
	if st.Intent.Has(contract.AgentOps) {
		if err := runDebateStep(ctx, st, roster, sink, contract.AgentOps,
			"Planning Operations", "Operations Planned",
			"OperationsAgent", "operations", "ops", "Operations Plan", 1); err != nil {
			return nil, err
		}
	}
	if st.Intent.Has(contract.AgentFinance) {
		finance, ok := roster.Get(contract.AgentFinance)
		if !ok {
			return st, nil
		}
		sink.Publish(contract.Timeline(finance.DisplayName(), "Validating Financial Viability", contract.TimelinePending))

		result, err := finance.Run(ctx, st.Memory.Sanitized())
		if err != nil {
			return nil, err
		}
		verdict, err := decodeInto[financeVerdict](result)
		if err != nil {
			return nil, err
		}

		st.Memory.SaveArtifact("FinanceAgent", "financials", verdict.Financials)
		if strings.EqualFold(verdict.Decision, string(contract.DecisionFail)) {
			reason := "Financials not viable."
			if verdict.RevisionRequest != nil && strings.TrimSpace(verdict.RevisionRequest.Issue) != "" {
				reason = verdict.RevisionRequest.Issue
			}
			st.Memory.LogFinancialCheck(contract.DecisionFail, reason)
		} else {
			st.Memory.LogFinancialCheck(contract.DecisionPass, "Plan is financially sound.")
		}

		sink.Publish(contract.Artifact("finance", "Financial Model", artifactJSON(verdict.Financials), 1))
		sink.Publish(contract.Timeline(finance.DisplayName(), "Task Complete", contract.TimelineAccepted))
	}
	return st, nil
}
