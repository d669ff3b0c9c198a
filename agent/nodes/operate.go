package nodes

import (
	"context"

	"github.com/founding-ai/orchestra/agent/contract"
)

type operateSpec struct {
	agent      contract.AgentID
	action     string
	artifactID string
	title      string
	memoryKey  string
	resultKey  string
}

// OPERATE-mode agents are single-shot: one invocation, one artifact.
var operateSpecs = []operateSpec{
	{contract.AgentDailyPlanner, "Analyzing Today's Priorities", "daily_briefing", "Daily Briefing", "DailyPlanner", "daily_briefing"},
	{contract.AgentOpsIntel, "Monitoring System Health", "ops_report", "Ops Intelligence Report", "OpsIntel", "ops_report"},
	{contract.AgentFinanceIntel, "Reviewing Financial Health", "finance_review", "Financial Review", "FinanceIntel", "financial_review"},
	{contract.AgentDecisionAdvisor, "Synthesizing Decision", "decision_memo", "Decision Memo", "DecisionAdvisor", "decision_memo"},
}

// Operate runs whichever intelligence agents the router selected, each
// producing exactly one versioned artifact.
func Operate(
	ctx context.Context,
	st *RunState,
	roster contract.Roster,
	sink contract.Sink,
) (*RunState, error) {
	for _, spec := range operateSpecs {
		if !st.Intent.Has(spec.agent) {
			continue
		}
		agent, ok := roster.Get(spec.agent)
		if !ok {
			continue
		}

		sink.Publish(contract.Timeline(agent.DisplayName(), spec.action, contract.TimelinePending))

		result, err := agent.Run(ctx, st.Memory.Sanitized())
		if err != nil {
			return nil, err
		}

		sink.Publish(contract.Timeline(agent.DisplayName(), "Task Complete", contract.TimelineAccepted))

		content := result[spec.resultKey]
		if content == nil {
			content = result
		}
		st.Memory.SaveArtifact(spec.memoryKey, spec.resultKey, content)
		sink.Publish(contract.Artifact(spec.artifactID, spec.title, artifactJSON(content), 1))
	}
	return st, nil
}
