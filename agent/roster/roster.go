// Package roster constructs the fixed agent set once at startup. The roster
// is immutable and reused across runs; all per-run state lives in shared
// memory.
package roster

import (
	"context"
	"fmt"

	"github.com/founding-ai/orchestra/agent/capability"
	"github.com/founding-ai/orchestra/agent/contract"
	llmx "github.com/founding-ai/orchestra/agent/llm"
	promptx "github.com/founding-ai/orchestra/agent/prompt"
)

type entry struct {
	id           contract.AgentID
	display      string
	attachImages bool
}

// The roster order is also the iteration order reported by IDs.
var entries = []entry{
	{id: contract.AgentIntent, display: "Intent Analyzer Agent"},
	{id: contract.AgentPlanner, display: "Orchestrator Agent"},
	{id: contract.AgentStrategy, display: "Strategy Agent"},
	{id: contract.AgentOps, display: "Operations Agent"},
	{id: contract.AgentFinance, display: "Finance Agent"},
	{id: contract.AgentDesign, display: "Design Agent"},
	{id: contract.AgentMarketing, display: "Marketing Agent"},
	{id: contract.AgentTech, display: "Tech Agent"},
	{id: contract.AgentSynthesis, display: "Synthesis Agent"},
	{id: contract.AgentRenovation, display: "Renovation Agent", attachImages: true},
	{id: contract.AgentDailyPlanner, display: "Daily Planner"},
	{id: contract.AgentOpsIntel, display: "Ops Intelligence"},
	{id: contract.AgentFinanceIntel, display: "Finance Intelligence"},
	{id: contract.AgentDecisionAdvisor, display: "Decision Advisor"},
}

type rosterImpl struct {
	agents map[contract.AgentID]contract.Capability
	order  []contract.AgentID
}

func (r *rosterImpl) Get(id contract.AgentID) (contract.Capability, bool) {
	a, ok := r.agents[id]
	return a, ok
}

func (r *rosterImpl) IDs() []contract.AgentID {
	return append([]contract.AgentID(nil), r.order...)
}

// New builds every agent with its role prompt and resolved model.
func New(ctx context.Context, cfg llmx.Config) (contract.Roster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts, err := promptx.Load()
	if err != nil {
		return nil, err
	}

	r := &rosterImpl{
		agents: make(map[contract.AgentID]contract.Capability, len(entries)),
		order:  make([]contract.AgentID, 0, len(entries)),
	}

	for _, e := range entries {
		modelCfg := cfg.OpenRouterFor(e.id)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for agent %s: %v", contract.ErrModelInvoke, e.id, err)
		}

		agent, err := capability.New(ctx, capability.Spec{
			ID:           e.id,
			DisplayName:  e.display,
			Prompt:       prompts[e.id],
			AttachImages: e.attachImages,
		}, chatModel)
		if err != nil {
			return nil, err
		}

		r.agents[e.id] = agent
		r.order = append(r.order, e.id)
	}

	return r, nil
}
