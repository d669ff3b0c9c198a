package contract

import "time"

type AgentID string

const (
	AgentIntent          AgentID = "intent"
	AgentPlanner         AgentID = "planner"
	AgentStrategy        AgentID = "strategy"
	AgentOps             AgentID = "ops"
	AgentFinance         AgentID = "finance"
	AgentDesign          AgentID = "design"
	AgentMarketing       AgentID = "marketing"
	AgentTech            AgentID = "tech"
	AgentSynthesis       AgentID = "synthesis"
	AgentRenovation      AgentID = "renovation"
	AgentDailyPlanner    AgentID = "daily_planner"
	AgentOpsIntel        AgentID = "ops_intel"
	AgentFinanceIntel    AgentID = "finance_intel"
	AgentDecisionAdvisor AgentID = "decision_advisor"
)

// RequiredAgentsAll is the router wildcard meaning every LAUNCH-mode agent.
const RequiredAgentsAll = "all"

type Mode string

const (
	ModeLaunch  Mode = "LAUNCH"
	ModeOperate Mode = "OPERATE"
)

// Intent is the routing verdict produced by the intent agent.
type Intent struct {
	Mode                  Mode              `json:"mode"`
	RequiredAgents        []string          `json:"required_agents"`
	Constraints           map[string]string `json:"constraints,omitempty"`
	MissingFields         []string          `json:"missing_fields,omitempty"`
	ClarificationQuestion string            `json:"clarification_question,omitempty"`
}

// Has reports whether the router selected the agent, directly or via the
// "all" wildcard.
func (i Intent) Has(id AgentID) bool {
	for _, a := range i.RequiredAgents {
		if a == string(id) || a == RequiredAgentsAll {
			return true
		}
	}
	return false
}

type Decision string

const (
	DecisionPass Decision = "PASS"
	DecisionFail Decision = "FAIL"
)

// RevisionRequest is an append-only audit record of a rejection. Resolved is
// never set by the core; resolution is implicit in the next debate iteration.
type RevisionRequest struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason"`
	Resolved  bool      `json:"resolved"`
}

// FinancialCheck records one Finance verdict, in call order.
type FinancialCheck struct {
	Timestamp time.Time `json:"timestamp"`
	Decision  Decision  `json:"decision"`
	Reason    string    `json:"reason"`
}

type RunStatus string

const (
	StatusInitialized RunStatus = "initialized"
	StatusPlanning    RunStatus = "planning"
	StatusExecuting   RunStatus = "executing"
	StatusRevising    RunStatus = "revising"
	StatusCompleted   RunStatus = "completed"
)

// Snapshot is the serialized view of shared memory handed to every agent.
// Agents never see each other's raw reasoning, only this accumulated state.
type Snapshot struct {
	UserIntent       string                    `json:"user_intent"`
	Constraints      map[string]string         `json:"constraints"`
	ExecutionPlan    []string                  `json:"execution_plan"`
	AgentOutputs     map[string]map[string]any `json:"agent_outputs"`
	RevisionRequests []RevisionRequest         `json:"revision_requests"`
	FinancialChecks  []FinancialCheck          `json:"financial_checks"`
	Images           []string                  `json:"images,omitempty"`
	Status           RunStatus                 `json:"status"`

	// Optional long-lived context merged in at run start.
	BusinessProfile map[string]any `json:"business_profile,omitempty"`
	Metrics         map[string]any `json:"metrics,omitempty"`
}
