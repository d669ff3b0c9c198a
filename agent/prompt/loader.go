// Package prompt carries the role definitions of the agent roster. The texts
// are configuration data: the orchestration core never interprets them beyond
// handing them to the generation capability.
package prompt

import (
	"embed"
	"fmt"
	"strings"

	"github.com/founding-ai/orchestra/agent/contract"
)

//go:embed template/*.txt
var templates embed.FS

// Set maps every roster agent to its trimmed role definition.
type Set map[contract.AgentID]string

// Load reads all embedded role templates. The embed is compile-time, so a
// missing file is a build-time defect surfaced here once.
func Load() (Set, error) {
	ids := []contract.AgentID{
		contract.AgentIntent,
		contract.AgentPlanner,
		contract.AgentStrategy,
		contract.AgentOps,
		contract.AgentFinance,
		contract.AgentDesign,
		contract.AgentMarketing,
		contract.AgentTech,
		contract.AgentSynthesis,
		contract.AgentRenovation,
		contract.AgentDailyPlanner,
		contract.AgentOpsIntel,
		contract.AgentFinanceIntel,
		contract.AgentDecisionAdvisor,
	}

	set := make(Set, len(ids))
	for _, id := range ids {
		raw, err := templates.ReadFile(fmt.Sprintf("template/%s.txt", id))
		if err != nil {
			return nil, fmt.Errorf("load prompt for agent %s: %w", id, err)
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return nil, fmt.Errorf("prompt for agent %s is empty", id)
		}
		set[id] = text
	}
	return set, nil
}
