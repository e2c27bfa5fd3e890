package crew

import (
	"fmt"
	"strings"
	"sync"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
)

var knownRoles = map[contractx.AgentRole]struct{}{
	contractx.RoleVerifier:          {},
	contractx.RoleFinancialAnalyst:  {},
	contractx.RoleInvestmentAdvisor: {},
	contractx.RoleRiskAssessor:      {},
}

var builtin = sync.OnceValues(func() (map[contractx.AgentRole]contractx.AgentDefinition, error) {
	set, err := promptx.LoadPromptSet()
	if err != nil {
		return nil, err
	}
	defs, err := Definitions(set)
	if err != nil {
		return nil, err
	}
	byRole := make(map[contractx.AgentRole]contractx.AgentDefinition, len(defs))
	for _, d := range defs {
		byRole[d.Role] = d
	}
	return byRole, nil
})

// Definitions converts and validates the agent catalog, keeping catalog order.
func Definitions(set promptx.PromptSet) ([]contractx.AgentDefinition, error) {
	out := make([]contractx.AgentDefinition, 0, len(set.Agents))
	seen := make(map[contractx.AgentRole]struct{}, len(set.Agents))
	for _, p := range set.Agents {
		role := contractx.AgentRole(strings.TrimSpace(p.Role))
		if _, ok := knownRoles[role]; !ok {
			return nil, fmt.Errorf("%w: role=%s", contractx.ErrUnknownAgent, role)
		}
		if _, dup := seen[role]; dup {
			return nil, fmt.Errorf("%w: role=%s declared twice", contractx.ErrValidation, role)
		}
		seen[role] = struct{}{}

		if strings.TrimSpace(p.Goal) == "" || strings.TrimSpace(p.Backstory) == "" {
			return nil, fmt.Errorf("%w: role=%s needs goal and backstory", contractx.ErrPromptMissing, role)
		}
		if p.MaxIter <= 0 {
			return nil, fmt.Errorf("%w: role=%s max_iter must be positive", contractx.ErrValidation, role)
		}

		out = append(out, contractx.AgentDefinition{
			Role:            role,
			Title:           strings.TrimSpace(p.Title),
			Goal:            strings.TrimSpace(p.Goal),
			Backstory:       strings.TrimSpace(p.Backstory),
			Tools:           append([]string(nil), p.Tools...),
			MaxIter:         p.MaxIter,
			MaxRPM:          p.MaxRPM,
			AllowDelegation: p.AllowDelegation,
		})
	}
	if len(out) != len(knownRoles) {
		return nil, fmt.Errorf("%w: expected %d agents, got %d", contractx.ErrPromptMissing, len(knownRoles), len(out))
	}
	return out, nil
}

func Verifier() contractx.AgentDefinition          { return mustDefinition(contractx.RoleVerifier) }
func FinancialAnalyst() contractx.AgentDefinition  { return mustDefinition(contractx.RoleFinancialAnalyst) }
func InvestmentAdvisor() contractx.AgentDefinition { return mustDefinition(contractx.RoleInvestmentAdvisor) }
func RiskAssessor() contractx.AgentDefinition      { return mustDefinition(contractx.RoleRiskAssessor) }

func mustDefinition(role contractx.AgentRole) contractx.AgentDefinition {
	defs, err := builtin()
	if err != nil {
		panic(err)
	}
	return copyDefinition(defs[role])
}

func copyDefinition(d contractx.AgentDefinition) contractx.AgentDefinition {
	d.Tools = append([]string(nil), d.Tools...)
	return d
}
