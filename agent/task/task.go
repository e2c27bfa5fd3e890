// Package task holds the read-only task catalog and resolves the declared run order.
package task

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
)

// DefaultSequence keeps the order the service has always run: analysis, then verification.
var DefaultSequence = []contractx.TaskName{
	contractx.TaskAnalyzeFinancialDocument,
	contractx.TaskVerification,
}

var FullSequence = []contractx.TaskName{
	contractx.TaskVerification,
	contractx.TaskAnalyzeFinancialDocument,
	contractx.TaskInvestmentAnalysis,
	contractx.TaskRiskAssessment,
}

type Catalog struct {
	byName map[contractx.TaskName]contractx.TaskDefinition
}

func NewCatalog(set promptx.PromptSet) (*Catalog, error) {
	byName := make(map[contractx.TaskName]contractx.TaskDefinition, len(set.Tasks))
	for _, p := range set.Tasks {
		name := contractx.TaskName(strings.TrimSpace(p.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: task without name", contractx.ErrPromptMissing)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("%w: task=%s declared twice", contractx.ErrValidation, name)
		}
		if strings.TrimSpace(p.Description) == "" || strings.TrimSpace(p.Agent) == "" {
			return nil, fmt.Errorf("%w: task=%s needs description and agent", contractx.ErrPromptMissing, name)
		}
		byName[name] = contractx.TaskDefinition{
			Name:           name,
			Description:    p.Description,
			ExpectedOutput: p.ExpectedOutput,
			Agent:          contractx.AgentRole(p.Agent),
			Tools:          append([]string(nil), p.Tools...),
		}
	}
	return &Catalog{byName: byName}, nil
}

func MustNewCatalog(set promptx.PromptSet) *Catalog {
	c, err := NewCatalog(set)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns a copy of the named definition.
func (c *Catalog) Get(name contractx.TaskName) (contractx.TaskDefinition, error) {
	def, ok := c.byName[name]
	if !ok {
		return contractx.TaskDefinition{}, fmt.Errorf("%w: task=%s", contractx.ErrUnknownTask, name)
	}
	def.Tools = append([]string(nil), def.Tools...)
	return def, nil
}

// Sequence resolves names in the declared order.
func (c *Catalog) Sequence(names []contractx.TaskName) ([]contractx.TaskDefinition, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: task sequence is empty", contractx.ErrValidation)
	}
	seen := make(map[contractx.TaskName]struct{}, len(names))
	out := make([]contractx.TaskDefinition, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: task=%s appears twice in sequence", contractx.ErrValidation, name)
		}
		seen[name] = struct{}{}

		def, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// ParseNames splits a comma separated list such as PIPELINE_TASKS.
func ParseNames(raw []string) []contractx.TaskName {
	out := make([]contractx.TaskName, 0, len(raw))
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, contractx.TaskName(part))
			}
		}
	}
	return out
}
