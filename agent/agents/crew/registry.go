package crew

import (
	"errors"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	llmx "github.com/tanpawarit/financial-document-analyzer/agent/llm"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
)

// Registry owns one runnable agent per definition, all sharing one model handle.
type Registry struct {
	agents  map[contractx.AgentRole]*crewAgent
	roles   []contractx.AgentRole
	tools   contractx.ToolBuilder
	prompts promptx.PromptSet
}

var _ contractx.Crew = (*Registry)(nil)

func NewRegistry(
	chatModel einomodel.ToolCallingChatModel,
	prompts promptx.PromptSet,
	tools contractx.ToolBuilder,
) (*Registry, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if tools == nil {
		return nil, errors.New("tool builder is required")
	}

	defs, err := Definitions(prompts)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		agents:  make(map[contractx.AgentRole]*crewAgent, len(defs)),
		roles:   make([]contractx.AgentRole, 0, len(defs)),
		tools:   tools,
		prompts: prompts,
	}
	for _, def := range defs {
		r.agents[def.Role] = &crewAgent{
			def:      def,
			model:    llmx.Throttle(chatModel, def.MaxRPM),
			registry: r,
		}
		r.roles = append(r.roles, def.Role)
	}
	return r, nil
}

func (r *Registry) Agent(role contractx.AgentRole) (contractx.Agent, error) {
	a, ok := r.agents[role]
	if !ok {
		return nil, fmt.Errorf("%w: role=%s", contractx.ErrUnknownAgent, role)
	}
	return a, nil
}

func (r *Registry) Roles() []contractx.AgentRole {
	return append([]contractx.AgentRole(nil), r.roles...)
}
