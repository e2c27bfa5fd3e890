package contract

import "context"

// Tool is a text-in, text-out capability an agent may call while reasoning.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input string) (string, error)
}

type Agent interface {
	Definition() AgentDefinition
	Execute(ctx context.Context, req AgentRequest) (string, error)
}

type Crew interface {
	Agent(role AgentRole) (Agent, error)
}

// ToolBuilder creates the tools of one run, bound to that run's document.
type ToolBuilder interface {
	Build(names []string, documentPath string) ([]Tool, error)
}
