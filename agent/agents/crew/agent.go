package crew

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
	toolx "github.com/tanpawarit/financial-document-analyzer/agent/tool"
)

type crewAgent struct {
	def      contractx.AgentDefinition
	model    einomodel.ToolCallingChatModel
	registry *Registry
}

func (a *crewAgent) Definition() contractx.AgentDefinition {
	return copyDefinition(a.def)
}

func (a *crewAgent) Execute(ctx context.Context, req contractx.AgentRequest) (string, error) {
	return a.run(ctx, req, a.def.AllowDelegation)
}

func (a *crewAgent) run(ctx context.Context, req contractx.AgentRequest, allowDelegation bool) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("%w: agent=%s prompt is empty", contractx.ErrValidation, a.def.Role)
	}

	system, err := a.systemPrompt(ctx, req.Query)
	if err != nil {
		return "", err
	}

	tools := append([]contractx.Tool(nil), req.Tools...)
	if req.Tools == nil {
		tools, err = a.registry.tools.Build(a.def.Tools, req.DocumentPath)
		if err != nil {
			return "", err
		}
	}
	if allowDelegation {
		if d := a.registry.delegateTool(a.def, req); d != nil {
			tools = append(tools, d)
		}
	}

	logger := log.Ctx(ctx).With().Str("agent", string(a.def.Role)).Logger()
	logger.Debug().Int("tools", len(tools)).Bool("delegation", allowDelegation).Msg("agent started")

	msg, err := a.generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(req.Prompt),
	}, tools)
	if err != nil {
		return "", fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, a.def.Role, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: agent=%s returned an empty answer", contractx.ErrSchemaViolation, a.def.Role)
	}

	logger.Debug().Int("answer_len", len(msg.Content)).Msg("agent finished")
	return msg.Content, nil
}

func (a *crewAgent) generate(ctx context.Context, msgs []*schema.Message, tools []contractx.Tool) (*schema.Message, error) {
	if len(tools) == 0 {
		return a.model.Generate(ctx, msgs)
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: a.model,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: toolx.ToEino(tools),
		},
		MaxStep: maxSteps(a.def.MaxIter),
	})
	if err != nil {
		return nil, fmt.Errorf("build react agent: %w", err)
	}
	return agent.Generate(ctx, msgs)
}

func (a *crewAgent) systemPrompt(ctx context.Context, query string) (string, error) {
	goal, err := promptx.Render(ctx, a.def.Goal, map[string]any{"query": query})
	if err != nil {
		return "", err
	}
	return promptx.Render(ctx, a.registry.prompts.AgentSystem, map[string]any{
		"title":     a.def.Title,
		"backstory": a.def.Backstory,
		"goal":      goal,
	})
}

// maxSteps converts an iteration budget into react graph steps: one model and
// one tools node per iteration plus the closing model call.
func maxSteps(maxIter int) int {
	if maxIter <= 0 {
		maxIter = 1
	}
	return 2*maxIter + 1
}
