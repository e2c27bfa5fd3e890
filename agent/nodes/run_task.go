package orchestratornode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
)

type TaskDeps struct {
	Crew      contractx.Crew
	Tools     contractx.ToolBuilder
	TaskInput string // template with {description} {expected_output} {document_path} {context}
}

// RunTask executes task index i of the run. Any failure marks the run failed.
func RunTask(ctx context.Context, in *GraphState, i int, def contractx.TaskDefinition, deps TaskDeps) (*GraphState, error) {
	if in == nil || in.Run == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	out, err := runTask(ctx, in, i, def, deps)
	if err != nil {
		in.Run.Fail(err, in.Now())
		return nil, err
	}
	if err := in.Run.AppendOutput(out); err != nil {
		in.Run.Fail(err, in.Now())
		return nil, err
	}
	return in, nil
}

func runTask(ctx context.Context, in *GraphState, i int, def contractx.TaskDefinition, deps TaskDeps) (contractx.TaskOutput, error) {
	if err := in.Run.BeginTask(i); err != nil {
		return contractx.TaskOutput{}, err
	}

	logger := log.Ctx(ctx).With().
		Int("task_index", i).
		Str("task", string(def.Name)).
		Str("agent", string(def.Agent)).
		Logger()
	ctx = logger.WithContext(ctx)

	agent, err := deps.Crew.Agent(def.Agent)
	if err != nil {
		return contractx.TaskOutput{}, err
	}

	prompt, err := renderTaskInput(ctx, in, def, deps.TaskInput)
	if err != nil {
		return contractx.TaskOutput{}, err
	}

	tools, err := deps.Tools.Build(def.Tools, in.Run.DocumentPath)
	if err != nil {
		return contractx.TaskOutput{}, err
	}

	started := time.Now()
	logger.Info().Msg("task started")

	answer, err := agent.Execute(ctx, contractx.AgentRequest{
		Task:           def.Name,
		Query:          in.Run.Query,
		DocumentPath:   in.Run.DocumentPath,
		Prompt:         prompt,
		ExpectedOutput: def.ExpectedOutput,
		Context:        in.Run.PriorOutputs(),
		Tools:          tools,
	})
	if err != nil {
		logger.Error().Err(err).Dur("took", time.Since(started)).Msg("task failed")
		return contractx.TaskOutput{}, fmt.Errorf("task=%s: %w", def.Name, err)
	}

	logger.Info().Dur("took", time.Since(started)).Int("output_len", len(answer)).Msg("task completed")
	return contractx.TaskOutput{
		Task:   def.Name,
		Agent:  def.Agent,
		Output: answer,
	}, nil
}

func renderTaskInput(ctx context.Context, in *GraphState, def contractx.TaskDefinition, tpl string) (string, error) {
	description, err := promptx.Render(ctx, def.Description, map[string]any{"query": in.Run.Query})
	if err != nil {
		return "", fmt.Errorf("task=%s description: %w", def.Name, err)
	}
	return promptx.Render(ctx, tpl, map[string]any{
		"description":     description,
		"expected_output": def.ExpectedOutput,
		"document_path":   in.Run.DocumentPath,
		"context":         priorContext(in.Run.PriorOutputs()),
	})
}

func priorContext(outputs []contractx.TaskOutput) string {
	if len(outputs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("This is the context you're working with, produced by the previous tasks:")
	for _, o := range outputs {
		fmt.Fprintf(&b, "\n\n### %s (%s)\n%s", o.Task, o.Agent, o.Output)
	}
	return b.String()
}
