package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
	toolx "github.com/tanpawarit/financial-document-analyzer/agent/tool"
)

const ToolDelegateWork = "delegate_work"

type delegateTool struct {
	registry  *Registry
	from      contractx.AgentDefinition
	req       contractx.AgentRequest
	coworkers []contractx.AgentDefinition
}

var _ toolx.MultiArgTool = delegateTool{}

// delegateTool returns nil when from has no coworkers.
func (r *Registry) delegateTool(from contractx.AgentDefinition, req contractx.AgentRequest) contractx.Tool {
	coworkers := make([]contractx.AgentDefinition, 0, len(r.roles))
	for _, role := range r.roles {
		if role == from.Role {
			continue
		}
		coworkers = append(coworkers, r.agents[role].def)
	}
	if len(coworkers) == 0 {
		return nil
	}
	return delegateTool{registry: r, from: from, req: req, coworkers: coworkers}
}

func (d delegateTool) Name() string { return ToolDelegateWork }

func (d delegateTool) Description() string {
	names := make([]string, 0, len(d.coworkers))
	for _, c := range d.coworkers {
		names = append(names, fmt.Sprintf("%s (%s)", c.Role, c.Title))
	}
	return "Delegate a specific task to one of the following coworkers: " + strings.Join(names, ", ") +
		". Provide the coworker, the task with every detail they need, and the context you already have; they know nothing else."
}

func (d delegateTool) Args() []toolx.Arg {
	return []toolx.Arg{
		{Name: "coworker", Desc: "Role of the coworker to delegate to", Required: true},
		{Name: "task", Desc: "The task to delegate", Required: true},
		{Name: "context", Desc: "Everything the coworker needs to know about the task"},
	}
}

type delegateArgs struct {
	Coworker string `json:"coworker"`
	Task     string `json:"task"`
	Context  string `json:"context"`
}

// Invoke runs the coworker once without delegation. Argument problems are
// answered in-band; coworker failures abort the run.
func (d delegateTool) Invoke(ctx context.Context, input string) (string, error) {
	var args delegateArgs
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return fmt.Sprintf("Error executing tool. Arguments must be a JSON object with coworker, task and context: %v", err), nil
	}

	coworker, ok := d.resolve(args.Coworker)
	if !ok {
		return d.unknownCoworker(args.Coworker), nil
	}
	if strings.TrimSpace(args.Task) == "" {
		return "Error executing tool. The task to delegate is empty.", nil
	}

	prompt, err := promptx.Render(ctx, d.registry.prompts.DelegateInput, map[string]any{
		"from":          d.from.Title,
		"task":          strings.TrimSpace(args.Task),
		"context":       strings.TrimSpace(args.Context),
		"document_path": d.req.DocumentPath,
	})
	if err != nil {
		return "", err
	}

	return d.registry.agents[coworker].run(ctx, contractx.AgentRequest{
		Task:         d.req.Task,
		Query:        d.req.Query,
		DocumentPath: d.req.DocumentPath,
		Prompt:       prompt,
	}, false)
}

// resolve accepts a role id or a title, case-insensitively.
func (d delegateTool) resolve(name string) (contractx.AgentRole, bool) {
	name = strings.TrimSpace(name)
	for _, c := range d.coworkers {
		if strings.EqualFold(name, string(c.Role)) || strings.EqualFold(name, c.Title) {
			return c.Role, true
		}
	}
	return "", false
}

func (d delegateTool) unknownCoworker(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error executing tool. coworker %q not found, it must be one of the following options:", name)
	for _, c := range d.coworkers {
		fmt.Fprintf(&b, "\n- %s", c.Role)
	}
	return b.String()
}
