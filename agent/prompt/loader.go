package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed template/agents.yaml
	agentsRaw []byte

	//go:embed template/tasks.yaml
	tasksRaw []byte

	//go:embed template/agent_system.txt
	agentSystemRaw string

	//go:embed template/task_input.txt
	taskInputRaw string

	//go:embed template/delegate_input.txt
	delegateInputRaw string
)

type AgentPrompt struct {
	Role            string   `yaml:"role"`
	Title           string   `yaml:"title"`
	Goal            string   `yaml:"goal"`
	Backstory       string   `yaml:"backstory"`
	Tools           []string `yaml:"tools"`
	MaxIter         int      `yaml:"max_iter"`
	MaxRPM          int      `yaml:"max_rpm"`
	AllowDelegation bool     `yaml:"allow_delegation"`
}

type TaskPrompt struct {
	Name           string   `yaml:"name"`
	Agent          string   `yaml:"agent"`
	Tools          []string `yaml:"tools"`
	Description    string   `yaml:"description"`
	ExpectedOutput string   `yaml:"expected_output"`
}

// PromptSet holds the parsed agent and task catalogs plus the shared templates.
type PromptSet struct {
	Agents        []AgentPrompt
	Tasks         []TaskPrompt
	AgentSystem   string
	TaskInput     string
	DelegateInput string
}

// LoadPromptSet parses the embedded catalogs. Safe to call concurrently.
func LoadPromptSet() (PromptSet, error) {
	var agents struct {
		Agents []AgentPrompt `yaml:"agents"`
	}
	if err := yaml.Unmarshal(agentsRaw, &agents); err != nil {
		return PromptSet{}, fmt.Errorf("%w: parse agents catalog: %v", contractx.ErrPromptMissing, err)
	}

	var tasks struct {
		Tasks []TaskPrompt `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(tasksRaw, &tasks); err != nil {
		return PromptSet{}, fmt.Errorf("%w: parse tasks catalog: %v", contractx.ErrPromptMissing, err)
	}

	set := PromptSet{
		Agents:        agents.Agents,
		Tasks:         tasks.Tasks,
		AgentSystem:   strings.TrimSpace(agentSystemRaw),
		TaskInput:     strings.TrimSpace(taskInputRaw),
		DelegateInput: strings.TrimSpace(delegateInputRaw),
	}
	if len(set.Agents) == 0 || len(set.Tasks) == 0 {
		return PromptSet{}, fmt.Errorf("%w: empty agent or task catalog", contractx.ErrPromptMissing)
	}
	return set, nil
}

func MustLoadPromptSet() PromptSet {
	set, err := LoadPromptSet()
	if err != nil {
		panic(err)
	}
	return set
}

// Render substitutes {name} placeholders in tpl. Values are inserted verbatim.
func Render(ctx context.Context, tpl string, vars map[string]any) (string, error) {
	template := einoprompt.FromMessages(schema.FString, schema.UserMessage(tpl))
	msgs, err := template.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: render template: %v", contractx.ErrPromptMissing, err)
	}
	if len(msgs) != 1 || msgs[0] == nil {
		return "", fmt.Errorf("%w: render template produced %d messages", contractx.ErrPromptMissing, len(msgs))
	}
	return msgs[0].Content, nil
}
