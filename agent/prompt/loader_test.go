package prompt

import (
	"context"
	"strings"
	"testing"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set, err := LoadPromptSet()
	if err != nil {
		t.Fatalf("LoadPromptSet() error = %v", err)
	}
	if len(set.Agents) != 4 {
		t.Fatalf("expected 4 agents, got %d", len(set.Agents))
	}
	if len(set.Tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(set.Tasks))
	}
	if set.AgentSystem == "" || set.TaskInput == "" || set.DelegateInput == "" {
		t.Fatal("shared templates must not be empty")
	}

	for _, a := range set.Agents {
		if a.Title == "" || a.Goal == "" || a.Backstory == "" || len(a.Tools) == 0 {
			t.Fatalf("incomplete agent prompt: %#v", a)
		}
		if a.MaxIter <= 0 || a.MaxRPM <= 0 {
			t.Fatalf("agent %s missing limits", a.Role)
		}
	}
	for _, task := range set.Tasks {
		if task.Agent == "" || task.ExpectedOutput == "" || len(task.Tools) == 0 {
			t.Fatalf("incomplete task prompt: %#v", task)
		}
	}
}

func TestTaskDescriptionsReferenceQuery(t *testing.T) {
	t.Parallel()

	set := MustLoadPromptSet()
	for _, task := range set.Tasks {
		if task.Name == "verification" {
			continue
		}
		if !strings.Contains(task.Description, "{query}") {
			t.Fatalf("task %s description does not reference {query}", task.Name)
		}
	}
}

func TestRenderInsertsValuesVerbatim(t *testing.T) {
	t.Parallel()

	out, err := Render(context.Background(), "Query: {query}", map[string]any{
		"query": "What is {revenue} for Q2?",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "Query: What is {revenue} for Q2?" {
		t.Fatalf("unexpected output: %q", out)
	}
}
