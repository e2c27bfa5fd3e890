package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
	taskx "github.com/tanpawarit/financial-document-analyzer/agent/task"
)

type callLog struct {
	mu    sync.Mutex
	roles []contractx.AgentRole
}

func (l *callLog) add(role contractx.AgentRole) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roles = append(l.roles, role)
}

type fakeAgent struct {
	role contractx.AgentRole
	out  string
	err  error
	log  *callLog
	reqs []contractx.AgentRequest
}

func (a *fakeAgent) Definition() contractx.AgentDefinition {
	return contractx.AgentDefinition{Role: a.role}
}

func (a *fakeAgent) Execute(_ context.Context, req contractx.AgentRequest) (string, error) {
	a.log.add(a.role)
	a.reqs = append(a.reqs, req)
	return a.out, a.err
}

type fakeCrew struct {
	agents map[contractx.AgentRole]*fakeAgent
}

func newFakeCrew(log *callLog) *fakeCrew {
	c := &fakeCrew{agents: map[contractx.AgentRole]*fakeAgent{}}
	for _, role := range []contractx.AgentRole{
		contractx.RoleVerifier,
		contractx.RoleFinancialAnalyst,
		contractx.RoleInvestmentAdvisor,
		contractx.RoleRiskAssessor,
	} {
		c.agents[role] = &fakeAgent{role: role, out: "output of " + string(role), log: log}
	}
	return c
}

func (c *fakeCrew) Agent(role contractx.AgentRole) (contractx.Agent, error) {
	a, ok := c.agents[role]
	if !ok {
		return nil, contractx.ErrUnknownAgent
	}
	return a, nil
}

type fakeTools struct{}

func (fakeTools) Build([]string, string) ([]contractx.Tool, error) { return nil, nil }

func sequence(t *testing.T, names []contractx.TaskName) []contractx.TaskDefinition {
	t.Helper()
	defs, err := taskx.MustNewCatalog(promptx.MustLoadPromptSet()).Sequence(names)
	if err != nil {
		t.Fatalf("Sequence() error = %v", err)
	}
	return defs
}

func newTestOrchestrator(t *testing.T, crew contractx.Crew, names []contractx.TaskName, cfg Config) *Orchestrator {
	t.Helper()
	o, err := New(crew, fakeTools{}, sequence(t, names), promptx.MustLoadPromptSet().TaskInput, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestRunDefaultSequence(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	crew := newFakeCrew(log)
	o := newTestOrchestrator(t, crew, taskx.DefaultSequence, Config{})

	res, err := o.Run(context.Background(), "   ", "/data/financial_document_1.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Analysis != "output of verifier" {
		t.Fatalf("expected last task output, got %q", res.Analysis)
	}
	if res.RunID == "" || len(res.Outputs) != 2 {
		t.Fatalf("unexpected result: %#v", res)
	}

	want := []contractx.AgentRole{contractx.RoleFinancialAnalyst, contractx.RoleVerifier}
	if len(log.roles) != 2 || log.roles[0] != want[0] || log.roles[1] != want[1] {
		t.Fatalf("unexpected agent order: %v", log.roles)
	}

	analystReq := crew.agents[contractx.RoleFinancialAnalyst].reqs[0]
	if analystReq.Query != "Analyze this financial document for investment insights" {
		t.Fatalf("blank query not defaulted: %q", analystReq.Query)
	}
	if !strings.Contains(analystReq.Prompt, "address the user's query: Analyze this financial document") {
		t.Fatalf("task description not rendered: %q", analystReq.Prompt)
	}
	verifierReq := crew.agents[contractx.RoleVerifier].reqs[0]
	if len(verifierReq.Context) != 1 || verifierReq.Context[0].Output != "output of financial_analyst" {
		t.Fatalf("verifier context: %#v", verifierReq.Context)
	}
}

func TestRunFullSequenceFailsAtSecondTask(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	crew := newFakeCrew(log)
	crew.agents[contractx.RoleFinancialAnalyst].err = contractx.ErrModelInvoke
	o := newTestOrchestrator(t, crew, taskx.FullSequence, Config{})

	res, err := o.Run(context.Background(), "q", "/data/doc.pdf")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
	if want := "task=analyze_financial_document: model invoke failed"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
	if res.Analysis != "" || res.RunID == "" {
		t.Fatalf("unexpected partial result: %#v", res)
	}
	if len(log.roles) != 2 || log.roles[0] != contractx.RoleVerifier || log.roles[1] != contractx.RoleFinancialAnalyst {
		t.Fatalf("later tasks must not run, calls=%v", log.roles)
	}
}

func TestRunStrictExtractionStopsBeforeAgents(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	o := newTestOrchestrator(t, newFakeCrew(log), taskx.DefaultSequence, Config{StrictExtraction: true})

	_, err := o.Run(context.Background(), "q", filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, contractx.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if len(log.roles) != 0 {
		t.Fatalf("no agent may run after failed preflight, calls=%v", log.roles)
	}
}

func TestRunWithoutStrictExtractionReachesAgents(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	o := newTestOrchestrator(t, newFakeCrew(log), []contractx.TaskName{contractx.TaskVerification}, Config{})

	if _, err := o.Run(context.Background(), "q", filepath.Join(t.TempDir(), "missing.pdf")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(log.roles) != 1 {
		t.Fatalf("expected one agent call, got %v", log.roles)
	}
}

func TestRunRequiresDocumentPath(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeCrew(&callLog{}), taskx.DefaultSequence, Config{})
	if _, err := o.Run(context.Background(), "q", " "); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewValidatesCollaborators(t *testing.T) {
	t.Parallel()

	tpl := promptx.MustLoadPromptSet().TaskInput
	seq := sequence(t, taskx.DefaultSequence)
	crew := newFakeCrew(&callLog{})

	if _, err := New(nil, fakeTools{}, seq, tpl, Config{}); err == nil {
		t.Fatal("expected error without crew")
	}
	if _, err := New(crew, nil, seq, tpl, Config{}); err == nil {
		t.Fatal("expected error without tools")
	}
	if _, err := New(crew, fakeTools{}, nil, tpl, Config{}); err == nil {
		t.Fatal("expected error without sequence")
	}

	delete(crew.agents, contractx.RoleVerifier)
	if _, err := New(crew, fakeTools{}, seq, tpl, Config{}); !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestSequenceNames(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeCrew(&callLog{}), taskx.FullSequence, Config{StrictExtraction: true})
	got := o.Sequence()
	if len(got) != 4 || got[0] != contractx.TaskVerification || got[3] != contractx.TaskRiskAssessment {
		t.Fatalf("unexpected sequence: %v", got)
	}
	if taskNodeName(3, got[3]) != "task_03_risk_assessment" {
		t.Fatalf("unexpected node name: %s", taskNodeName(3, got[3]))
	}
}
