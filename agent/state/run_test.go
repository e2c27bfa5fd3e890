package state

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
)

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	run := NewExecutionContext("run-1", "q", "/tmp/doc.pdf")
	if run.Status != RunNotStarted || run.CurrentTask != -1 {
		t.Fatalf("unexpected initial state: %#v", run)
	}

	if err := run.Start(now); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i, name := range []contractx.TaskName{contractx.TaskAnalyzeFinancialDocument, contractx.TaskVerification} {
		if err := run.BeginTask(i); err != nil {
			t.Fatalf("BeginTask(%d) error = %v", i, err)
		}
		if got := len(run.PriorOutputs()); got != i {
			t.Fatalf("prior outputs for task %d = %d", i, got)
		}
		if err := run.AppendOutput(contractx.TaskOutput{Task: name, Output: string(name)}); err != nil {
			t.Fatalf("AppendOutput() error = %v", err)
		}
	}
	if err := run.Complete(now.Add(time.Minute)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	last, ok := run.LastOutput()
	if !ok || last.Task != contractx.TaskVerification {
		t.Fatalf("unexpected last output: %#v", last)
	}
	if !run.Terminal() || run.FinishedAt.Sub(run.StartedAt) != time.Minute {
		t.Fatalf("unexpected terminal state: %#v", run)
	}
}

func TestRunRejectsOutOfOrderTasks(t *testing.T) {
	t.Parallel()

	run := NewExecutionContext("run-2", "q", "doc.pdf")
	if err := run.BeginTask(0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("BeginTask before Start error = %v", err)
	}
	_ = run.Start(time.Now())

	if err := run.BeginTask(1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("BeginTask(1) error = %v, want ErrInvalidTransition", err)
	}
	_ = run.BeginTask(0)
	_ = run.AppendOutput(contractx.TaskOutput{Output: "a"})
	if err := run.AppendOutput(contractx.TaskOutput{Output: "b"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second AppendOutput error = %v, want ErrInvalidTransition", err)
	}
}

func TestRunCompleteWithoutOutput(t *testing.T) {
	t.Parallel()

	run := NewExecutionContext("run-3", "q", "doc.pdf")
	_ = run.Start(time.Now())
	if err := run.Complete(time.Now()); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("Complete() error = %v, want ErrNoOutput", err)
	}
}

func TestRunFailIsTerminal(t *testing.T) {
	t.Parallel()

	run := NewExecutionContext("run-4", "q", "doc.pdf")
	_ = run.Start(time.Now())
	_ = run.BeginTask(0)

	first := errors.New("model unavailable")
	run.Fail(first, time.Now())
	run.Fail(errors.New("second"), time.Now())

	if run.Status != RunFailed || run.Failure != "model unavailable" {
		t.Fatalf("unexpected failed state: %#v", run)
	}
	if run.Err() != first {
		t.Fatalf("Err() = %v, want the first failure", run.Err())
	}
	if err := run.AppendOutput(contractx.TaskOutput{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("AppendOutput after Fail error = %v", err)
	}
	if err := run.Start(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Start after Fail error = %v", err)
	}
}
