package state

import (
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
)

// RunStatus tracks one pipeline run: not_started -> running -> completed | failed.
type RunStatus string

const (
	RunNotStarted RunStatus = "not_started"
	RunRunning    RunStatus = "running"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

var (
	ErrInvalidTransition = errors.New("invalid run transition")
	ErrNoOutput          = errors.New("run has no task output")
)

// ExecutionContext is the in-memory state of a single analysis run. It is owned
// by one goroutine and never shared between requests.
type ExecutionContext struct {
	RunID        string `json:"run_id"`
	Query        string `json:"query"`
	DocumentPath string `json:"document_path"`

	Status      RunStatus              `json:"status"`
	CurrentTask int                    `json:"current_task"` // -1 before the first task
	Outputs     []contractx.TaskOutput `json:"outputs,omitempty"`
	Failure     string                 `json:"failure,omitempty"`

	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	cause error
}

func NewExecutionContext(runID, query, documentPath string) *ExecutionContext {
	return &ExecutionContext{
		RunID:        runID,
		Query:        query,
		DocumentPath: documentPath,
		Status:       RunNotStarted,
		CurrentTask:  -1,
	}
}

func (c *ExecutionContext) Start(now time.Time) error {
	if c == nil {
		return errors.New("nil execution context")
	}
	if c.Status != RunNotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, c.Status)
	}
	c.Status = RunRunning
	c.StartedAt = now.UTC()
	return nil
}

// BeginTask moves the cursor to task index i. Tasks must begin in order.
func (c *ExecutionContext) BeginTask(i int) error {
	if c == nil {
		return errors.New("nil execution context")
	}
	if c.Status != RunRunning {
		return fmt.Errorf("%w: begin task in %s", ErrInvalidTransition, c.Status)
	}
	if i != len(c.Outputs) {
		return fmt.Errorf("%w: task %d begun with %d outputs recorded", ErrInvalidTransition, i, len(c.Outputs))
	}
	c.CurrentTask = i
	return nil
}

func (c *ExecutionContext) AppendOutput(out contractx.TaskOutput) error {
	if c == nil {
		return errors.New("nil execution context")
	}
	if c.Status != RunRunning {
		return fmt.Errorf("%w: append output in %s", ErrInvalidTransition, c.Status)
	}
	if c.CurrentTask != len(c.Outputs) {
		return fmt.Errorf("%w: output for task %d already recorded", ErrInvalidTransition, c.CurrentTask)
	}
	c.Outputs = append(c.Outputs, out)
	return nil
}

func (c *ExecutionContext) Complete(now time.Time) error {
	if c == nil {
		return errors.New("nil execution context")
	}
	if c.Status != RunRunning {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, c.Status)
	}
	if len(c.Outputs) == 0 {
		return ErrNoOutput
	}
	c.Status = RunCompleted
	c.FinishedAt = now.UTC()
	return nil
}

// Fail is terminal. Failing an already failed run keeps the first reason.
func (c *ExecutionContext) Fail(reason error, now time.Time) {
	if c == nil || c.Status == RunCompleted || c.Status == RunFailed {
		return
	}
	c.Status = RunFailed
	c.cause = reason
	if reason != nil {
		c.Failure = reason.Error()
	}
	c.FinishedAt = now.UTC()
}

// Err returns the error the run failed with, or nil.
func (c *ExecutionContext) Err() error {
	if c == nil {
		return nil
	}
	return c.cause
}

func (c *ExecutionContext) LastOutput() (contractx.TaskOutput, bool) {
	if c == nil || len(c.Outputs) == 0 {
		return contractx.TaskOutput{}, false
	}
	return c.Outputs[len(c.Outputs)-1], true
}

// PriorOutputs returns a copy of the outputs recorded before the current task.
func (c *ExecutionContext) PriorOutputs() []contractx.TaskOutput {
	if c == nil || len(c.Outputs) == 0 {
		return nil
	}
	return append([]contractx.TaskOutput(nil), c.Outputs...)
}

func (c *ExecutionContext) Terminal() bool {
	return c != nil && (c.Status == RunCompleted || c.Status == RunFailed)
}
