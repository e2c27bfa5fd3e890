package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	"github.com/tanpawarit/financial-document-analyzer/agent/document"
	nodex "github.com/tanpawarit/financial-document-analyzer/agent/nodes"
	statex "github.com/tanpawarit/financial-document-analyzer/agent/state"
)

type Config struct {
	Tasks            []string `envconfig:"TASKS" default:"analyze_financial_document,verification"`
	StrictExtraction bool     `envconfig:"STRICT_EXTRACTION" split_words:"true" default:"false"`
}

type Orchestrator struct {
	crew      contractx.Crew
	tools     contractx.ToolBuilder
	sequence  []contractx.TaskDefinition
	taskInput string
	strict    bool

	extract     nodex.Extractor
	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

// Result is a completed run.
type Result struct {
	RunID    string
	Analysis string
	Outputs  []contractx.TaskOutput
}

func New(
	crew contractx.Crew,
	tools contractx.ToolBuilder,
	sequence []contractx.TaskDefinition,
	taskInput string,
	cfg Config,
) (*Orchestrator, error) {
	if crew == nil {
		return nil, errors.New("crew is required")
	}
	if tools == nil {
		return nil, errors.New("tool builder is required")
	}
	if len(sequence) == 0 {
		return nil, errors.New("task sequence is required")
	}
	if strings.TrimSpace(taskInput) == "" {
		return nil, errors.New("task input template is required")
	}
	for _, def := range sequence {
		if _, err := crew.Agent(def.Agent); err != nil {
			return nil, err
		}
	}

	o := &Orchestrator{
		crew:      crew,
		tools:     tools,
		sequence:  append([]contractx.TaskDefinition(nil), sequence...),
		taskInput: taskInput,
		strict:    cfg.StrictExtraction,
		extract:   document.Extract,
		now:       time.Now,
		newID:     uuid.NewString,
	}

	graphRunner, err := o.compileAnalyzeGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Run executes every task in order against one document and returns the final
// task's output. The first failing task aborts the run.
func (o *Orchestrator) Run(ctx context.Context, query, documentPath string) (Result, error) {
	run := statex.NewExecutionContext(o.newID(), query, documentPath)

	logger := log.Ctx(ctx).With().Str("run_id", run.RunID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Str("path", documentPath).Int("tasks", len(o.sequence)).Msg("analysis run started")

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{Run: run})
	if err != nil {
		// nodes record their own error on the run; the graph wraps it in node-path framing
		if cause := run.Err(); cause != nil {
			err = cause
		}
		run.Fail(err, o.now())
		logger.Error().
			Err(err).
			Str("status", string(run.Status)).
			Int("current_task", run.CurrentTask).
			Msg("analysis run failed")
		return Result{RunID: run.RunID}, err
	}

	logger.Info().
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("analysis run completed")
	return Result{
		RunID:    out.RunID,
		Analysis: out.Analysis,
		Outputs:  out.Outputs,
	}, nil
}

// Sequence returns the task names in run order.
func (o *Orchestrator) Sequence() []contractx.TaskName {
	names := make([]contractx.TaskName, 0, len(o.sequence))
	for _, def := range o.sequence {
		names = append(names, def.Name)
	}
	return names
}
