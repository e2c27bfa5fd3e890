package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	nodex "github.com/tanpawarit/financial-document-analyzer/agent/nodes"
)

const (
	nodeValidateRequest   = "validate_request"
	nodePreflightDocument = "preflight_document"
	nodeFinalizeReport    = "finalize_report"
)

func taskNodeName(i int, name contractx.TaskName) string {
	return fmt.Sprintf("task_%02d_%s", i, name)
}

func (o *Orchestrator) compileAnalyzeGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	chain := []string{nodeValidateRequest}

	if o.strict {
		if err := graph.AddLambdaNode(nodePreflightDocument,
			compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
				return nodex.PreflightDocument(ctx, in, o.extract)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nodePreflightDocument, err)
		}
		chain = append(chain, nodePreflightDocument)
	}

	deps := nodex.TaskDeps{Crew: o.crew, Tools: o.tools, TaskInput: o.taskInput}
	for i, def := range o.sequence {
		i, def := i, def
		name := taskNodeName(i, def.Name)
		if err := graph.AddLambdaNode(name,
			compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
				return nodex.RunTask(ctx, in, i, def, deps)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
		chain = append(chain, name)
	}

	if err := graph.AddLambdaNode(nodeFinalizeReport,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReport(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReport, err)
	}
	chain = append(chain, nodeFinalizeReport)

	edges := make([][2]string, 0, len(chain)+1)
	edges = append(edges, [2]string{compose.START, chain[0]})
	for i := 1; i < len(chain); i++ {
		edges = append(edges, [2]string{chain[i-1], chain[i]})
	}
	edges = append(edges, [2]string{chain[len(chain)-1], compose.END})

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.analyze_document"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
