package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
)

// FinalizeReport returns the last task output as is.
func FinalizeReport(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Run == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if err := in.Run.Complete(in.Now()); err != nil {
		in.Run.Fail(err, in.Now())
		return GraphOutput{}, err
	}

	last, _ := in.Run.LastOutput()
	return GraphOutput{
		RunID:    in.Run.RunID,
		Analysis: last.Output,
		Outputs:  in.Run.PriorOutputs(),
	}, nil
}
