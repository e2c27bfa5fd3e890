package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	statex "github.com/tanpawarit/financial-document-analyzer/agent/state"
)

// DefaultQuery replaces a blank query.
const DefaultQuery = "Analyze this financial document for investment insights"

var ErrInvalidDocument = errors.New("document path is empty")

type GraphInput struct {
	Run *statex.ExecutionContext
}

type GraphOutput struct {
	RunID    string
	Analysis string
	Outputs  []contractx.TaskOutput
}

type GraphState struct {
	Run *statex.ExecutionContext
	Now func() time.Time
}

func NormalizeQuery(query string) string {
	if q := strings.TrimSpace(query); q != "" {
		return q
	}
	return DefaultQuery
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if in.Run == nil {
		return nil, fmt.Errorf("%w: execution context is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Run.DocumentPath) == "" {
		err := fmt.Errorf("%w: %v", contractx.ErrValidation, ErrInvalidDocument)
		in.Run.Fail(err, nowFn())
		return nil, err
	}

	in.Run.Query = NormalizeQuery(in.Run.Query)
	if err := in.Run.Start(nowFn()); err != nil {
		return nil, err
	}

	return &GraphState{
		Run: in.Run,
		Now: nowFn,
	}, nil
}
