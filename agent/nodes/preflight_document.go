package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	"github.com/tanpawarit/financial-document-analyzer/agent/document"
)

type Extractor func(path string) (document.Text, error)

// PreflightDocument fails the run before any agent starts when the document has no usable text.
func PreflightDocument(ctx context.Context, in *GraphState, extract Extractor) (*GraphState, error) {
	if in == nil || in.Run == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	text, err := extract(in.Run.DocumentPath)
	if err != nil {
		err = fmt.Errorf("%w: %v", contractx.ErrExtraction, err)
		in.Run.Fail(err, in.Now())
		return nil, err
	}

	log.Ctx(ctx).Debug().
		Int("pages", text.Pages).
		Int("pages_with_text", text.PagesWithText).
		Int("chars", len(text.Content)).
		Msg("document preflight passed")
	return in, nil
}
