package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrExtraction      = errors.New("document extraction failed")
	ErrUnknownAgent    = errors.New("unknown agent role")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownTask     = errors.New("unknown task")
)
