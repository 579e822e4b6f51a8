package pipeline

import (
	"context"
	"strings"

	"github.com/parserator/kernel/types"
)

// TrimWhitespace is the default preprocessor: it trims leading/trailing
// whitespace from InputData and Instructions, the cheapest normalization
// that never changes semantics.
var TrimWhitespace = PreprocessorFunc{
	FuncName: "trim_whitespace",
	Fn: func(_ context.Context, req types.ParseRequest) (types.ParseRequest, error) {
		req.InputData = strings.TrimSpace(req.InputData)
		req.Instructions = strings.TrimSpace(req.Instructions)
		return req, nil
	},
}

// RejectEmptyInput is the default validation preprocessor: it fails the
// parse outright (VALIDATION, per spec.md §7) when InputData is empty after
// trimming, rather than letting the architect build a plan against nothing.
var RejectEmptyInput = PreprocessorFunc{
	FuncName: "reject_empty_input",
	Fn: func(_ context.Context, req types.ParseRequest) (types.ParseRequest, error) {
		if strings.TrimSpace(req.InputData) == "" {
			return req, types.NewParseError(types.ErrValidation, types.StagePreprocess, "input data is empty")
		}
		if len(req.OutputSchema) == 0 {
			return req, types.NewParseError(types.ErrValidation, types.StagePreprocess, "output schema has no fields")
		}
		return req, nil
	},
}

// DefaultPreprocessors is the stack a Kernel uses when the caller supplies
// none of its own.
func DefaultPreprocessors() []Preprocessor {
	return []Preprocessor{RejectEmptyInput, TrimWhitespace}
}
