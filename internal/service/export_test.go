package service

import (
	"context"

	"github.com/coprra/coprra/internal/model"
)

// SetRunOp swaps the runner's operation dispatch for tests.
func (r *Runner) SetRunOp(fn func(ctx context.Context, op model.Operation, params map[string]string) (map[string]any, error)) {
	r.runOp = fn
}

var RunOperation = runOperation
