// Package cli provides the operator commands of the account eraser.
package cli

import (
	"context"

	"github.com/database-playground/account-eraser/internal/erasure"
)

// Eraser deletes accounts on behalf of an operator.
type Eraser interface {
	Targets() []erasure.Target
	EraseAccount(ctx context.Context, userID string) (erasure.Result, error)
}

// Context is the context for the CLI.
type Context struct {
	eraser   Eraser
	progress erasure.Progress
}

// NewContext creates a new Context.
func NewContext(eraser Eraser, progress erasure.Progress) *Context {
	if progress == nil {
		progress = erasure.NopProgress{}
	}

	return &Context{
		eraser:   eraser,
		progress: progress,
	}
}
