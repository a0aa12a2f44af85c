package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/database-playground/account-eraser/internal/erasure"
)

// ListTargets returns the dependent targets in deletion order.
func (c *Context) ListTargets() []erasure.Target {
	return c.eraser.Targets()
}

// Pending returns the unfinished erasures, oldest first.
func (c *Context) Pending(ctx context.Context) ([]erasure.Checkpoint, error) {
	checkpoints, err := c.progress.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	slices.SortFunc(checkpoints, func(a, b erasure.Checkpoint) int {
		if cmp := a.StartedAt.Compare(b.StartedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.UserID, b.UserID)
	})

	return checkpoints, nil
}

// Erase deletes the account userID and everything that depends on it.
func (c *Context) Erase(ctx context.Context, userID string) (erasure.Result, error) {
	if userID == "" {
		return erasure.Result{}, fmt.Errorf("user id is required")
	}

	return c.eraser.EraseAccount(ctx, userID)
}
