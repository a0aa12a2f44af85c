package accountservice

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/database-playground/account-eraser/internal/auth"
	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/database-playground/account-eraser/internal/httputils"
	"github.com/gin-gonic/gin"
)

// DeleteAccount permanently deletes the caller's account and its data.
// POST /api/delete-account
//
// The account is taken from the bearer token only; the body and query
// string are ignored.
func (s *AccountService) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()

	token, err := auth.ExtractToken(c.Request)
	if err != nil {
		c.String(http.StatusUnauthorized, err.Error())
		return
	}

	result, err := s.eraser.Erase(ctx, token)
	if err != nil {
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "account erasure failed",
				"error", err,
				"client", httputils.ClientName(ctx))
		}

		c.String(status, message)
		return
	}

	slog.InfoContext(ctx, "account deleted",
		"user_id", result.UserID,
		"client", httputils.ClientName(ctx))
	c.String(http.StatusOK, "Deleted")
}

// errorResponse maps an erasure error to its status and caller-safe message.
func errorResponse(err error) (int, string) {
	var (
		depErr      *erasure.DependentDeleteError
		identityErr *erasure.IdentityDeleteError
	)

	switch {
	case errors.Is(err, erasure.ErrUnauthorized):
		return http.StatusUnauthorized, erasure.ErrUnauthorized.Error()
	case errors.Is(err, erasure.ErrConfiguration):
		return http.StatusInternalServerError, "server configuration error"
	case errors.As(err, &depErr):
		return http.StatusInternalServerError,
			fmt.Sprintf("failed to delete data in %q: %s", depErr.Target.Collection, erasure.Cause(depErr.Err))
	case errors.As(err, &identityErr):
		return http.StatusInternalServerError,
			fmt.Sprintf("dependent data deleted, but failed to delete the account: %s", erasure.Cause(identityErr.Err))
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
