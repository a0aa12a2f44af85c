package erasure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/database-playground/account-eraser/internal/backend"
)

var (
	// ErrUnauthorized is returned when the caller's token does not resolve to an account.
	ErrUnauthorized = errors.New("invalid or expired token")
	// ErrConfiguration is returned when the backend secrets are missing or invalid.
	ErrConfiguration = errors.New("backend is not configured")
	// ErrNoUserID is returned when an operator erasure is requested without a user id.
	ErrNoUserID = errors.New("user id is required")
	// ErrNoCheckpoint is returned when no progress is recorded for an account.
	ErrNoCheckpoint = errors.New("no erasure in progress")
)

// DependentDeleteError reports the dependent collection whose deletion failed.
// Collections before Step were deleted; the rest and the identity were not.
type DependentDeleteError struct {
	Step   int
	Target Target
	Err    error
}

func (e *DependentDeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Target, e.Err)
}

func (e *DependentDeleteError) Unwrap() error {
	return e.Err
}

// IdentityDeleteError reports that every dependent collection was deleted
// but the identity record was not.
type IdentityDeleteError struct {
	UserID string
	Err    error
}

func (e *IdentityDeleteError) Error() string {
	return fmt.Sprintf("delete identity %s: %v", e.UserID, e.Err)
}

func (e *IdentityDeleteError) Unwrap() error {
	return e.Err
}

// Cause describes err in terms safe to return to the caller.
//
// Backend errors are reduced to their status and error code. Their messages
// can name constraints or other tables, so they only go to the log.
func Cause(err error) string {
	var errResp *backend.ErrorResponse

	switch {
	case errors.As(err, &errResp):
		if errResp.ErrorCode != "" {
			return fmt.Sprintf("backend returned %d %s (%s)", errResp.StatusCode, http.StatusText(errResp.StatusCode), errResp.ErrorCode)
		}
		return fmt.Sprintf("backend returned %d %s", errResp.StatusCode, http.StatusText(errResp.StatusCode))
	case errors.Is(err, context.Canceled):
		return "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return "backend unavailable"
	}
}
