package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// User is the identity returned by the auth API for a token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Aud   string `json:"aud,omitempty"`
}

var (
	// ErrInvalidToken is returned when the auth API does not accept the caller's token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNoIdentity is returned when the auth API accepts the token but returns no user id.
	ErrNoIdentity = errors.New("token does not resolve to a user")
)

// ErrorResponse is the error body of the auth and REST APIs.
//
// The two APIs disagree on field names, so every known variant is decoded
// and Message picks the first one present.
type ErrorResponse struct {
	StatusCode int `json:"-"`

	RESTMessage      string `json:"message"`
	AuthMessage      string `json:"msg"`
	ErrorCode        string `json:"error_code"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Hint             string `json:"hint"`
}

// Message returns the human-readable message reported by the API.
func (e *ErrorResponse) Message() string {
	for _, message := range []string{e.RESTMessage, e.AuthMessage, e.ErrorDescription, e.ErrorName} {
		if message != "" {
			return message
		}
	}

	return http.StatusText(e.StatusCode)
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message())
}
