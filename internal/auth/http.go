// Package auth extracts the caller's credentials from HTTP requests.
//
// Verifying the token is the job of the identity provider; this package
// only checks that the request carries one in the expected shape.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken is returned when the request has no Authorization header.
	ErrMissingToken = errors.New("missing authorization header")
	// ErrBadTokenFormat is returned when the Authorization header is not in the correct Bearer format.
	ErrBadTokenFormat = errors.New("malformed authorization header")
)

// ExtractToken returns the bearer token of the request.
func ExtractToken(r *http.Request) (string, error) {
	authHeaderContent := r.Header.Get("Authorization")
	if authHeaderContent == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(authHeaderContent, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrBadTokenFormat
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrBadTokenFormat
	}

	return token, nil
}
