package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CallerClient acts on behalf of the end user. It can only look up
// the identity its token belongs to.
type CallerClient struct {
	base   string
	apiKey string
	token  string
	client *http.Client
}

// User resolves the caller's token to a user.
//
// A token the auth API rejects yields an error wrapping ErrInvalidToken.
func (c *CallerClient) User(ctx context.Context) (User, error) {
	req, err := newRequest(ctx, http.MethodGet, c.base+authPath+"/user", c.apiKey, c.token)
	if err != nil {
		return User{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("send request: %w", err)
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return User{}, fmt.Errorf("%w: %w", ErrInvalidToken, decodeError(resp))
	case !isSuccess(resp.StatusCode):
		return User{}, decodeError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("bad response: %w", err)
	}

	if user.ID == "" {
		return User{}, ErrNoIdentity
	}

	return user, nil
}
