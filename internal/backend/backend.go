// Package backend talks to the hosted auth and REST APIs.
//
// Two handles are offered with different capabilities: a CallerClient
// scoped to the end user's token, which can only resolve who the caller
// is, and a ServiceClient holding the service-role key, which can only
// delete. Neither is ever built from request input other than the token.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/database-playground/account-eraser/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"

	// maxErrorBody bounds how much of an error body is decoded.
	maxErrorBody = 64 << 10
)

// Factory builds the capability-scoped clients from the backend secrets.
type Factory struct {
	cfg    config.BackendConfig
	client *http.Client
}

// NewFactory creates a Factory. The secrets are validated when a client is built.
func NewFactory(cfg config.BackendConfig) *Factory {
	return &Factory{
		cfg: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewFactoryWithClient creates a Factory that sends requests with client.
func NewFactoryWithClient(cfg config.BackendConfig, client *http.Client) *Factory {
	return &Factory{cfg: cfg, client: client}
}

// Caller returns a client acting as the owner of token.
func (f *Factory) Caller(token string) (*CallerClient, error) {
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}

	return &CallerClient{
		base:   strings.TrimRight(f.cfg.URL, "/"),
		apiKey: f.cfg.AnonKey,
		token:  token,
		client: f.client,
	}, nil
}

// Service returns the privileged client.
func (f *Factory) Service() (*ServiceClient, error) {
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}

	return &ServiceClient{
		base:   strings.TrimRight(f.cfg.URL, "/"),
		apiKey: f.cfg.ServiceRoleKey,
		client: f.client,
	}, nil
}

func newRequest(ctx context.Context, method, endpoint, apiKey, bearer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func closeBody(resp *http.Response) {
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if err := resp.Body.Close(); err != nil {
		slog.Error("failed to close response body", "error", err)
	}
}

// decodeError turns a non-2xx response into an *ErrorResponse.
func decodeError(resp *http.Response) *ErrorResponse {
	errResp := &ErrorResponse{StatusCode: resp.StatusCode}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(errResp); err != nil {
		slog.Debug("undecodable error body", "status", resp.StatusCode, "error", err)
	}

	return errResp
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
