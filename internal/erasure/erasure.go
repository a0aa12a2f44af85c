// Package erasure permanently deletes an account and every record it owns.
//
// An erasure resolves the caller from their own token, deletes the
// dependent collections one by one in the configured order, and removes
// the identity record last. The first failure stops the run; nothing is
// rolled back, and since every delete is idempotent the whole run can
// simply be repeated.
package erasure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/database-playground/account-eraser/internal/backend"
	"github.com/database-playground/account-eraser/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// IdentityResolver resolves the caller of a request.
type IdentityResolver interface {
	User(ctx context.Context) (backend.User, error)
}

// RecordStore deletes rows keyed by a user id.
type RecordStore interface {
	DeleteByKey(ctx context.Context, collection, keyColumn, value string) (int64, error)
}

// PrivilegedClient performs the deletions.
type PrivilegedClient interface {
	RecordStore
	DeleteUser(ctx context.Context, userID string) error
}

// ClientFactory builds the clients of a single erasure. An error from
// either method means the backend is not configured.
type ClientFactory interface {
	Caller(token string) (IdentityResolver, error)
	Service() (PrivilegedClient, error)
}

// BackendClients adapts a backend.Factory to a ClientFactory.
func BackendClients(factory *backend.Factory) ClientFactory {
	return backendClients{factory: factory}
}

type backendClients struct {
	factory *backend.Factory
}

func (b backendClients) Caller(token string) (IdentityResolver, error) {
	client, err := b.factory.Caller(token)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (b backendClients) Service() (PrivilegedClient, error) {
	client, err := b.factory.Service()
	if err != nil {
		return nil, err
	}

	return client, nil
}

// Deletion is the outcome of one dependent target.
type Deletion struct {
	Target Target
	Rows   int64
}

// Result describes what an erasure deleted.
type Result struct {
	UserID  string
	Deleted []Deletion
}

// Eraser runs erasures. It holds no per-request state and is safe for
// concurrent use.
type Eraser struct {
	clients  ClientFactory
	targets  []Target
	records  RecordStore
	progress Progress
	now      func() time.Time
}

// Option configures an Eraser.
type Option func(*Eraser)

// WithRecordStore deletes dependent rows through store instead of the
// privileged client. The identity is still deleted by the privileged client.
func WithRecordStore(store RecordStore) Option {
	return func(e *Eraser) {
		e.records = store
	}
}

// WithProgress records checkpoints of unfinished erasures in progress.
func WithProgress(progress Progress) Option {
	return func(e *Eraser) {
		e.progress = progress
	}
}

// WithClock overrides the clock used for checkpoints.
func WithClock(now func() time.Time) Option {
	return func(e *Eraser) {
		e.now = now
	}
}

// New creates an Eraser that deletes targets in the given order.
func New(clients ClientFactory, targets []Target, opts ...Option) *Eraser {
	e := &Eraser{
		clients:  clients,
		targets:  append([]Target(nil), targets...),
		progress: NopProgress{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Targets returns the dependent targets in deletion order.
func (e *Eraser) Targets() []Target {
	return append([]Target(nil), e.targets...)
}

// Erase deletes the account that token belongs to.
//
// The account is only ever taken from the token. Errors are ErrUnauthorized,
// ErrConfiguration, *DependentDeleteError or *IdentityDeleteError.
func (e *Eraser) Erase(ctx context.Context, token string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Erase")
	defer span.End()

	if token == "" {
		span.SetStatus(otelcodes.Error, "No token")
		metrics.RecordErasure(metrics.OutcomeUnauthorized)
		return Result{}, ErrUnauthorized
	}

	caller, err := e.clients.Caller(token)
	if err != nil {
		return Result{}, e.configurationFailure(ctx, span, err)
	}

	service, err := e.clients.Service()
	if err != nil {
		return Result{}, e.configurationFailure(ctx, span, err)
	}

	user, err := caller.User(ctx)
	if err == nil && user.ID == "" {
		err = backend.ErrNoIdentity
	}
	if err != nil {
		span.SetStatus(otelcodes.Error, "Failed to resolve caller")
		span.RecordError(err)
		metrics.RecordErasure(metrics.OutcomeUnauthorized)

		slog.InfoContext(ctx, "caller could not be resolved", "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))

	return e.purge(ctx, span, service, user.ID)
}

// EraseAccount deletes the account userID with the privileged client.
//
// It is meant for operators completing an erasure that failed; it is never
// reachable from a request.
func (e *Eraser) EraseAccount(ctx context.Context, userID string) (Result, error) {
	ctx, span := tracer.Start(ctx, "EraseAccount",
		trace.WithAttributes(
			attribute.String("user.id", userID),
		))
	defer span.End()

	if userID == "" {
		span.SetStatus(otelcodes.Error, "No user id")
		return Result{}, ErrNoUserID
	}

	service, err := e.clients.Service()
	if err != nil {
		return Result{}, e.configurationFailure(ctx, span, err)
	}

	return e.purge(ctx, span, service, userID)
}

func (e *Eraser) configurationFailure(ctx context.Context, span trace.Span, err error) error {
	span.SetStatus(otelcodes.Error, "Backend is not configured")
	span.RecordError(err)
	metrics.RecordErasure(metrics.OutcomeConfigError)

	slog.ErrorContext(ctx, "backend is not configured", "error", err)
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

func (e *Eraser) purge(ctx context.Context, span trace.Span, service PrivilegedClient, userID string) (Result, error) {
	records := e.records
	if records == nil {
		records = service
	}

	now := e.now()
	checkpoint := Checkpoint{
		UserID:    userID,
		Phase:     PhaseDependents,
		StartedAt: now,
		UpdatedAt: now,
	}
	e.saveCheckpoint(ctx, checkpoint)

	result := Result{UserID: userID}

	for step, target := range e.targets {
		rows, err := e.deleteDependents(ctx, records, step, target, userID)
		if err != nil {
			span.SetStatus(otelcodes.Error, "Failed to delete dependent data")
			span.RecordError(err)
			metrics.RecordStepFailure(target.Collection)
			metrics.RecordErasure(metrics.OutcomeDependentFailed)

			checkpoint.FailedCollection = target.Collection
			checkpoint.Error = err.Error()
			e.saveCheckpoint(ctx, checkpoint)

			slog.ErrorContext(ctx, "failed to delete dependent data",
				"user_id", userID,
				"collection", target.Collection,
				"step", step,
				"error", err)
			return result, &DependentDeleteError{Step: step, Target: target, Err: err}
		}

		metrics.RecordRowsDeleted(target.Collection, rows)
		result.Deleted = append(result.Deleted, Deletion{Target: target, Rows: rows})

		checkpoint.Completed = step + 1
		e.saveCheckpoint(ctx, checkpoint)
	}

	checkpoint.Phase = PhaseIdentity
	e.saveCheckpoint(ctx, checkpoint)

	if err := e.deleteIdentity(ctx, service, userID); err != nil {
		span.SetStatus(otelcodes.Error, "Failed to delete identity")
		span.RecordError(err)
		metrics.RecordErasure(metrics.OutcomeIdentityFailed)

		checkpoint.Error = err.Error()
		e.saveCheckpoint(ctx, checkpoint)

		slog.ErrorContext(ctx, "dependent data deleted but identity was not",
			"user_id", userID,
			"error", err)
		return result, &IdentityDeleteError{UserID: userID, Err: err}
	}

	e.clearCheckpoint(ctx, userID)

	span.SetStatus(otelcodes.Ok, "Account erased successfully")
	metrics.RecordErasure(metrics.OutcomeSuccess)
	slog.InfoContext(ctx, "account erased", "user_id", userID, "collections", len(result.Deleted))

	return result, nil
}

func (e *Eraser) deleteDependents(ctx context.Context, records RecordStore, step int, target Target, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "DeleteDependents",
		trace.WithAttributes(
			attribute.Int("erasure.step", step),
			attribute.String("erasure.collection", target.Collection),
			attribute.String("erasure.key_column", target.KeyColumn),
		))
	defer span.End()

	rows, err := records.DeleteByKey(ctx, target.Collection, target.KeyColumn, userID)
	if err != nil {
		span.SetStatus(otelcodes.Error, "Failed to delete rows")
		span.RecordError(err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("erasure.rows", rows))
	span.SetStatus(otelcodes.Ok, "Rows deleted successfully")
	return rows, nil
}

func (e *Eraser) deleteIdentity(ctx context.Context, service PrivilegedClient, userID string) error {
	ctx, span := tracer.Start(ctx, "DeleteIdentity")
	defer span.End()

	if err := service.DeleteUser(ctx, userID); err != nil {
		span.SetStatus(otelcodes.Error, "Failed to delete identity")
		span.RecordError(err)
		return err
	}

	span.SetStatus(otelcodes.Ok, "Identity deleted successfully")
	return nil
}

// CheckpointTimeout bounds each write to the progress log.
const CheckpointTimeout = 2 * time.Second

// progressContext outlives the request but not CheckpointTimeout.
func progressContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), CheckpointTimeout)
}

// saveCheckpoint records progress. A failure is logged and otherwise
// ignored; the checkpoint never decides what gets deleted.
func (e *Eraser) saveCheckpoint(ctx context.Context, checkpoint Checkpoint) {
	checkpoint.UpdatedAt = e.now()

	saveCtx, cancel := progressContext(ctx)
	defer cancel()

	if err := e.progress.Save(saveCtx, checkpoint); err != nil {
		slog.WarnContext(ctx, "failed to save erasure checkpoint", "user_id", checkpoint.UserID, "error", err)
	}
}

func (e *Eraser) clearCheckpoint(ctx context.Context, userID string) {
	deleteCtx, cancel := progressContext(ctx)
	defer cancel()

	if err := e.progress.Delete(deleteCtx, userID); err != nil {
		slog.WarnContext(ctx, "failed to clear erasure checkpoint", "user_id", userID, "error", err)
	}
}
