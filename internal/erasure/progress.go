package erasure

import (
	"context"
	"time"
)

// Phases an unfinished erasure can stop in.
const (
	PhaseDependents = "dependents"
	PhaseIdentity   = "identity"
)

// Checkpoint is the recorded progress of an erasure that has not finished.
type Checkpoint struct {
	UserID string `json:"user_id"`
	Phase  string `json:"phase"`
	// Completed is the number of dependent targets already deleted.
	Completed        int       `json:"completed"`
	FailedCollection string    `json:"failed_collection,omitempty"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Failed reports whether the erasure stopped on an error.
func (c Checkpoint) Failed() bool {
	return c.Error != ""
}

// Progress keeps checkpoints of erasures until they succeed.
//
// It is bookkeeping for operators: a retry always runs every step again,
// whatever the checkpoint says.
type Progress interface {
	Save(ctx context.Context, checkpoint Checkpoint) error
	// Get returns ErrNoCheckpoint if nothing is recorded for userID.
	Get(ctx context.Context, userID string) (Checkpoint, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]Checkpoint, error)
}

// NopProgress records nothing.
type NopProgress struct{}

func (NopProgress) Save(context.Context, Checkpoint) error { return nil }

func (NopProgress) Get(context.Context, string) (Checkpoint, error) {
	return Checkpoint{}, ErrNoCheckpoint
}

func (NopProgress) Delete(context.Context, string) error { return nil }

func (NopProgress) List(context.Context) ([]Checkpoint, error) { return nil, nil }

var _ Progress = NopProgress{}
