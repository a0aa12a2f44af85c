package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of an erasure request.
const (
	OutcomeSuccess         = "success"
	OutcomeUnauthorized    = "unauthorized"
	OutcomeConfigError     = "config_error"
	OutcomeDependentFailed = "dependent_failed"
	OutcomeIdentityFailed  = "identity_failed"
)

var (
	// ErasureTotal tracks the total number of erasures by outcome
	ErasureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eraser_erasure_total",
			Help: "Total number of account erasures by outcome",
		},
		[]string{"outcome"},
	)

	// RowsDeletedTotal tracks the rows deleted per collection
	RowsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eraser_rows_deleted_total",
			Help: "Total number of rows deleted by collection",
		},
		[]string{"collection"},
	)

	// StepFailureTotal tracks failed deletions per collection
	StepFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eraser_step_failure_total",
			Help: "Total number of failed deletions by collection",
		},
		[]string{"collection"},
	)
)

// RecordErasure records a finished erasure with the given outcome
func RecordErasure(outcome string) {
	ErasureTotal.WithLabelValues(outcome).Inc()
}

// RecordRowsDeleted records rows deleted from a collection
func RecordRowsDeleted(collection string, rows int64) {
	if rows <= 0 {
		return
	}

	RowsDeletedTotal.WithLabelValues(collection).Add(float64(rows))
}

// RecordStepFailure records a failed deletion of a collection
func RecordStepFailure(collection string) {
	StepFailureTotal.WithLabelValues(collection).Inc()
}
