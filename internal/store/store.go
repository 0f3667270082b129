// Package store defines the durable job record abstraction the pipeline
// depends on, plus in-memory and Postgres-backed implementations.
package store

import (
	"context"
	"errors"

	"github.com/biosonic-labs/dna2music-api/internal/models"
)

// ErrNotFound is returned for unknown job ids
var ErrNotFound = errors.New("job not found")

// ErrNotProcessing is returned when Complete or Fail targets a job that is
// not in processing state. Terminal records are immutable.
var ErrNotProcessing = errors.New("job is not processing")

// JobStore is the only shared mutable resource in the system. All reads and
// writes for a given job id are linearizable; only the pipeline owner writes
// after submission.
type JobStore interface {
	// Create inserts a new job record in pending state
	Create(ctx context.Context, job *models.Job) error

	// Get returns the job record or ErrNotFound
	Get(ctx context.Context, id string) (*models.Job, error)

	// Claim atomically transitions a pending job to processing and reports
	// whether this caller won the claim. A false result with nil error means
	// another owner holds the job or it already reached a terminal state.
	Claim(ctx context.Context, id string) (bool, error)

	// Complete marks a processing job completed with its serialized result
	// and drops the retained payload. ErrNotProcessing if the job is not in
	// processing state.
	Complete(ctx context.Context, id string, result []byte) error

	// Fail marks a processing job failed with a short message and drops the
	// retained payload. ErrNotProcessing if the job is not in processing
	// state.
	Fail(ctx context.Context, id string, message string) error

	// List returns up to limit job records, most recent first
	List(ctx context.Context, limit int) ([]*models.Job, error)

	// Count returns the number of job records
	Count(ctx context.Context) (int64, error)
}
