package models

import (
	"time"

	"gorm.io/gorm"
)

// JobStatus is the closed set of job lifecycle states
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether a status admits no further transitions
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one asynchronous unit of work from submission to terminal state.
// Payload holds the raw upload until a worker claims the job; Result is the
// serialized RenderResult once completed.
type Job struct {
	ID        string         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Status    JobStatus      `gorm:"not null;index" json:"status"`
	FileHash  string         `gorm:"not null" json:"file_hash"`
	Filename  string         `gorm:"not null" json:"filename"`
	Payload   []byte         `gorm:"type:bytea" json:"-"`
	Result    []byte         `json:"-"` // JSON-encoded RenderResult
	Error     string         `json:"error,omitempty"`
}
