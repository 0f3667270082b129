package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/biosonic-labs/dna2music-api/internal/models"
)

// MemoryStore is a mutex-guarded in-memory JobStore. It backs tests and
// brokerless development mode; records do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.Job)}
}

func (s *MemoryStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = job.CreatedAt
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *MemoryStore) Claim(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false, ErrNotFound
	}
	if job.Status != models.StatusPending {
		return false, nil
	}
	job.Status = models.StatusProcessing
	job.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) Complete(_ context.Context, id string, result []byte) error {
	return s.finish(id, models.StatusCompleted, result, "")
}

func (s *MemoryStore) Fail(_ context.Context, id string, message string) error {
	return s.finish(id, models.StatusFailed, nil, message)
}

func (s *MemoryStore) finish(id string, status models.JobStatus, result []byte, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != models.StatusProcessing {
		return ErrNotProcessing
	}
	job.Status = status
	job.Result = result
	job.Error = message
	job.Payload = nil
	job.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		cp := *job
		jobs = append(jobs, &cp)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.jobs)), nil
}
