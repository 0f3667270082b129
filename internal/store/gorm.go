package store

import (
	"context"
	"errors"

	"github.com/biosonic-labs/dna2music-api/internal/models"
	"gorm.io/gorm"
)

// GormStore is the durable JobStore backed by Postgres via gorm. Records
// survive process restarts, so clients can poll across a crash.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, job *models.Job) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Claim relies on a conditional UPDATE so that exactly one worker wins even
// when several poll the same id
func (s *GormStore) Claim(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", models.StatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a lost claim from an unknown id
		if _, err := s.Get(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *GormStore) Complete(ctx context.Context, id string, result []byte) error {
	return s.finish(ctx, id, map[string]interface{}{
		"status":  models.StatusCompleted,
		"result":  result,
		"payload": nil,
	})
}

func (s *GormStore) Fail(ctx context.Context, id string, message string) error {
	return s.finish(ctx, id, map[string]interface{}{
		"status":  models.StatusFailed,
		"error":   message,
		"payload": nil,
	})
}

// finish applies a terminal transition. The status predicate keeps terminal
// records immutable even if two owners somehow finish the same job.
func (s *GormStore) finish(ctx context.Context, id string, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrNotProcessing
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, limit int) ([]*models.Job, error) {
	var jobs []*models.Job
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Job{}).Count(&n).Error
	return n, err
}
