package store

import (
	"context"
	"sync"
	"testing"

	"github.com/biosonic-labs/dna2music-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(id string) *models.Job {
	return &models.Job{
		ID:       id,
		Status:   models.StatusPending,
		FileHash: "abc",
		Filename: "seq.fasta",
		Payload:  []byte("ACGT"),
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newJob("j1")))

	job, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, job.Status)
	assert.Equal(t, "seq.fasta", job.Filename)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("j1")))

	job, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	job.Status = models.StatusFailed

	again, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestMemoryStore_ClaimOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("j1")))

	won, err := s.Claim(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, won)

	again, err := s.Claim(ctx, "j1")
	require.NoError(t, err)
	assert.False(t, again)

	job, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, job.Status)
}

func TestMemoryStore_ClaimUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Claim(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ClaimConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("j1")))

	const contenders = 16
	wins := make(chan bool, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.Claim(ctx, "j1")
			assert.NoError(t, err)
			if won {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1, "exactly one contender must win the claim")
}

func TestMemoryStore_CompleteDropsPayload(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("j1")))
	_, err := s.Claim(ctx, "j1")
	require.NoError(t, err)

	require.NoError(t, s.Complete(ctx, "j1", []byte(`{"note_count":3}`)))

	job, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, job.Status)
	assert.Nil(t, job.Payload)
	assert.JSONEq(t, `{"note_count":3}`, string(job.Result))

	// A terminal job cannot be claimed again
	won, err := s.Claim(ctx, "j1")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMemoryStore_Fail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("j1")))
	_, err := s.Claim(ctx, "j1")
	require.NoError(t, err)

	require.NoError(t, s.Fail(ctx, "j1", "parse: bad input"))

	job, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, job.Status)
	assert.Equal(t, "parse: bad input", job.Error)
}

func TestMemoryStore_TerminalImmutable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("j1")))

	// Complete and Fail both require a prior claim
	assert.ErrorIs(t, s.Complete(ctx, "j1", []byte(`{}`)), ErrNotProcessing)
	assert.ErrorIs(t, s.Fail(ctx, "j1", "nope"), ErrNotProcessing)

	_, err := s.Claim(ctx, "j1")
	require.NoError(t, err)
	require.NoError(t, s.Complete(ctx, "j1", []byte(`{"note_count":3}`)))

	// A terminal record cannot be rewritten
	assert.ErrorIs(t, s.Fail(ctx, "j1", "late failure"), ErrNotProcessing)
	assert.ErrorIs(t, s.Complete(ctx, "j1", []byte(`{"note_count":9}`)), ErrNotProcessing)

	job, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, job.Status)
	assert.Empty(t, job.Error)
	assert.JSONEq(t, `{"note_count":3}`, string(job.Result))
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"j1", "j2", "j3"} {
		j := newJob(id)
		require.NoError(t, s.Create(ctx, j))
	}

	jobs, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)

	jobs, err = s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestMemoryStore_Count(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Create(ctx, newJob("j1")))
	require.NoError(t, s.Create(ctx, newJob("j2")))

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
