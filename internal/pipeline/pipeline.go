// Package pipeline owns the per-job state machine: pending -> processing ->
// completed | failed, and the transformation stages between submission and
// rendered audio.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/biosonic-labs/dna2music-api/internal/audio"
	"github.com/biosonic-labs/dna2music-api/internal/enhance"
	"github.com/biosonic-labs/dna2music-api/internal/genome"
	"github.com/biosonic-labs/dna2music-api/internal/logger"
	"github.com/biosonic-labs/dna2music-api/internal/metrics"
	"github.com/biosonic-labs/dna2music-api/internal/models"
	"github.com/biosonic-labs/dna2music-api/internal/music"
	"github.com/biosonic-labs/dna2music-api/internal/store"
	"github.com/google/uuid"
)

// notesPreviewLimit bounds the note list embedded in a result payload
const notesPreviewLimit = 50

// allowedExtensions is the submission extension allow-list
var allowedExtensions = map[string]bool{
	".fasta": true,
	".fastq": true,
	".txt":   true,
	".fa":    true,
}

// Pipeline coordinates the transformation stages for many concurrent jobs.
// Stages are pure and stateless; the job store is the only shared mutable
// resource.
type Pipeline struct {
	store     store.JobStore
	artifacts *audio.ArtifactStore
	enhancer  enhance.NoteEnhancer
	metrics   *metrics.Client
	queue     *Queue
}

func New(st store.JobStore, artifacts *audio.ArtifactStore, enhancer enhance.NoteEnhancer, m *metrics.Client) *Pipeline {
	if enhancer == nil {
		enhancer = enhance.Identity{}
	}
	return &Pipeline{
		store:     st,
		artifacts: artifacts,
		enhancer:  enhancer,
		metrics:   m,
		queue:     NewQueue(),
	}
}

// Store exposes the job store for read-only status/result queries
func (p *Pipeline) Store() store.JobStore {
	return p.store
}

// Submit validates the upload, records a pending job, and enqueues it for
// asynchronous processing. It never blocks on worker availability and
// returns the job id immediately.
func (p *Pipeline) Submit(ctx context.Context, filename string, content []byte) (string, error) {
	ext := filepath.Ext(filename)
	if !allowedExtensions[ext] {
		return "", &ValidationError{
			Message: "invalid file type, supported: .fasta, .fastq, .txt, .fa",
		}
	}
	if !utf8.Valid(content) {
		return "", &genome.DecodeError{Reason: "not valid UTF-8"}
	}

	hash := sha256.Sum256(content)
	job := &models.Job{
		ID:       uuid.New().String(),
		Status:   models.StatusPending,
		FileHash: hex.EncodeToString(hash[:]),
		Filename: filename,
		Payload:  content,
	}

	if err := p.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	p.metrics.RecordJobSubmitted(ext)
	p.queue.Push(job.ID)

	logger.Info("Job submitted", logger.Fields{
		"job_id":   job.ID,
		"filename": filename,
	})
	return job.ID, nil
}

// Process runs the full pipeline for one job, at most once. A lost claim is
// not an error; a second worker simply skips the job. Any stage failure
// marks the job failed with a short message and discards partial artifacts.
func (p *Pipeline) Process(ctx context.Context, jobID string) error {
	claimed, err := p.store.Claim(ctx, jobID)
	if err != nil {
		return fmt.Errorf("claim job %s: %w", jobID, err)
	}
	if !claimed {
		logger.Warn("Skipping job, claim lost", logger.Fields{"job_id": jobID})
		return nil
	}

	start := time.Now()
	result, err := p.run(ctx, jobID)
	if err != nil {
		p.artifacts.Remove(jobID)
		p.metrics.RecordJobDuration(time.Since(start), false)
		logger.Error("Job failed", err, logger.Fields{"job_id": jobID})
		if ferr := p.store.Fail(ctx, jobID, err.Error()); ferr != nil {
			return fmt.Errorf("mark job %s failed: %w", jobID, ferr)
		}
		logger.LogJobTransition(jobID, string(models.StatusProcessing), string(models.StatusFailed), time.Since(start), nil)
		return nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result for job %s: %w", jobID, err)
	}
	if err := p.store.Complete(ctx, jobID, payload); err != nil {
		return fmt.Errorf("mark job %s completed: %w", jobID, err)
	}

	p.metrics.RecordJobDuration(time.Since(start), true)
	p.metrics.RecordNotesRendered(result.NoteCount)
	logger.LogJobTransition(jobID, string(models.StatusProcessing), string(models.StatusCompleted), time.Since(start), logger.Fields{
		"note_count":      result.NoteCount,
		"sequence_length": result.SequenceLength,
	})
	return nil
}

// run executes the transformation stages. Panics inside a stage surface as
// ProcessingError instead of killing the worker.
func (p *Pipeline) run(ctx context.Context, jobID string) (result *models.RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ProcessingError{Stage: "pipeline", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		return nil, &ProcessingError{Stage: "load", Err: err}
	}

	seq, err := genome.Parse(job.Payload, genome.FormatAuto)
	if err != nil {
		return nil, &ProcessingError{Stage: "parse", Err: err}
	}

	windows := genome.SlidingFeatures(seq, genome.DefaultWindow, genome.DefaultStep)
	chords := music.ComposeChords(seq)
	notes := music.ToNoteEvents(chords, windows, music.DefaultRhythmRules(), music.ScalePentatonic)

	// Enhancement is best-effort; on any error the original notes stand
	if enhanced, eerr := p.enhancer.Enhance(ctx, notes); eerr == nil && len(enhanced) == len(notes) {
		notes = enhanced
	} else if eerr != nil {
		logger.Warn("Enhancement failed, using unenhanced notes", logger.Fields{
			"job_id": jobID,
			"error":  eerr.Error(),
		})
	}

	samples := audio.Render(notes)
	audioPath, err := p.artifacts.Write(jobID, samples)
	if err != nil {
		return nil, &ProcessingError{Stage: "render", Err: err}
	}

	preview := notes
	if len(preview) > notesPreviewLimit {
		preview = preview[:notesPreviewLimit]
	}

	return &models.RenderResult{
		AudioPath:      audioPath,
		NoteCount:      len(notes),
		SequenceLength: len(seq),
		Notes:          preview,
	}, nil
}
