package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/biosonic-labs/dna2music-api/internal/audio"
	"github.com/biosonic-labs/dna2music-api/internal/genome"
	"github.com/biosonic-labs/dna2music-api/internal/models"
	"github.com/biosonic-labs/dna2music-api/internal/pipeline"
	"github.com/biosonic-labs/dna2music-api/internal/store"
	"github.com/gin-gonic/gin"
)

// JobHandler serves the asynchronous job lifecycle: submit now, poll later
type JobHandler struct {
	pipeline  *pipeline.Pipeline
	store     store.JobStore
	artifacts *audio.ArtifactStore
}

func NewJobHandler(p *pipeline.Pipeline, artifacts *audio.ArtifactStore) *JobHandler {
	return &JobHandler{
		pipeline:  p,
		store:     p.Store(),
		artifacts: artifacts,
	}
}

// Submit accepts a genomic sequence file and starts background processing
func (h *JobHandler) Submit(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return
	}

	jobID, err := h.pipeline.Submit(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		var verr *pipeline.ValidationError
		var derr *genome.DecodeError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		case errors.As(err, &derr):
			c.JSON(http.StatusBadRequest, gin.H{"error": derr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":  jobID,
		"status":  "submitted",
		"message": "File uploaded successfully. Processing started.",
	})
}

// Status returns the current lifecycle state of a job
func (h *JobHandler) Status(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	})
}

// Result returns the processing result once a job reaches a terminal state
func (h *JobHandler) Result(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}

	switch job.Status {
	case models.StatusCompleted:
		var result models.RenderResult
		if err := json.Unmarshal(job.Result, &result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt result payload"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"job_id":       job.ID,
			"status":       job.Status,
			"result":       result,
			"download_url": "/download/" + job.ID,
		})
	case models.StatusFailed:
		c.JSON(http.StatusOK, gin.H{
			"job_id": job.ID,
			"status": job.Status,
			"error":  job.Error,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"job_id":  job.ID,
			"status":  job.Status,
			"message": "Processing in progress...",
		})
	}
}

// listLimit bounds the /jobs listing
const listLimit = 100

// List returns recent jobs, most recent first, without payloads or results
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.store.List(c.Request.Context(), listLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job listing failed"})
		return
	}

	summaries := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, gin.H{
			"job_id":     job.ID,
			"status":     job.Status,
			"filename":   job.Filename,
			"created_at": job.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"jobs": summaries})
}

// Download resolves the audio artifact URL for a completed job
func (h *JobHandler) Download(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}

	if job.Status != models.StatusCompleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not available"})
		return
	}
	if _, err := os.Stat(h.artifacts.Path(job.ID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio file not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"download_url": "/files/" + job.ID + ".wav",
	})
}

func (h *JobHandler) lookup(c *gin.Context) (*models.Job, bool) {
	job, err := h.store.Get(c.Request.Context(), c.Param("job_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job lookup failed"})
		return nil, false
	}
	return job, true
}
