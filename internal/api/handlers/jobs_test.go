package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biosonic-labs/dna2music-api/internal/audio"
	"github.com/biosonic-labs/dna2music-api/internal/enhance"
	"github.com/biosonic-labs/dna2music-api/internal/pipeline"
	"github.com/biosonic-labs/dna2music-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *pipeline.Pipeline, *pipeline.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	artifacts, err := audio.NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	p := pipeline.New(store.NewMemoryStore(), artifacts, enhance.Identity{}, nil)
	pool := pipeline.NewPool(p, 2)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	router := gin.New()
	jobHandler := NewJobHandler(p, artifacts)
	router.POST("/submit", jobHandler.Submit)
	router.GET("/status/:job_id", jobHandler.Status)
	router.GET("/result/:job_id", jobHandler.Result)
	router.GET("/download/:job_id", jobHandler.Download)
	router.GET("/jobs", jobHandler.List)
	healthHandler := NewHealthHandler(p.Store())
	router.GET("/health", healthHandler.HealthCheck)

	return router, p, pool
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) (int, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w.Code, parsed
}

func pollUntilTerminal(t *testing.T, router *gin.Engine, jobID string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		code, resp := doJSON(t, router, http.MethodGet, "/status/"+jobID, nil, "")
		require.Equal(t, http.StatusOK, code)
		status := resp["status"].(string)
		if status == "completed" || status == "failed" {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return ""
}

func TestSubmitAndPollLifecycle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "genome.fasta", []byte(">seq1\nACGTGCAAATTTGGGCCC\n"))
	code, resp := doJSON(t, router, http.MethodPost, "/submit", body, contentType)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "submitted", resp["status"])

	jobID := resp["job_id"].(string)
	require.NotEmpty(t, jobID)

	status := pollUntilTerminal(t, router, jobID)
	require.Equal(t, "completed", status)

	code, result := doJSON(t, router, http.MethodGet, "/result/"+jobID, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", result["status"])
	assert.Equal(t, "/download/"+jobID, result["download_url"])

	payload := result["result"].(map[string]interface{})
	assert.EqualValues(t, 18, payload["sequence_length"])
	assert.EqualValues(t, 18, payload["note_count"])

	code, dl := doJSON(t, router, http.MethodGet, "/download/"+jobID, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/files/"+jobID+".wav", dl["download_url"])
}

func TestSubmit_BadExtension(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "genome.exe", []byte("ACGT"))
	code, resp := doJSON(t, router, http.MethodPost, "/submit", body, contentType)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["error"], "invalid file type")
}

func TestSubmit_MissingFile(t *testing.T) {
	router, _, _ := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodPost, "/submit", bytes.NewBuffer(nil), "multipart/form-data")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, resp["error"])
}

func TestStatus_UnknownJob(t *testing.T) {
	router, _, _ := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodGet, "/status/no-such-id", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "job not found", resp["error"])
}

func TestResult_UnknownJob(t *testing.T) {
	router, _, _ := newTestRouter(t)

	code, _ := doJSON(t, router, http.MethodGet, "/result/no-such-id", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDownload_NotCompleted(t *testing.T) {
	router, p, pool := newTestRouter(t)

	// Stop the pool first so the job stays pending
	pool.Stop()
	jobID, err := p.Submit(context.Background(), "seq.fa", []byte("ACGT"))
	require.NoError(t, err)

	code, resp := doJSON(t, router, http.MethodGet, "/download/"+jobID, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "result not available", resp["error"])
}

func TestStatus_IdempotentOnTerminalJob(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "genome.txt", []byte("ACGTGCAAA"))
	code, resp := doJSON(t, router, http.MethodPost, "/submit", body, contentType)
	require.Equal(t, http.StatusOK, code)
	jobID := resp["job_id"].(string)

	require.Equal(t, "completed", pollUntilTerminal(t, router, jobID))

	_, first := doJSON(t, router, http.MethodGet, "/result/"+jobID, nil, "")
	for i := 0; i < 5; i++ {
		_, again := doJSON(t, router, http.MethodGet, "/result/"+jobID, nil, "")
		assert.Equal(t, first, again)
	}
}

func TestListJobs(t *testing.T) {
	router, p, _ := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodGet, "/jobs", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp["jobs"])

	_, err := p.Submit(context.Background(), "a.fa", []byte("ACGT"))
	require.NoError(t, err)
	_, err = p.Submit(context.Background(), "b.fa", []byte("TGCA"))
	require.NoError(t, err)

	code, resp = doJSON(t, router, http.MethodGet, "/jobs", nil, "")
	require.Equal(t, http.StatusOK, code)
	jobs := resp["jobs"].([]interface{})
	assert.Len(t, jobs, 2)
	first := jobs[0].(map[string]interface{})
	assert.NotEmpty(t, first["job_id"])
	assert.NotEmpty(t, first["filename"])
}

func TestHealth(t *testing.T) {
	router, p, _ := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp["status"])
	assert.EqualValues(t, 0, resp["jobs_count"])

	_, err := p.Submit(context.Background(), "seq.fa", []byte("ACGT"))
	require.NoError(t, err)

	_, resp = doJSON(t, router, http.MethodGet, "/health", nil, "")
	assert.EqualValues(t, 1, resp["jobs_count"])
}
