package handlers

import (
	"net/http"

	"github.com/biosonic-labs/dna2music-api/internal/store"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness and job volume
type HealthHandler struct {
	store store.JobStore
}

func NewHealthHandler(st store.JobStore) *HealthHandler {
	return &HealthHandler{store: st}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"jobs_count": count,
	})
}
