package api

import (
	"github.com/biosonic-labs/dna2music-api/internal/api/handlers"
	apimiddleware "github.com/biosonic-labs/dna2music-api/internal/api/middleware"
	"github.com/biosonic-labs/dna2music-api/internal/audio"
	"github.com/biosonic-labs/dna2music-api/internal/config"
	"github.com/biosonic-labs/dna2music-api/internal/metrics"
	"github.com/biosonic-labs/dna2music-api/internal/pipeline"
	"github.com/gin-gonic/gin"
)

func SetupRouter(p *pipeline.Pipeline, artifacts *audio.ArtifactStore, cfg *config.Config, m *metrics.Client) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(m))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Serve rendered audio artifacts
	router.Static("/files", cfg.OutputDir)

	// Health check
	healthHandler := handlers.NewHealthHandler(p.Store())
	router.GET("/health", healthHandler.HealthCheck)

	// Job lifecycle
	jobHandler := handlers.NewJobHandler(p, artifacts)
	router.POST("/submit", jobHandler.Submit)
	router.GET("/jobs", jobHandler.List)
	router.GET("/status/:job_id", jobHandler.Status)
	router.GET("/result/:job_id", jobHandler.Result)
	router.GET("/download/:job_id", jobHandler.Download)

	return router
}
