package main

import (
	"context"
	"log"
	"time"

	"github.com/biosonic-labs/dna2music-api/internal/api"
	"github.com/biosonic-labs/dna2music-api/internal/audio"
	"github.com/biosonic-labs/dna2music-api/internal/config"
	"github.com/biosonic-labs/dna2music-api/internal/database"
	"github.com/biosonic-labs/dna2music-api/internal/enhance"
	"github.com/biosonic-labs/dna2music-api/internal/metrics"
	"github.com/biosonic-labs/dna2music-api/internal/pipeline"
	"github.com/biosonic-labs/dna2music-api/internal/store"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout      = 2 * time.Second
	environmentProduction   = "production"
	externalEnhancerTimeout = 10 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "dna2music-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            cfg.Environment != environmentProduction,
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	// Job store: Postgres when configured, in-memory otherwise
	var jobStore store.JobStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations:", err)
		}
		jobStore = store.NewGormStore(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory job store")
		jobStore = store.NewMemoryStore()
	}

	// Artifact output
	artifacts, err := audio.NewArtifactStore(cfg.OutputDir)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to prepare output directory:", err)
	}

	// Metrics
	cwMetrics, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("CloudWatch metrics unavailable: %v", err)
	}

	// Enhancement stage
	var enhancer enhance.NoteEnhancer
	switch cfg.EnhancerMode {
	case "jitter":
		enhancer = enhance.NewJitter(cfg.EnhancerSeed)
	case "external":
		if cfg.EnhancerURL == "" {
			log.Println("ENHANCER_URL not set, falling back to identity enhancer")
			enhancer = enhance.Identity{}
		} else {
			enhancer = enhance.NewExternal(cfg.EnhancerURL, externalEnhancerTimeout)
		}
	default:
		enhancer = enhance.Identity{}
	}

	// Pipeline and worker pool
	p := pipeline.New(jobStore, artifacts, enhancer, cwMetrics)
	pool := pipeline.NewPool(p, cfg.WorkerCount)
	pool.Start(context.Background())
	defer pool.Stop()

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(p, artifacts, cfg, cwMetrics)

	log.Printf("Starting server on port %s (%d workers)", cfg.Port, cfg.WorkerCount)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}
