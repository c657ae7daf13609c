package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/scentaustralia/leadgen/config"
	"github.com/scentaustralia/leadgen/pkg/acquire"
	"github.com/scentaustralia/leadgen/pkg/api/handlers"
	"github.com/scentaustralia/leadgen/pkg/export"
	"github.com/scentaustralia/leadgen/pkg/jobs"
	"github.com/scentaustralia/leadgen/pkg/logger"
	custommw "github.com/scentaustralia/leadgen/pkg/middleware"
	"github.com/scentaustralia/leadgen/pkg/metrics"
	"github.com/scentaustralia/leadgen/pkg/provider"
	"github.com/scentaustralia/leadgen/pkg/scoring"
	"github.com/scentaustralia/leadgen/pkg/store"
)

func main() {
	// Load .env if present (development convenience)
	if err := godotenv.Load(); err == nil {
		log.Printf("🔧 Loaded environment from .env")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Core services
	leadStore := store.NewService(appLogger)

	profile := scoring.TargetProfile{
		Industries:  cfg.TargetIndustries,
		Locations:   cfg.TargetLocations,
		MajorCities: cfg.MajorCities,
		Products:    cfg.ProductCatalog,
	}

	var assessor scoring.Assessor
	var composer scoring.Composer
	aiEnabled := cfg.OpenAIAPIKey != ""
	if aiEnabled {
		openaiAssessor := scoring.NewOpenAIAssessor(scoring.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: float32(cfg.OpenAITemperature),
			MaxTokens:   cfg.OpenAIMaxTokens,
		}, appLogger)
		assessor = openaiAssessor
		composer = openaiAssessor
		log.Printf("✅ OpenAI scoring backend initialized (model: %s)", cfg.OpenAIModel)
	} else {
		log.Printf("ℹ️  OpenAI disabled (no API key); scoring uses the deterministic fallback")
	}

	scoringService := scoring.NewService(leadStore, assessor, composer, profile, appLogger)

	source := buildSource(cfg, appLogger)
	log.Printf("✅ Lead source initialized: %s", source.Name())

	orchestrator := jobs.NewService(leadStore, scoringService, source, acquire.NewAdapter("AU"), jobs.Config{
		MaxLeadsCeiling: cfg.MaxLeadsPerJob,
		BatchSize:       cfg.ProviderBatchSize,
		Retries:         cfg.ProviderRetries,
		Workers:         cfg.JobWorkers,
		PreviewSample:   cfg.PreviewSampleSize,
	}, appLogger)

	exportService := export.NewService(leadStore, cfg.ExportFolder, cfg.MaxExportRows, appLogger)

	// Prometheus metrics
	prometheusMetrics := metrics.New(leadStore, orchestrator)
	log.Printf("✅ Prometheus metrics initialized")

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(echomw.Gzip())
	e.Use(echomw.Secure())

	globalRateLimiter := custommw.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	e.Use(globalRateLimiter.Middleware())

	// Handlers
	healthHandler := handlers.NewHealthHandler(source.Name(), aiEnabled)
	leadHandler := handlers.NewLeadHandler(leadStore, scoringService)
	jobHandler := handlers.NewJobHandler(orchestrator)
	exportHandler := handlers.NewExportHandler(exportService)

	// Routes
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", prometheusMetrics.Handler())

	v1 := e.Group("/api/v1")

	leadsGroup := v1.Group("/leads")
	leadsGroup.GET("", leadHandler.List)
	leadsGroup.POST("", leadHandler.Create)
	leadsGroup.GET("/stats", leadHandler.Stats)
	leadsGroup.POST("/bulk-status", leadHandler.BulkStatus)
	leadsGroup.POST("/bulk-score", leadHandler.BulkScore)
	leadsGroup.POST("/quick-analyze", leadHandler.QuickAnalyze)
	leadsGroup.GET("/:id", leadHandler.Get)
	leadsGroup.PATCH("/:id", leadHandler.Update)
	leadsGroup.DELETE("/:id", leadHandler.Delete)
	leadsGroup.POST("/:id/score", leadHandler.Score)
	leadsGroup.GET("/:id/outreach", leadHandler.Outreach)

	jobsGroup := v1.Group("/jobs")
	jobsGroup.GET("", jobHandler.List)
	jobsGroup.POST("", jobHandler.Submit)
	jobsGroup.POST("/preview", jobHandler.Preview)
	jobsGroup.GET("/stats", jobHandler.Stats)
	jobsGroup.GET("/:id", jobHandler.Get)
	jobsGroup.POST("/:id/stop", jobHandler.Stop)

	exportsGroup := v1.Group("/exports")
	exportsGroup.GET("", exportHandler.List)
	exportsGroup.POST("", exportHandler.Create)
	exportsGroup.GET("/:id", exportHandler.Get)
	exportsGroup.GET("/:id/download", exportHandler.Download)

	// Scheduled maintenance
	cronManager := jobs.NewCronManager(orchestrator, cfg.JobRetentionDays, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()
	log.Printf("✅ Cron jobs started successfully")

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Lead generation API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: Daily 3AM (job retention sweep, %d days)", cfg.JobRetentionDays)
	log.Printf("🎯 Target profile: %d industries, %d locations", len(cfg.TargetIndustries), len(cfg.TargetLocations))

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// buildSource selects the lead provider from configuration.
func buildSource(cfg *config.Config, appLogger logger.Logger) provider.Source {
	switch cfg.ProviderKind {
	case "directory":
		return provider.NewDirectorySource(provider.DirectoryConfig{
			RequestsPerMinute: cfg.ProviderRequestsPerMinute,
		}, appLogger)
	case "fake":
		return provider.NewFakeSource()
	default:
		return provider.NewApolloSource(provider.ApolloConfig{
			APIKey:            cfg.ApolloAPIKey,
			BaseURL:           cfg.ApolloBaseURL,
			RequestsPerMinute: cfg.ProviderRequestsPerMinute,
		}, appLogger)
	}
}
