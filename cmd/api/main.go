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
	sentrygin "github.com/getsentry/sentry-go/gin"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/internal/platform/auth"
	httpPlatform "github.com/iai-group/arxivdigest-go/internal/platform/http"
	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
	"github.com/iai-group/arxivdigest-go/internal/platform/mailer"
	"github.com/iai-group/arxivdigest-go/internal/platform/postgres"
	"github.com/iai-group/arxivdigest-go/internal/platform/redis"
	"github.com/iai-group/arxivdigest-go/internal/platform/storage"

	digestService "github.com/iai-group/arxivdigest-go/modules/digest/service"
	feedbackHandler "github.com/iai-group/arxivdigest-go/modules/feedback/handler"
	feedbackService "github.com/iai-group/arxivdigest-go/modules/feedback/service"
	ingestionHandler "github.com/iai-group/arxivdigest-go/modules/ingestion/handler"
	ingestionService "github.com/iai-group/arxivdigest-go/modules/ingestion/service"
	ledgerRepo "github.com/iai-group/arxivdigest-go/modules/ledger/repository"
	operatorHandler "github.com/iai-group/arxivdigest-go/modules/operator/handler"
	operatorRepo "github.com/iai-group/arxivdigest-go/modules/operator/repository"
	operatorService "github.com/iai-group/arxivdigest-go/modules/operator/service"
	rewardService "github.com/iai-group/arxivdigest-go/modules/reward/service"
	scheduleHandler "github.com/iai-group/arxivdigest-go/modules/schedule/handler"
	scheduleService "github.com/iai-group/arxivdigest-go/modules/schedule/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title arXiv Digest Core API
// @version 1.0
// @description Online evaluation engine for arXiv article/topic recommender systems: ingestion, interleaving, digest dispatch, feedback attribution, and reward aggregation.
// @termsOfService http://swagger.io/terms/

// @contact.name IAI Group

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			appLogger.Warn("Failed to initialize Sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	appLogger.Info("Starting arXiv Digest core API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Initialize PostgreSQL
	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()
	appLogger.Info("Connected to PostgreSQL")

	// Run database migrations (MANDATORY: must run before HTTP server starts)
	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, appLogger, migrationsPath); err != nil {
		appLogger.Fatal("Failed to run database migrations",
			zap.Error(err),
			zap.String("migrations_path", migrationsPath),
		)
	}

	// Initialize Redis
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis")
	dailyLock := redis.NewDailyLock(redisClient, 23*time.Hour)

	// Initialize S3 client (optional - gracefully handle missing config)
	var s3Client *storage.S3Client
	var digestArchiver *storage.DigestArchiver
	if cfg.S3.Endpoint != "" && cfg.S3.Bucket != "" {
		s3Client, err = storage.NewS3Client(cfg.S3)
		if err != nil {
			appLogger.Warn("Failed to initialize S3 client, digest archival will be disabled", zap.Error(err))
		} else {
			digestArchiver = storage.NewDigestArchiver(s3Client)
			appLogger.Info("S3 client initialized", zap.String("bucket", cfg.S3.Bucket))
		}
	} else {
		appLogger.Info("S3 configuration not provided, digest archival will be disabled")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(appLogger))
	router.Use(httpPlatform.CORSMiddleware())

	// Swagger documentation (available in development)
	if cfg.Server.Env != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		appLogger.Info("Swagger UI available at /swagger/index.html")
	}

	// Health check endpoint
	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient))

	// Ping endpoint
	router.GET("/ping", pingHandler)

	// Initialize JWT manager (operator console auth only -- the public
	// recommendation surface is authenticated by system key instead)
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authMiddleware := auth.AuthMiddleware(jwtManager)

	// Ledger store: the single durable backend behind every domain module
	ledgerStore := ledgerRepo.NewStore(pgClient.Pool)

	// Operator console auth
	operatorRepository := operatorRepo.NewOperatorRepository(pgClient.Pool)
	operatorTokenRepository := operatorRepo.NewRefreshTokenRepository(pgClient.Pool)
	operatorAuthSvc := operatorService.NewAuthService(
		operatorRepository,
		operatorTokenRepository,
		jwtManager,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	operatorAuthHdl := operatorHandler.NewAuthHandler(operatorAuthSvc)

	// Ingestion surface (external system push)
	systemKeyMiddleware := auth.SystemKeyMiddleware(ledgerStore)
	ingestionSvc := ingestionService.NewIngestionService(ledgerStore, cfg.Ingestion)
	ingestionHdl := ingestionHandler.NewIngestionHandler(ingestionSvc)

	// Digest dispatch
	var mailCollaborator *mailer.ResendMailer
	if cfg.Email.ResendAPIKey != "" {
		mailCollaborator = mailer.NewResendMailer(cfg.Email)
	}
	digestDispatcher := digestService.NewDispatcher(ledgerStore, mailCollaborator, digestArchiver, cfg.Email, appLogger).
		WithDailyLock(dailyLock)

	// Feedback attribution (public callback surface)
	feedbackAttributor := feedbackService.NewAttributor(ledgerStore)
	feedbackHdl := feedbackHandler.NewFeedbackHandler(feedbackAttributor, digestDispatcher)

	// Operator batch/reward console
	articleScheduler := scheduleService.NewArticleScheduler(ledgerStore, cfg.Interleave, appLogger).
		WithDailyLock(dailyLock)
	rewardAggregator := rewardService.NewAggregator(ledgerStore, cfg.Evaluation)
	batchHdl := operatorHandler.NewBatchHandler(ledgerStore, articleScheduler, digestDispatcher, rewardAggregator, cfg.Interleave.UsersPerBatch)

	// On-demand topic path, invoked by the UI per user
	topicScheduler := scheduleService.NewTopicScheduler(ledgerStore, cfg.Interleave, appLogger)
	topicHdl := scheduleHandler.NewTopicHandler(topicScheduler)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		operatorAuthHdl.RegisterRoutes(v1)

		recommendations := v1.Group("/recommendations")
		recommendations.Use(systemKeyMiddleware)
		ingestionHdl.RegisterRoutes(recommendations)

		feedbackHdl.RegisterRoutes(v1)
		topicHdl.RegisterRoutes(v1)

		operatorGroup := v1.Group("/operator")
		operatorGroup.Use(authMiddleware)
		batchHdl.RegisterRoutes(operatorGroup)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// healthCheckHandler godoc
// @Summary Health Check
// @Description Check the health status of the application and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} http.HealthResponse
// @Router /health [get]
func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		// Check PostgreSQL
		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		// Check Redis
		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

// pingHandler godoc
// @Summary Ping
// @Description Simple ping endpoint to check if the API is responding
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
