package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SylvanToken/AirDropWeb-sub006/internal/audit"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/completion"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/fraud"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/sweeper"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/task"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/user"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/config"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/database"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/eventbus"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/logger"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/middleware"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/ratelimit"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/redis"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load("rewards-api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Run database migrations
	if err := database.RunMigrations(&cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Connect to NATS when enabled. A nil bus degrades publishing to a no-op.
	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.Connect(cfg.NATS.URL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer bus.Close()
		logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
	}

	// Repositories
	taskRepo := task.NewRepository(pool)
	completionRepo := completion.NewRepository(pool)
	fraudRepo := fraud.NewRepository(pool)
	auditRepo := audit.NewRepository(pool)
	userRepo := user.NewRepository(pool)

	// Services
	taskService := task.NewService(taskRepo)
	fraudService := fraud.NewService(fraudRepo)
	auditService := audit.NewService(auditRepo)
	completionService := completion.NewService(completionRepo, taskRepo, fraudService, auditService, bus, &cfg.Policy)

	// Sweeper worker shares the pool through the narrow Database interface
	worker := sweeper.NewWorker(pool, logger.Get(), bus, cfg.Policy)

	// Handlers
	taskHandler := task.NewHandler(taskService)
	completionHandler := completion.NewHandler(completionService)
	auditHandler := audit.NewHandler(auditService)
	userHandler := user.NewHandler(userRepo)
	sweeperHandler := sweeper.NewHandler(worker)

	// Rate limiter for submission endpoints
	limiter := ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit)

	router := setupRouter(cfg, pool, redisClient, taskHandler, completionHandler, auditHandler, userHandler, sweeperHandler, limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func setupRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	taskHandler *task.Handler,
	completionHandler *completion.Handler,
	auditHandler *audit.Handler,
	userHandler *user.Handler,
	sweeperHandler *sweeper.Handler,
	limiter *ratelimit.Limiter,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, map[string]func() error{
		"postgres": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jwtSecret := cfg.JWT.Secret

	api := router.Group("/api/v1")
	{
		// Public task catalog
		api.GET("/tasks", taskHandler.ListActiveTasks)
		api.GET("/tasks/:id", taskHandler.GetTask)

		// Authenticated user endpoints
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(jwtSecret))
		{
			authed.GET("/users/me", userHandler.GetMe)
			authed.GET("/users/me/completions", completionHandler.ListMyCompletions)
			authed.GET("/leaderboard", userHandler.GetLeaderboard)

			submit := authed.Group("")
			if cfg.RateLimit.Enabled {
				submit.Use(limiter.Middleware())
			}
			submit.POST("/tasks/:id/complete", completionHandler.SubmitCompletion)
		}

		// Admin endpoints
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole(user.RoleAdmin))
		{
			admin.GET("/verifications", completionHandler.ListPendingCompletions)
			admin.POST("/verifications/:id", completionHandler.ReviewCompletion)
			admin.POST("/tasks", taskHandler.CreateTask)
			admin.PUT("/tasks/:id", taskHandler.UpdateTask)
			admin.GET("/tasks", taskHandler.ListAllTasks)
			admin.GET("/audit-log", auditHandler.ListAuditLog)
			admin.GET("/audit-log/:entity_type/:id", auditHandler.ListEntityAuditLog)
		}

		// Cron endpoints, shared-secret gated
		cron := api.Group("/cron")
		cron.Use(middleware.CronAuth(cfg.Cron.Secret))
		{
			cron.GET("/auto-approve", sweeperHandler.AutoApprove)
			cron.POST("/auto-approve", sweeperHandler.AutoApprove)
			cron.GET("/auto-reject-pending", sweeperHandler.AutoRejectPending)
			cron.POST("/auto-reject-pending", sweeperHandler.AutoRejectPending)
		}

		// Expiration sweep, operator triggered
		api.POST("/tasks/mark-expired", middleware.CronAuth(cfg.Cron.Secret), sweeperHandler.MarkExpired)
	}

	return router
}
