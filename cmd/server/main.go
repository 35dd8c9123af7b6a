package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/todo-api/configs"
	"github.com/maheshrc27/todo-api/internal/api"
	"github.com/maheshrc27/todo-api/internal/api/handlers"
	"github.com/maheshrc27/todo-api/internal/api/middleware"
	job "github.com/maheshrc27/todo-api/internal/jobs"
	"github.com/maheshrc27/todo-api/internal/queue"
	"github.com/maheshrc27/todo-api/internal/repository"
	"github.com/maheshrc27/todo-api/internal/service"
	"github.com/maheshrc27/todo-api/internal/web"
	"github.com/maheshrc27/todo-api/pkg/utils"
	"github.com/robfig/cron"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.Ping(); err != nil {
		logger.Fatal("database is unreachable", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	// Without Redis there is no lapse task; expiry is applied on read and by the sweep.
	var (
		client      *asynq.Client
		asynqServer *asynq.Server
		lapse       service.LapseScheduler
	)
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client = asynq.NewClient(redisConn)
		lapse = queue.NewLapseScheduler(client, logger)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
			Logger:      logger.Sugar(),
		})
		mux := asynq.NewServeMux()
		queue.NewQueue(userRepo, logger).Register(mux)

		logger.Info("starting the asynq server")
		if err := asynqServer.Start(mux); err != nil {
			logger.Fatal("could not start asynq server", zap.Error(err))
		}
	}

	todoService := service.NewTodoService(todoRepo, logger, cfg.TodoQuota, cfg.TodosPerPage)
	subscriptionService := service.NewSubscriptionService(userRepo, lapse, logger)
	userService := service.NewUserService(userRepo, logger)
	webhookService := service.NewWebhookService(cfg.WebhookSecret, userService, logger)
	identityService := service.NewIdentityService(cfg.Identity.APIURL, cfg.Identity.SecretKey, logger)
	adminService := service.NewAdminService(userRepo, todoRepo)

	var tokens middleware.TokenValidator
	verifier, err := utils.NewSessionVerifier(cfg.Session.Secret, cfg.Session.PublicKey)
	if err != nil {
		logger.Warn("session verification disabled, all requests are anonymous", zap.Error(err))
	} else {
		tokens = verifier
	}

	pages, err := web.Load()
	if err != nil {
		logger.Fatal("failed to load pages", zap.Error(err))
	}

	authMiddleware := middleware.NewAuthMiddleware(tokens, identityService, cfg.Session.CookieName, logger)

	app := api.NewApp(logger, authMiddleware, api.Handlers{
		Todos:        handlers.NewTodoHandler(todoService, logger),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService, logger),
		Webhook:      handlers.NewWebhookHandler(webhookService, logger),
		Admin:        handlers.NewAdminHandler(adminService, logger),
		Pages:        handlers.NewPageHandler(pages, cfg.Identity.SignInURL, cfg.TodoQuota, logger),
		Health:       handlers.NewHealthHandler(db),
	}, api.Options{
		FrontendURL:       cfg.FrontendURL,
		RateLimitWriteMax: cfg.RateLimitWriteMax,
	})

	// cron jobs
	sweepJob := job.NewSubscriptionSweepJob(userRepo, logger)
	c, err := sweepJob.Schedule(cfg.SubscriptionSweepSpec)
	if err != nil {
		logger.Fatal("invalid subscription sweep schedule", zap.String("spec", cfg.SubscriptionSweepSpec), zap.Error(err))
	}
	if c != nil {
		c.Start()
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()
	logger.Info("server is running", zap.String("port", cfg.Port))

	gracefulShutdown(logger, app, c, asynqServer, client, db)
}

func gracefulShutdown(logger *zap.Logger, app *fiber.App, c *cron.Cron, asynqServer *asynq.Server, client *asynq.Client, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("failed to shut down server", zap.Error(err))
	}
	if c != nil {
		c.Stop()
	}
	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if client != nil {
		if err := client.Close(); err != nil {
			logger.Error("failed to close asynq client", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	closeDB(ctx, logger, db)
	logger.Info("server shutdown complete")
}

func closeDB(ctx context.Context, logger *zap.Logger, db *sql.DB) {
	done := make(chan error, 1)
	go func() { done <- db.Close() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Warn("timed out closing database")
	}
}
