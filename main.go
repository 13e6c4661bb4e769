package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"gym/internal/config"
	"gym/internal/database"
	"gym/internal/handlers"
	"gym/internal/middleware"
	"gym/internal/repositories"
	"gym/internal/services"
	"gym/pkg/logger"
	"gym/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Critical("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Output: os.Stdout,
		Env:    cfg.Env,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// --- Database ---
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Critical("failed to connect to database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Critical("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// --- RabbitMQ (optional) ---
	// The services only see a publisher when one is configured.
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, log)
		if err != nil {
			log.Critical("failed to initialize RabbitMQ client", "error", err)
			os.Exit(1)
		}
		events = mqClient

		go func() {
			log.Info("starting RabbitMQ consumer", "queue", cfg.RabbitMQ.Queue)
			if err := mqClient.ConsumeEvents(rabbitmq.LogEvents(log)); err != nil {
				log.Error("failed to start RabbitMQ consumer", "error", err)
			}
		}()
	}

	app, err := newApp(cfg, db, events, log)
	if err != nil {
		log.Critical("failed to create app", "error", err)
		os.Exit(1)
	}

	// --- Start HTTP Server ---
	log.Info("starting server", "port", cfg.AppPort, "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Critical("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during Fiber shutdown", "error", err)
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Error("error closing RabbitMQ client", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server gracefully stopped")
}

// newApp wires repositories, services and handlers into a Fiber app. events
// may be nil.
func newApp(cfg *config.Config, db *gorm.DB, events services.EventPublisher, log logger.Logger) (*fiber.App, error) {
	repo := repositories.NewGORMRepository(db)
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	issuer := services.NewCredentialIssuer(hasher)

	authService := services.NewAuthService(repo, hasher, cfg.JWTSecret, cfg.SessionTTL, log)
	traineeService := services.NewTraineeService(repo, issuer, events, log)
	trainerService := services.NewTrainerService(repo, issuer, events, log)
	trainingService := services.NewTrainingService(repo, events, log)
	trainingTypeService := services.NewTrainingTypeService(repo, log)

	if cfg.DB.SeedTrainingTypes {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := trainingTypeService.SeedDefaults(ctx, services.DefaultTrainingTypes); err != nil {
			return nil, err
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "gym",
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events != nil,
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.InternalError("health check failed", err)
			status["status"] = "unhealthy"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	sessionRequired := middleware.SessionRequired(authService, log)

	handlers.NewAuthHandler(authService, traineeService, trainerService, log).RegisterRoutes(apiV1, sessionRequired)
	handlers.NewTraineeHandler(traineeService, trainerService, log).RegisterRoutes(apiV1, sessionRequired)
	handlers.NewTrainerHandler(trainerService, log).RegisterRoutes(apiV1, sessionRequired)
	handlers.NewTrainingHandler(trainingService, log).RegisterRoutes(apiV1, sessionRequired)
	handlers.NewTrainingTypeHandler(trainingTypeService, log).RegisterRoutes(apiV1)

	return app, nil
}
