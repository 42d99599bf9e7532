package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"coursetrack/backend/cache"
	"coursetrack/backend/config"
	"coursetrack/backend/middleware"
	"coursetrack/backend/repository"
	"coursetrack/backend/routes"
	"coursetrack/backend/services"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		Level:        cfg.LogLevel,
		EnableColors: cfg.LogFormat != "json",
	})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}

	certCache := cache.NewNopCertificateCache()
	if cfg.RedisAddr != "" {
		certCache, err = cache.NewRedisCertificateCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CertificateCacheTTL, logger)
		if err != nil {
			logger.Fatal("Error connecting to redis", "error", err)
		}
	}
	defer certCache.Close()

	repos := repository.New(db, logger)
	svc := services.New(services.Deps{
		DB:                db,
		Log:               logger,
		Repos:             repos,
		CertificateCache:  certCache,
		CertificatePrefix: cfg.CertificatePrefix,
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "coursetrack",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader,
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, cfg, repos, svc)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server starting", "port", cfg.ServerPort, "db_driver", cfg.DBDriver)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
