package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-payments.backend/internal/config"
	"go-payments.backend/internal/domain/entities"
	"go-payments.backend/internal/infrastructure/blockchain"
	"go-payments.backend/internal/infrastructure/jobs"
	"go-payments.backend/internal/infrastructure/repositories"
	"go-payments.backend/internal/interfaces/http/handlers"
	"go-payments.backend/internal/interfaces/http/middleware"
	"go-payments.backend/internal/usecases"
	"go-payments.backend/pkg/jwt"
	"go-payments.backend/pkg/logger"
	"go-payments.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Asset{},
		&entities.PaymentTemplate{},
		&entities.Transfer{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.SessionExpiry)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	assetRepo := repositories.NewAssetRepository(db)
	templateRepo := repositories.NewTemplateRepository(db)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, redis.NewNonceStore(), cfg.Auth.LoginMaxAge)
	templateUsecase := usecases.NewTemplateUsecase(templateRepo, userRepo, assetRepo)

	// Handlers
	secureCookie := cfg.Server.Env == "production"
	authHandler := handlers.NewAuthHandler(authUsecase, jwtService, secureCookie)
	userHandler := handlers.NewUserHandler(userRepo)
	templateHandler := handlers.NewTemplateHandler(templateUsecase)
	assetHandler := handlers.NewAssetHandler(assetRepo)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Background executor job
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var executorJob *jobs.TemplateExecutor
	if cfg.Executor.PrivateKey != "" {
		executor, err := blockchain.NewExecutor(cfg.Executor.PrivateKey, cfg.Executor.RPCURLs)
		if err != nil {
			return fmt.Errorf("failed to initialize executor: %w", err)
		}
		executorJob = jobs.NewTemplateExecutor(templateRepo, executor, cfg.Executor.PollInterval, logger.L())
		if err := executorJob.Start(ctx); err != nil {
			return fmt.Errorf("failed to start executor job: %w", err)
		}
		logger.Info(ctx, "Executor job started", zap.String("operator", executor.Address().Hex()))
	} else {
		logger.Warn(ctx, "EXECUTOR_PRIVATE_KEY not set, scheduled payments will not execute")
	}

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins...))

	registerRoutes(r, routeDeps{
		authHandler:     authHandler,
		userHandler:     userHandler,
		templateHandler: templateHandler,
		assetHandler:    assetHandler,
		authMiddleware:  authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if executorJob != nil {
			executorJob.Stop()
		}
		cancel()
	}()

	log.Printf("Payments backend starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
