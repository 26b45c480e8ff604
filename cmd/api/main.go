package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeEditor/internal/api"
	"resumeEditor/internal/auth"
	"resumeEditor/internal/config"
	"resumeEditor/internal/database"
	"resumeEditor/internal/share"
	"resumeEditor/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Printf("database migrated")

	authService, err := auth.LoadAuthService(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath, cfg.Auth.AccessTokenTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	shares := share.NewService(
		database.NewShareStore(db),
		cfg.Share.PublicBaseURL,
		share.WithSlugRetries(cfg.Share.SlugRetries),
		share.WithLogger(logger),
	)

	deps := api.Deps{
		Resumes:         database.NewResumeStore(db),
		Shares:          shares,
		Auth:            authService,
		LinkURL:         shares.LinkURL,
		RateCounter:     redisClient,
		PublicRateLimit: cfg.Share.PublicRateLimit,
		Notifier:        api.RedisSubscriber{Client: redisClient},
		AllowedOrigins:  cfg.API.Origins(),
		Logger:          logger,
	}

	if cfg.Storage.Enabled() {
		storageClient, err := storage.NewClient(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer asynqClient.Close()

		deps.Queue = asynqClient
		deps.Exports = storageClient
		deps.ExportRetries = cfg.Worker.MaxRetry
		log.Printf("exports enabled, bucket=%s", cfg.Storage.Bucket)
	} else {
		logger.Info("storage endpoint not set, exports disabled")
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, deps)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
