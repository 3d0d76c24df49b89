package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"asr-benchmark-hub/backend/internal/aiservice"
	"asr-benchmark-hub/backend/internal/apigateway"
	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/benchmarks"
	"asr-benchmark-hub/backend/internal/config"
	"asr-benchmark-hub/backend/internal/datastore"
	"asr-benchmark-hub/backend/internal/logging"
	"asr-benchmark-hub/backend/internal/mailer"
	"asr-benchmark-hub/backend/internal/objectstore"
	"asr-benchmark-hub/backend/internal/posts"
	"asr-benchmark-hub/backend/internal/users"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("SECRET_KEY is not set, using the built-in default; do not run this in production")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := datastore.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := datastore.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("schema setup failed", zap.Error(err))
	}

	userStore := datastore.NewUserStore(db)
	benchmarkStore := datastore.NewBenchmarkStore(db)
	postStore := datastore.NewPostStore(db)
	auditStore := datastore.NewAuditStore(db)

	if seeded, err := datastore.SeedPosts(ctx, postStore); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	} else if seeded > 0 {
		logger.Info("seeded sample blog posts", zap.Int("count", seeded))
	}

	// Object storage is optional: without it uploads are processed but the
	// raw files are not archived.
	var archiver benchmarks.Archiver
	if cfg.MinioEndpoint != "" {
		store, err := objectstore.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			logger.Fatal("object storage setup failed", zap.Error(err))
		}
		archiver = store
	} else {
		logger.Warn("MINIO_ENDPOINT is not set, uploads will not be archived")
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auditor := auth.NewAuditor(auditStore, logger)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP_HOST is not set, account emails will be dropped")
		mail = mailer.NewNopMailer(logger)
	}

	// The AI surface is optional as well.
	var aiHandler *aiservice.Handler
	if cfg.GeminiAPIKey != "" {
		client, err := aiservice.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("GenAI client setup failed", zap.Error(err))
		}
		aiHandler = aiservice.NewHandler(aiservice.NewService(client), logger)
	} else {
		logger.Warn("API_KEY is not set, AI endpoints will answer 503")
	}

	router := apigateway.SetupRouter(apigateway.Deps{
		Tokens:         tokens,
		Identities:     userStore,
		Users:          users.NewHandler(userStore, tokens, auditor, mail, postStore, benchmarkStore, auditStore, logger),
		Posts:          posts.NewHandler(postStore, auditor, logger),
		Benchmarks:     benchmarks.NewHandler(benchmarkStore, archiver, auditor, logger),
		AI:             aiHandler,
		AllowedOrigins: cfg.AllowedOrigins,
		Debug:          cfg.Debug,
	})

	logger.Info("starting server", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
