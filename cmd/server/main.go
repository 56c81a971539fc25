package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sifan077/LinkMe/config"
	appmodel "github.com/sifan077/LinkMe/internal/app/model"
	apprepository "github.com/sifan077/LinkMe/internal/app/repository"
	appserver "github.com/sifan077/LinkMe/internal/app/server"
	appservice "github.com/sifan077/LinkMe/internal/app/service"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	infraMetrics "github.com/sifan077/LinkMe/internal/infra/metrics"
	infraNATS "github.com/sifan077/LinkMe/internal/infra/nats"
	infraPostgres "github.com/sifan077/LinkMe/internal/infra/postgres"
	infraRedis "github.com/sifan077/LinkMe/internal/infra/redis"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.MustInit(logger.Config{
		Development: os.Getenv("APP_ENV") != "production",
		Level:       os.Getenv("LOG_LEVEL"),
		Service:     "linkme",
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log = logger.MustInit(logger.Config{
		Development: cfg.App.Development(),
		Level:       cfg.App.LogLevel,
		Encoding:    cfg.App.LogEncoding,
		Service:     "linkme",
	})

	log.Info("Configuration loaded successfully",
		zap.String("env", cfg.App.Env),
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_addr", infraRedis.Addr(cfg.Redis)),
		zap.String("nats_url", infraNATS.URL(cfg.NATS)),
		zap.Duration("session_ttl", cfg.Auth.SessionTTL),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.User{},
		&appmodel.Session{},
		&appmodel.Folder{},
		&appmodel.Link{},
		&appmodel.ActivityEvent{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("Connected to Redis successfully")
		}
	}

	activityRepo := apprepository.NewActivityRepository(gormDB)

	var publisher appservice.ActivityPublisher
	natsConn, js, err := infraNATS.Connect(cfg.NATS, log)
	if err != nil {
		log.Warn("NATS unavailable, activity events disabled", zap.Error(err))
	} else {
		defer func() { _ = natsConn.Drain() }()
		publisher = appservice.NewNATSActivityPublisher(js)

		consumer := appservice.NewActivityConsumer(js, log.Named("activity"), activityRepo)
		if err := consumer.Start(ctx); err != nil {
			log.Error("Failed to start activity consumer", zap.Error(err))
		}
		log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))
	}

	if !cfg.App.Development() {
		promServer := infraMetrics.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	authService := appservice.NewAuthService(appservice.AuthDeps{
		Users:      apprepository.NewUserRepository(gormDB),
		Sessions:   apprepository.NewSessionRepository(gormDB),
		Hasher:     appservice.NewBcryptHasher(cfg.Auth.BcryptCost),
		Activity:   publisher,
		Logger:     log,
		SessionTTL: cfg.Auth.SessionTTL,
	})

	folderRepo := apprepository.NewFolderRepository(gormDB)
	linkRepo := apprepository.NewLinkRepository(gormDB)

	folderService := appservice.NewFolderService(appservice.FolderDeps{
		Folders:  folderRepo,
		Links:    linkRepo,
		Activity: publisher,
		Logger:   log,
	})
	linkService := appservice.NewLinkService(appservice.LinkDeps{
		Folders:  folderRepo,
		Links:    linkRepo,
		Activity: publisher,
		Logger:   log,
	})

	reaper := appservice.NewSessionReaper(log.Named("reaper"), authService, cfg.Auth.ReaperInterval)
	reaper.Start()
	defer reaper.Stop()

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		HTTP:      cfg.HTTP,
		RateLimit: cfg.RateLimit,
		Postgres:  pool,
		Redis:     redisClient,
		Auth:      authService,
		Folders:   folderService,
		Links:     linkService,
		Activity:  activityRepo,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		serverErr <- server.Listen(cfg.HTTP.Addr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Fiber server exited", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}
}
