package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskify/backend/api/handler"
	"github.com/taskify/backend/internal/config"
	"github.com/taskify/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskify/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskify/backend/internal/infrastructure/redis"
	"github.com/taskify/backend/internal/mail"
	"github.com/taskify/backend/internal/middleware"
	"github.com/taskify/backend/internal/router"
	"github.com/taskify/backend/internal/services"
	"github.com/taskify/backend/internal/services/lifecycle"
	"github.com/taskify/backend/internal/session"
	"github.com/taskify/backend/pkg/httpcontext"
	"github.com/taskify/backend/pkg/logger"
	"github.com/taskify/backend/repository/postgres"
	redisRepo "github.com/taskify/backend/repository/redis"
	authUC "github.com/taskify/backend/usecase/auth"
	taskUC "github.com/taskify/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if cfg.Migrations.Enabled {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pool, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	markRepo := redisRepo.NewReminderMarkRepository(redisClient, cfg.Scheduler.MarkTTL)

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	mailer := mail.NewSMTPMailer(cfg.SMTP)

	authUseCase := authUC.New(userRepo, sessions, mailer, cfg.Session.BcryptCost, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	if cfg.Scheduler.Enabled {
		reminders := services.NewReminderProcessor(
			taskRepo,
			userRepo,
			markRepo,
			mailer,
			zapLogger,
			services.ReminderConfig{
				Hour:        cfg.Scheduler.Hour,
				SendTimeout: cfg.Scheduler.SendTimeout,
				MarkTTL:     cfg.Scheduler.MarkTTL,
			},
		)
		reminders.Start()
		manager.Register("reminder_processor", func(ctx context.Context) error {
			reminders.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Pages:  apiHandler.NewPagesHandler(),
		Auth:   apiHandler.NewAuthHandler(authUseCase, sessions, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	mw := router.Middleware{
		BrowserGuard: middleware.SessionGuard(sessions, middleware.DenyRedirect, zapLogger),
		APIGuard:     middleware.SessionGuard(sessions, middleware.DenyJSON, zapLogger),
	}
	r := router.New(handlers, mw)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
