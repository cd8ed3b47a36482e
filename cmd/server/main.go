package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dkondrashov/marketplace-backend/internal/config"
	"github.com/dkondrashov/marketplace-backend/internal/db"
	httpHandlers "github.com/dkondrashov/marketplace-backend/internal/http/handlers"
	httpRouter "github.com/dkondrashov/marketplace-backend/internal/http/router"
	"github.com/dkondrashov/marketplace-backend/internal/logger"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
	"github.com/dkondrashov/marketplace-backend/internal/service"
	"github.com/dkondrashov/marketplace-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn)
	milestoneRepo := repository.NewMilestoneRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	notificationService := service.NewNotificationService(notificationRepo)
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	walletService := service.NewWalletService(walletRepo)
	jobService := service.NewJobService(jobRepo, walletRepo)
	applicationService := service.NewApplicationService(applicationRepo, jobRepo, hub)
	milestoneService := service.NewMilestoneService(milestoneRepo, jobRepo, applicationRepo, hub)
	escrowService := service.NewEscrowService(escrowRepo, hub)

	// Фоновая очистка просроченных сессий.
	go cleanupSessions(ctx, authService)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	walletHandler := httpHandlers.NewWalletHandler(walletService)
	jobHandler := httpHandlers.NewJobHandler(jobService)
	applicationHandler := httpHandlers.NewApplicationHandler(applicationService)
	milestoneHandler := httpHandlers.NewMilestoneHandler(milestoneService, escrowService)
	escrowHandler := httpHandlers.NewEscrowHandler(escrowService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg,
		authHandler, walletHandler, jobHandler, applicationHandler,
		milestoneHandler, escrowHandler, notificationHandler,
		wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// cleanupSessions раз в час удаляет просроченные refresh сессии.
func cleanupSessions(ctx context.Context, auth *service.AuthService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := auth.CleanupSessions(ctx)
			if err != nil {
				logger.Log.Warnf("main: очистка сессий завершилась с ошибкой: %v", err)
				continue
			}
			if removed > 0 {
				logger.Log.Infof("main: удалено просроченных сессий: %d", removed)
			}
		}
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
