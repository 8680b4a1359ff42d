// Точка входа Donation Module — модуль жизненного цикла донаций Hemobank.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт репозитории, сервисный слой и API handlers, запускает
// topologymetrics, HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/hemobank/donation-module/internal/api/handlers"
	"github.com/bigkaa/hemobank/donation-module/internal/api/middleware"
	"github.com/bigkaa/hemobank/donation-module/internal/config"
	"github.com/bigkaa/hemobank/donation-module/internal/database"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
	"github.com/bigkaa/hemobank/donation-module/internal/server"
	"github.com/bigkaa/hemobank/donation-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Donation Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("DM_DEPHEALTH_GROUP") == "" {
		logger.Warn("DM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	stores := repository.NewStores(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Кэш результатов проверки допуска
	donorCache := service.NewCacheService(cfg.DonorCacheSize, cfg.DonorCacheTTL)

	// 7. Services
	donorSvc := service.NewDonorService(stores.Donors, stores.Facilities, donorCache, nil, logger)
	eligibilitySvc := service.NewEligibilityService(stores.Donors, donorCache, nil, logger)
	donationSvc := service.NewDonationService(txRunner, donorCache, nil, logger)
	inventorySvc := service.NewInventoryService(stores.Stock, stores.Facilities, nil, logger)
	scheduleSvc := service.NewScheduleService(stores.Schedules, stores.Donors, nil, logger)
	facilitySvc := service.NewFacilityService(stores.Facilities, nil, logger)

	// 8. Readiness checkers (PostgreSQL + JWKS провайдера)
	pgChecker := database.NewReadinessChecker(pool)

	var idpChecker handlers.ReadinessChecker
	if cfg.JWTJWKSURL != "" {
		jwksChecker, checkerErr := middleware.NewJWKSReadinessChecker(cfg.JWTJWKSURL, cfg.JWTCACertPath, 5*time.Second)
		if checkerErr != nil {
			logger.Error("Ошибка создания JWKS readiness checker", slog.String("error", checkerErr.Error()))
			os.Exit(1)
		}
		idpChecker = jwksChecker
	}
	healthHandler := handlers.NewHealthHandler(pgChecker, idpChecker)

	// 9. JWT middleware (пустой DM_JWT_JWKS_URL — dev-режим без аутентификации)
	var authMW func(http.Handler) http.Handler
	if cfg.JWTJWKSURL != "" {
		jwtAuth, authErr := middleware.NewJWTAuth(
			cfg.JWTJWKSURL,
			cfg.JWTCACertPath,
			cfg.JWTIssuer,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			logger,
		)
		if authErr != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", authErr.Error()))
			os.Exit(1)
		}
		authMW = jwtAuth.Middleware()
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		logger.Warn("DM_JWT_JWKS_URL не задан — аутентификация ОТКЛЮЧЕНА (dev-режим)")
	}

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL + JWKS)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"donation-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseDSN(),
		cfg.JWTJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. API handlers
	h := server.Handlers{
		Health:     healthHandler,
		Donors:     handlers.NewDonorHandler(donorSvc, eligibilitySvc, logger),
		Donations:  handlers.NewDonationHandler(donationSvc, logger),
		Stock:      handlers.NewStockHandler(inventorySvc, logger),
		Schedules:  handlers.NewScheduleHandler(scheduleSvc, logger),
		Facilities: handlers.NewFacilityHandler(facilitySvc, logger),
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, authMW)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 13. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Donation Module остановлен")
}
