// Пакет server — HTTP-сервер Donation Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/hemobank/donation-module/internal/api/handlers"
	"github.com/bigkaa/hemobank/donation-module/internal/api/middleware"
	"github.com/bigkaa/hemobank/donation-module/internal/config"
)

// Handlers — набор HTTP-обработчиков для регистрации маршрутов.
type Handlers struct {
	Health     *handlers.HealthHandler
	Donors     *handlers.DonorHandler
	Donations  *handlers.DonationHandler
	Stock      *handlers.StockHandler
	Schedules  *handlers.ScheduleHandler
	Facilities *handlers.FacilityHandler
}

// Server — HTTP-сервер Donation Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// authMW — JWT middleware; nil отключает аутентификацию и RBAC (dev-режим).
func New(cfg *config.Config, logger *slog.Logger, h Handlers, authMW func(http.Handler) http.Handler) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.MetricsMiddleware())

	// Служебные endpoints — вне /api/v1, без аутентификации.
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	authEnabled := authMW != nil

	router.Route("/api/v1", func(r chi.Router) {
		if authEnabled {
			r.Use(authMW)
		}

		// Доноры
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Post("/donors", h.Donors.Register)
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Put("/donors/{donorId}", h.Donors.Update)
		r.With(roleGuard(authEnabled, middleware.RoleDonor, middleware.RoleFacility, middleware.RoleAdmin)).
			Get("/donors/{donorId}/eligibility", h.Donors.Eligibility)
		r.With(roleGuard(authEnabled, middleware.RoleDonor, middleware.RoleFacility, middleware.RoleAdmin)).
			Get("/donors/{donorId}/donations", h.Donors.History)

		// Донации
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Post("/donations", h.Donations.Record)

		// Склад крови
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Post("/stock/replenish", h.Stock.Replenish)
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Post("/stock/withdraw", h.Stock.Withdraw)
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Get("/stock", h.Stock.List)

		// Записи на донацию
		r.With(roleGuard(authEnabled, middleware.RoleDonor, middleware.RoleAdmin)).
			Post("/schedules", h.Schedules.Book)
		r.With(roleGuard(authEnabled, middleware.RoleDonor, middleware.RoleAdmin)).
			Get("/schedules/upcoming", h.Schedules.Upcoming)
		r.With(roleGuard(authEnabled, middleware.RoleDonor, middleware.RoleAdmin)).
			Post("/schedules/{scheduleId}/cancel", h.Schedules.Cancel)

		// Учреждения
		r.With(roleGuard(authEnabled, middleware.RoleFacility, middleware.RoleAdmin)).
			Post("/facilities/login", h.Facilities.RecordLogin)
		r.With(roleGuard(authEnabled, middleware.RoleAdmin)).
			Post("/facilities", h.Facilities.Register)
		r.With(roleGuard(authEnabled, middleware.RoleAdmin)).
			Put("/facilities/{facilityId}/status", h.Facilities.SetStatus)
		r.With(roleGuard(authEnabled, middleware.RoleAdmin)).
			Get("/facilities/{facilityId}/audit", h.Facilities.Audit)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// roleGuard возвращает RBAC middleware для указанных ролей.
// При отключённой аутентификации запросы проходят без проверки.
func roleGuard(authEnabled bool, roles ...string) func(http.Handler) http.Handler {
	if !authEnabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequireRole(roles...)
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
