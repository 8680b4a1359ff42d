// inventory.go — сервис склада крови (Inventory Ledger).
// Пополнение и списание учреждением, чтение остатков.
// Атомарность на одном ключе обеспечивает слой репозитория.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

// stockWithdrawalsTotal — счётчик списаний со склада по группам крови.
var stockWithdrawalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dm_stock_withdrawals_total",
	Help: "Общее количество списаний со склада крови.",
}, []string{"blood_group"})

// InventoryService — сервис склада крови.
type InventoryService struct {
	stock      repository.BloodStockRepository
	facilities repository.FacilityRepository
	now        Clock
	logger     *slog.Logger
}

// NewInventoryService создаёт сервис склада.
// Если now == nil — используется SystemClock.
func NewInventoryService(
	stock repository.BloodStockRepository,
	facilities repository.FacilityRepository,
	now Clock,
	logger *slog.Logger,
) *InventoryService {
	if now == nil {
		now = SystemClock
	}
	return &InventoryService{
		stock:      stock,
		facilities: facilities,
		now:        now,
		logger:     logger.With(slog.String("component", "inventory_service")),
	}
}

// StockItem — запись склада с признаком истечения срока годности.
// Просроченные записи не удаляются: вызывающая сторона сама
// решает, что с ними делать.
type StockItem struct {
	*model.BloodStockEntry
	// Expired — срок годности истёк на момент чтения
	Expired bool
}

// checkFacility проверяет, что учреждение существует и одобрено.
func (s *InventoryService) checkFacility(ctx context.Context, facilityID string) error {
	f, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("получение учреждения: %w", err)
	}
	if f.Status != model.FacilityStatusApproved {
		return ErrFacilityNotApproved
	}
	return nil
}

// Replenish пополняет остаток по ключу (учреждение, группа крови) на qty единиц.
// Срок годности сбрасывается: now + StockShelfLife.
func (s *InventoryService) Replenish(ctx context.Context, facilityID string, group model.BloodGroup, qty int) (*model.BloodStockEntry, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !model.IsValidBloodGroup(group) {
		return nil, fmt.Errorf("%w: неизвестная группа крови %q", ErrValidation, group)
	}
	if err := s.checkFacility(ctx, facilityID); err != nil {
		return nil, err
	}

	now := s.now()
	entry, err := s.stock.Replenish(ctx, facilityID, group, qty, now.Add(model.StockShelfLife))
	if err != nil {
		return nil, fmt.Errorf("пополнение склада: %w", err)
	}

	s.logger.Info("Склад пополнен",
		slog.String("facility_id", facilityID),
		slog.String("blood_group", string(group)),
		slog.Int("quantity", qty),
		slog.Int("total", entry.Quantity),
	)

	s.appendStockAudit(ctx, facilityID,
		fmt.Sprintf("пополнение: %s +%d (итого %d)", group, qty, entry.Quantity))

	return entry, nil
}

// Withdraw списывает qty единиц с остатка по ключу.
// При нехватке единиц — ErrInsufficientStock, остаток не меняется.
func (s *InventoryService) Withdraw(ctx context.Context, facilityID string, group model.BloodGroup, qty int) (*model.BloodStockEntry, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !model.IsValidBloodGroup(group) {
		return nil, fmt.Errorf("%w: неизвестная группа крови %q", ErrValidation, group)
	}
	if err := s.checkFacility(ctx, facilityID); err != nil {
		return nil, err
	}

	entry, err := s.stock.Withdraw(ctx, facilityID, group, qty)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("списание со склада: %w", err)
	}

	stockWithdrawalsTotal.WithLabelValues(string(group)).Inc()

	s.logger.Info("Списание со склада",
		slog.String("facility_id", facilityID),
		slog.String("blood_group", string(group)),
		slog.Int("quantity", qty),
		slog.Int("remaining", entry.Quantity),
	)

	s.appendStockAudit(ctx, facilityID,
		fmt.Sprintf("списание: %s -%d (осталось %d)", group, qty, entry.Quantity))

	return entry, nil
}

// Get возвращает запись склада по ключу с признаком истечения срока.
func (s *InventoryService) Get(ctx context.Context, facilityID string, group model.BloodGroup) (*StockItem, error) {
	entry, err := s.stock.Get(ctx, facilityID, group)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи склада: %w", err)
	}
	return &StockItem{BloodStockEntry: entry, Expired: entry.Expired(s.now())}, nil
}

// ListByFacility возвращает все записи склада учреждения.
func (s *InventoryService) ListByFacility(ctx context.Context, facilityID string) ([]*StockItem, error) {
	entries, err := s.stock.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("получение склада: %w", err)
	}

	now := s.now()
	items := make([]*StockItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, &StockItem{BloodStockEntry: e, Expired: e.Expired(now)})
	}
	return items, nil
}

// appendStockAudit пишет событие склада в журнал учреждения.
// Ошибки журнала не блокируют операцию склада — только Warn.
func (s *InventoryService) appendStockAudit(ctx context.Context, facilityID, description string) {
	entry := &model.FacilityAuditEntry{
		FacilityID:  facilityID,
		EventType:   model.AuditEventStockUpdate,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.facilities.AppendAudit(ctx, entry); err != nil {
		s.logger.Warn("Не удалось записать событие склада в журнал",
			slog.String("facility_id", facilityID),
			slog.String("error", err.Error()),
		)
		return
	}
	if _, err := s.facilities.PruneAudit(ctx, facilityID, model.AuditRetentionLimit); err != nil {
		s.logger.Warn("Не удалось усечь журнал учреждения",
			slog.String("facility_id", facilityID),
			slog.String("error", err.Error()),
		)
	}
}
