// facility.go — сервис управления учреждениями и их журналом событий.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

// FacilityService — сервис учреждений.
type FacilityService struct {
	facilities repository.FacilityRepository
	now        Clock
	logger     *slog.Logger
}

// NewFacilityService создаёт сервис учреждений.
// Если now == nil — используется SystemClock.
func NewFacilityService(
	facilities repository.FacilityRepository,
	now Clock,
	logger *slog.Logger,
) *FacilityService {
	if now == nil {
		now = SystemClock
	}
	return &FacilityService{
		facilities: facilities,
		now:        now,
		logger:     logger.With(slog.String("component", "facility_service")),
	}
}

// Register регистрирует новое учреждение в статусе pending.
// До одобрения администратором операции учреждения недоступны.
func (s *FacilityService) Register(ctx context.Context, name, kind string) (*model.Facility, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: название учреждения не может быть пустым", ErrValidation)
	}
	if kind != model.FacilityKindHospital && kind != model.FacilityKindBloodLab {
		return nil, fmt.Errorf("%w: неизвестный тип учреждения %q", ErrValidation, kind)
	}

	facility := &model.Facility{
		ID:     uuid.New().String(),
		Name:   name,
		Kind:   kind,
		Status: model.FacilityStatusPending,
	}

	if err := s.facilities.Create(ctx, facility); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("создание учреждения: %w", err)
	}

	s.logger.Info("Учреждение зарегистрировано",
		slog.String("facility_id", facility.ID),
		slog.String("name", name),
		slog.String("kind", kind),
	)

	return facility, nil
}

// SetStatus изменяет статус регистрации учреждения (решение администратора).
func (s *FacilityService) SetStatus(ctx context.Context, facilityID, status string) error {
	switch status {
	case model.FacilityStatusPending, model.FacilityStatusApproved, model.FacilityStatusRejected:
	default:
		return fmt.Errorf("%w: неизвестный статус %q", ErrValidation, status)
	}

	if err := s.facilities.SetStatus(ctx, facilityID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("изменение статуса учреждения: %w", err)
	}

	s.logger.Info("Статус учреждения изменён",
		slog.String("facility_id", facilityID),
		slog.String("status", status),
	)

	return nil
}

// RecordLogin пишет событие входа актора учреждения в журнал.
func (s *FacilityService) RecordLogin(ctx context.Context, facilityID, actor string) error {
	if _, err := s.facilities.GetByID(ctx, facilityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: учреждение %s", ErrNotFound, facilityID)
		}
		return fmt.Errorf("поиск учреждения: %w", err)
	}

	entry := &model.FacilityAuditEntry{
		FacilityID:  facilityID,
		EventType:   model.AuditEventLogin,
		Description: fmt.Sprintf("вход в систему: %s", actor),
		CreatedAt:   s.now(),
	}
	if err := s.facilities.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("запись события входа: %w", err)
	}
	if _, err := s.facilities.PruneAudit(ctx, facilityID, model.AuditRetentionLimit); err != nil {
		return fmt.Errorf("усечение журнала: %w", err)
	}
	return nil
}

// Audit возвращает журнал событий учреждения от новых к старым.
func (s *FacilityService) Audit(ctx context.Context, facilityID string, limit int) ([]*model.FacilityAuditEntry, error) {
	if _, err := s.facilities.GetByID(ctx, facilityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение учреждения: %w", err)
	}

	if limit <= 0 || limit > model.AuditRetentionLimit {
		limit = model.AuditRetentionLimit
	}

	list, err := s.facilities.ListAudit(ctx, facilityID, limit)
	if err != nil {
		return nil, fmt.Errorf("получение журнала: %w", err)
	}
	return list, nil
}
