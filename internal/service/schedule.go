// schedule.go — сервис записи доноров на донацию (Schedule Guard).
// Инвариант "не более одной активной записи" обеспечивается
// частичным уникальным индексом; предварительная проверка в сервисе
// даёт понятную ошибку без обращения к индексу в обычном случае.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

// ScheduleService — сервис записей на донацию.
type ScheduleService struct {
	schedules repository.ScheduleRepository
	donors    repository.DonorRepository
	now       Clock
	logger    *slog.Logger
}

// NewScheduleService создаёт сервис записей на донацию.
// Если now == nil — используется SystemClock.
func NewScheduleService(
	schedules repository.ScheduleRepository,
	donors repository.DonorRepository,
	now Clock,
	logger *slog.Logger,
) *ScheduleService {
	if now == nil {
		now = SystemClock
	}
	return &ScheduleService{
		schedules: schedules,
		donors:    donors,
		now:       now,
		logger:    logger.With(slog.String("component", "schedule_service")),
	}
}

// BookInput — данные создания записи на донацию.
type BookInput struct {
	DonorID string
	Center  string
	// Date — дата приёма
	Date time.Time
	// TimeSlot — время приёма в формате HH:MM
	TimeSlot string
}

// Book создаёт запись донора на донацию.
// Если у донора уже есть активная запись — ErrAlreadyScheduled.
func (s *ScheduleService) Book(ctx context.Context, in BookInput) (*model.DonationSchedule, error) {
	if strings.TrimSpace(in.Center) == "" {
		return nil, fmt.Errorf("%w: центр сдачи не может быть пустым", ErrValidation)
	}
	if _, err := time.Parse("15:04", in.TimeSlot); err != nil {
		return nil, fmt.Errorf("%w: время приёма %q не в формате HH:MM", ErrValidation, in.TimeSlot)
	}

	if _, err := s.donors.GetByID(ctx, in.DonorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение донора: %w", err)
	}

	// Предварительная проверка: быстрый отказ до попытки вставки.
	// Гонку двух одновременных Book разрешает уникальный индекс.
	if _, err := s.schedules.GetUpcoming(ctx, in.DonorID, s.now().Truncate(24*time.Hour)); err == nil {
		return nil, ErrAlreadyScheduled
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("проверка активной записи: %w", err)
	}

	schedule := &model.DonationSchedule{
		ID:          uuid.New().String(),
		DonorID:     in.DonorID,
		Center:      in.Center,
		ScheduledOn: in.Date,
		ScheduledAt: in.TimeSlot,
		Status:      model.ScheduleStatusScheduled,
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyScheduled
		}
		return nil, fmt.Errorf("создание записи на донацию: %w", err)
	}

	s.logger.Info("Создана запись на донацию",
		slog.String("schedule_id", schedule.ID),
		slog.String("donor_id", in.DonorID),
		slog.String("center", in.Center),
	)

	return schedule, nil
}

// Upcoming возвращает активную будущую запись донора.
// Если записи нет — ErrNotFound.
func (s *ScheduleService) Upcoming(ctx context.Context, donorID string) (*model.DonationSchedule, error) {
	schedule, err := s.schedules.GetUpcoming(ctx, donorID, s.now().Truncate(24*time.Hour))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи на донацию: %w", err)
	}
	return schedule, nil
}

// Cancel отменяет активную запись донора.
// Отменить можно только запись в статусе scheduled.
func (s *ScheduleService) Cancel(ctx context.Context, scheduleID, donorID string) error {
	if err := s.schedules.Cancel(ctx, scheduleID, donorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("отмена записи на донацию: %w", err)
	}

	s.logger.Info("Запись на донацию отменена",
		slog.String("schedule_id", scheduleID),
		slog.String("donor_id", donorID),
	)

	return nil
}
