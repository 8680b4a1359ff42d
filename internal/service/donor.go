// donor.go — сервис управления донорами: регистрация, профиль, история донаций.
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

// DonorService — сервис управления донорами.
type DonorService struct {
	donors     repository.DonorRepository
	facilities repository.FacilityRepository
	cache      *CacheService
	now        Clock
	logger     *slog.Logger
}

// NewDonorService создаёт сервис доноров.
// Если now == nil — используется SystemClock.
func NewDonorService(
	donors repository.DonorRepository,
	facilities repository.FacilityRepository,
	cache *CacheService,
	now Clock,
	logger *slog.Logger,
) *DonorService {
	if now == nil {
		now = SystemClock
	}
	return &DonorService{
		donors:     donors,
		facilities: facilities,
		cache:      cache,
		now:        now,
		logger:     logger.With(slog.String("component", "donor_service")),
	}
}

// RegisterInput — данные регистрации донора.
type RegisterInput struct {
	FullName   string
	Age        int
	WeightKg   float64
	BloodGroup model.BloodGroup
}

// validate проверяет входные данные регистрации и обновления.
// Биометрические пороги допуска здесь не проверяются: донор с весом
// 40 кг регистрируется, но получает отказ при проверке допуска.
func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return fmt.Errorf("%w: имя донора не может быть пустым", ErrValidation)
	}
	if in.Age <= 0 {
		return fmt.Errorf("%w: возраст должен быть положительным", ErrValidation)
	}
	if in.WeightKg <= 0 {
		return fmt.Errorf("%w: вес должен быть положительным", ErrValidation)
	}
	if !model.IsValidBloodGroup(in.BloodGroup) {
		return fmt.Errorf("%w: неизвестная группа крови %q", ErrValidation, in.BloodGroup)
	}
	return nil
}

// Register регистрирует нового донора.
func (s *DonorService) Register(ctx context.Context, in RegisterInput) (*model.Donor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	donor := &model.Donor{
		ID:         uuid.New().String(),
		FullName:   in.FullName,
		Age:        in.Age,
		WeightKg:   in.WeightKg,
		BloodGroup: in.BloodGroup,
	}

	if err := s.donors.Create(ctx, donor); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("создание донора: %w", err)
	}

	s.logger.Info("Донор зарегистрирован",
		slog.String("donor_id", donor.ID),
		slog.String("blood_group", string(donor.BloodGroup)),
	)

	return donor, nil
}

// UpdateProfile обновляет профиль донора (биометрия, группа крови).
// Кэш результатов допуска инвалидируется: биометрия влияет на вердикт.
// Если facilityID непустой — событие пишется в журнал учреждения.
func (s *DonorService) UpdateProfile(ctx context.Context, donorID, facilityID string, in RegisterInput) (*model.Donor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение донора: %w", err)
	}

	donor.FullName = in.FullName
	donor.Age = in.Age
	donor.WeightKg = in.WeightKg
	donor.BloodGroup = in.BloodGroup

	if err := s.donors.Update(ctx, donor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление донора: %w", err)
	}

	s.cache.Invalidate(donorID)

	s.logger.Info("Профиль донора обновлён",
		slog.String("donor_id", donorID),
	)

	// Журнал учреждения: не блокируем операцию при ошибке записи.
	if facilityID != "" {
		entry := &model.FacilityAuditEntry{
			FacilityID:  facilityID,
			EventType:   model.AuditEventProfileUpdate,
			Description: fmt.Sprintf("обновлён профиль донора %s", donor.FullName),
			ReferenceID: &donorID,
			CreatedAt:   s.now(),
		}
		if auditErr := s.facilities.AppendAudit(ctx, entry); auditErr != nil {
			s.logger.Warn("Не удалось записать событие в журнал учреждения",
				slog.String("facility_id", facilityID),
				slog.String("error", auditErr.Error()),
			)
		} else if _, pruneErr := s.facilities.PruneAudit(ctx, facilityID, model.AuditRetentionLimit); pruneErr != nil {
			s.logger.Warn("Не удалось усечь журнал учреждения",
				slog.String("facility_id", facilityID),
				slog.String("error", pruneErr.Error()),
			)
		}
	}

	return donor, nil
}

// Get возвращает донора по ID.
func (s *DonorService) Get(ctx context.Context, donorID string) (*model.Donor, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение донора: %w", err)
	}
	return donor, nil
}

// History возвращает историю донаций донора с пагинацией
// и общее число донаций.
func (s *DonorService) History(ctx context.Context, donorID string, limit, offset int) ([]*model.Donation, int, error) {
	// Донор должен существовать: пустая история и неизвестный донор — разные ответы.
	if _, err := s.donors.GetByID(ctx, donorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("получение донора: %w", err)
	}

	list, err := s.donors.ListDonations(ctx, donorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение истории донаций: %w", err)
	}

	total, err := s.donors.CountDonations(ctx, donorID)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт донаций: %w", err)
	}

	return list, total, nil
}
