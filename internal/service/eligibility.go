// eligibility.go — сервис проверки допуска донора к донации.
// Кэширует результаты в LRU с TTL; вычисление делегирует
// чистому пакету domain/eligibility.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/eligibility"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

// EligibilityService — сервис проверки допуска доноров.
type EligibilityService struct {
	donors repository.DonorRepository
	cache  *CacheService
	now    Clock
	logger *slog.Logger
}

// NewEligibilityService создаёт сервис проверки допуска.
// Если now == nil — используется SystemClock.
func NewEligibilityService(
	donors repository.DonorRepository,
	cache *CacheService,
	now Clock,
	logger *slog.Logger,
) *EligibilityService {
	if now == nil {
		now = SystemClock
	}
	return &EligibilityService{
		donors: donors,
		cache:  cache,
		now:    now,
		logger: logger.With(slog.String("component", "eligibility_service")),
	}
}

// Check возвращает результат проверки допуска донора.
// Результат кэшируется по donorID; запись инвалидируется
// при фиксации донации и обновлении профиля.
func (s *EligibilityService) Check(ctx context.Context, donorID string) (*eligibility.Result, error) {
	if res, ok := s.cache.Get(donorID); ok {
		return res, nil
	}

	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение донора: %w", err)
	}

	result := eligibility.Compute(donor.LastDonationAt, donor.Age, donor.WeightKg, s.now())
	s.cache.Set(donorID, &result)

	s.logger.Debug("Проверка допуска выполнена",
		slog.String("donor_id", donorID),
		slog.Bool("eligible", result.Eligible),
	)

	return &result, nil
}
