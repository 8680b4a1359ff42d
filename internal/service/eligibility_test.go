package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
)

var eligibilityNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// TestEligibilityService_Check — вычисление допуска по профилю донора.
func TestEligibilityService_Check(t *testing.T) {
	last := eligibilityNow.Add(-100 * 24 * time.Hour) // кулдаун 90 дней пройден
	donors := &mockDonorRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Donor, error) {
			return &model.Donor{
				ID: id, FullName: "Иванов Иван", Age: 30,
				WeightKg: 75, BloodGroup: model.BloodAPos, LastDonationAt: &last,
			}, nil
		},
	}

	cache := NewCacheService(10, time.Minute)
	svc := NewEligibilityService(donors, cache, fixedClock(eligibilityNow), slog.Default())

	res, err := svc.Check(context.Background(), "donor-1")
	if err != nil {
		t.Fatalf("Check() ошибка: %v", err)
	}
	if !res.Eligible {
		t.Errorf("Eligible = false, причина %q; хотели допуск", res.Reason)
	}
	if res.NextEligibleAt == nil {
		t.Error("NextEligibleAt = nil у донора с историей")
	}
}

// TestEligibilityService_Check_CacheHit — повторная проверка
// не обращается к репозиторию.
func TestEligibilityService_Check_CacheHit(t *testing.T) {
	callCount := 0
	donors := &mockDonorRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Donor, error) {
			callCount++
			return &model.Donor{ID: id, FullName: "Иванов Иван", Age: 30, WeightKg: 75, BloodGroup: model.BloodAPos}, nil
		},
	}

	cache := NewCacheService(10, time.Minute)
	svc := NewEligibilityService(donors, cache, fixedClock(eligibilityNow), slog.Default())

	if _, err := svc.Check(context.Background(), "donor-1"); err != nil {
		t.Fatalf("Первый Check() ошибка: %v", err)
	}
	if _, err := svc.Check(context.Background(), "donor-1"); err != nil {
		t.Fatalf("Второй Check() ошибка: %v", err)
	}
	if callCount != 1 {
		t.Errorf("Репозиторий вызван %d раз, хотели 1 (второй запрос из кэша)", callCount)
	}
}

// TestEligibilityService_Check_NotFound — неизвестный донор.
func TestEligibilityService_Check_NotFound(t *testing.T) {
	cache := NewCacheService(10, time.Minute)
	svc := NewEligibilityService(&mockDonorRepo{}, cache, fixedClock(eligibilityNow), slog.Default())

	_, err := svc.Check(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Check() ошибка: %v, хотели ErrNotFound", err)
	}
}

// TestEligibilityService_Check_AfterInvalidate — после инвалидации
// результат пересчитывается из свежего профиля.
func TestEligibilityService_Check_AfterInvalidate(t *testing.T) {
	weight := 75.0
	donors := &mockDonorRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Donor, error) {
			return &model.Donor{ID: id, FullName: "Иванов Иван", Age: 30, WeightKg: weight, BloodGroup: model.BloodAPos}, nil
		},
	}

	cache := NewCacheService(10, time.Minute)
	svc := NewEligibilityService(donors, cache, fixedClock(eligibilityNow), slog.Default())

	res, err := svc.Check(context.Background(), "donor-1")
	if err != nil {
		t.Fatalf("Check() ошибка: %v", err)
	}
	if !res.Eligible {
		t.Fatalf("Eligible = false, хотели допуск")
	}

	// Вес упал ниже порога, кэш инвалидирован — вердикт меняется.
	weight = 40.0
	cache.Invalidate("donor-1")

	res2, err := svc.Check(context.Background(), "donor-1")
	if err != nil {
		t.Fatalf("Check() после инвалидации ошибка: %v", err)
	}
	if res2.Eligible {
		t.Error("Eligible = true после падения веса ниже порога")
	}
}
