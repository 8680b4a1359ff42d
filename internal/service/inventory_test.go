package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

var inventoryNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// approvedFacilityRepo — мок с одобренным учреждением.
func approvedFacilityRepo() *mockFacilityRepo {
	return &mockFacilityRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Facility, error) {
			return &model.Facility{ID: id, Status: model.FacilityStatusApproved}, nil
		},
	}
}

// TestInventoryService_Replenish проверяет пополнение со сбросом срока годности.
func TestInventoryService_Replenish(t *testing.T) {
	var gotExpiry time.Time
	stock := &mockStockRepo{
		replenishFn: func(_ context.Context, _ string, _ model.BloodGroup, qty int, expiryAt time.Time) (*model.BloodStockEntry, error) {
			gotExpiry = expiryAt
			return &model.BloodStockEntry{Quantity: qty + 3, ExpiryAt: expiryAt}, nil
		},
	}

	svc := NewInventoryService(stock, approvedFacilityRepo(), fixedClock(inventoryNow), slog.Default())

	entry, err := svc.Replenish(context.Background(), "fac-1", model.BloodBPos, 5)
	if err != nil {
		t.Fatalf("Replenish() ошибка: %v", err)
	}
	if entry.Quantity != 8 {
		t.Errorf("Quantity = %d, хотели 8", entry.Quantity)
	}
	if !gotExpiry.Equal(inventoryNow.Add(model.StockShelfLife)) {
		t.Errorf("ExpiryAt = %v, хотели now + %v", gotExpiry, model.StockShelfLife)
	}
}

// TestInventoryService_InvalidQuantity — нулевое и отрицательное
// количество отклоняются до обращения к репозиторию.
func TestInventoryService_InvalidQuantity(t *testing.T) {
	stock := &mockStockRepo{
		replenishFn: func(_ context.Context, _ string, _ model.BloodGroup, _ int, _ time.Time) (*model.BloodStockEntry, error) {
			t.Error("Replenish вызван с некорректным количеством")
			return nil, nil
		},
		withdrawFn: func(_ context.Context, _ string, _ model.BloodGroup, _ int) (*model.BloodStockEntry, error) {
			t.Error("Withdraw вызван с некорректным количеством")
			return nil, nil
		},
	}

	svc := NewInventoryService(stock, approvedFacilityRepo(), fixedClock(inventoryNow), slog.Default())

	for _, qty := range []int{0, -5} {
		if _, err := svc.Replenish(context.Background(), "fac-1", model.BloodAPos, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Replenish(qty=%d) ошибка: %v, хотели ErrInvalidQuantity", qty, err)
		}
		if _, err := svc.Withdraw(context.Background(), "fac-1", model.BloodAPos, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Withdraw(qty=%d) ошибка: %v, хотели ErrInvalidQuantity", qty, err)
		}
	}
}

// TestInventoryService_Withdraw_Insufficient — нехватка единиц.
func TestInventoryService_Withdraw_Insufficient(t *testing.T) {
	stock := &mockStockRepo{
		withdrawFn: func(_ context.Context, _ string, _ model.BloodGroup, _ int) (*model.BloodStockEntry, error) {
			return nil, repository.ErrInsufficientStock
		},
	}

	svc := NewInventoryService(stock, approvedFacilityRepo(), fixedClock(inventoryNow), slog.Default())

	_, err := svc.Withdraw(context.Background(), "fac-1", model.BloodAPos, 10)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Withdraw() ошибка: %v, хотели ErrInsufficientStock", err)
	}
}

// TestInventoryService_FacilityNotApproved — операции недоступны
// до одобрения учреждения.
func TestInventoryService_FacilityNotApproved(t *testing.T) {
	facilities := &mockFacilityRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Facility, error) {
			return &model.Facility{ID: id, Status: model.FacilityStatusPending}, nil
		},
	}

	svc := NewInventoryService(&mockStockRepo{}, facilities, fixedClock(inventoryNow), slog.Default())

	if _, err := svc.Replenish(context.Background(), "fac-1", model.BloodAPos, 1); !errors.Is(err, ErrFacilityNotApproved) {
		t.Errorf("Replenish() ошибка: %v, хотели ErrFacilityNotApproved", err)
	}
	if _, err := svc.Withdraw(context.Background(), "fac-1", model.BloodAPos, 1); !errors.Is(err, ErrFacilityNotApproved) {
		t.Errorf("Withdraw() ошибка: %v, хотели ErrFacilityNotApproved", err)
	}
}

// TestInventoryService_Get — чтение одной записи по ключу.
func TestInventoryService_Get(t *testing.T) {
	stock := &mockStockRepo{
		getFn: func(_ context.Context, facilityID string, group model.BloodGroup) (*model.BloodStockEntry, error) {
			return &model.BloodStockEntry{
				FacilityID: facilityID,
				BloodGroup: group,
				Quantity:   4,
				ExpiryAt:   inventoryNow.Add(-time.Hour),
			}, nil
		},
	}

	svc := NewInventoryService(stock, approvedFacilityRepo(), fixedClock(inventoryNow), slog.Default())

	item, err := svc.Get(context.Background(), "fac-1", model.BloodONeg)
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if !item.Expired {
		t.Error("Просроченная запись не помечена")
	}

	stock.getFn = func(_ context.Context, _ string, _ model.BloodGroup) (*model.BloodStockEntry, error) {
		return nil, repository.ErrNotFound
	}
	if _, err := svc.Get(context.Background(), "fac-1", model.BloodAPos); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() по отсутствующему ключу: %v, хотели ErrNotFound", err)
	}
}

// TestInventoryService_ListByFacility_Expired — признак истечения срока
// вычисляется по часам сервиса, просроченные записи не удаляются.
func TestInventoryService_ListByFacility_Expired(t *testing.T) {
	fresh := inventoryNow.Add(24 * time.Hour)
	stale := inventoryNow.Add(-24 * time.Hour)
	stock := &mockStockRepo{
		listByFacilityFn: func(_ context.Context, _ string) ([]*model.BloodStockEntry, error) {
			return []*model.BloodStockEntry{
				{BloodGroup: model.BloodAPos, Quantity: 3, ExpiryAt: fresh},
				{BloodGroup: model.BloodBNeg, Quantity: 2, ExpiryAt: stale},
			}, nil
		},
	}

	svc := NewInventoryService(stock, approvedFacilityRepo(), fixedClock(inventoryNow), slog.Default())

	items, err := svc.ListByFacility(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("ListByFacility() ошибка: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListByFacility() вернул %d записей, хотели 2", len(items))
	}
	if items[0].Expired {
		t.Error("Свежая запись помечена как просроченная")
	}
	if !items[1].Expired {
		t.Error("Просроченная запись не помечена")
	}
}
