package service

import (
	"context"
	"time"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

// --- Mock repositories ---

// mockDonorRepo — мок DonorRepository для unit-тестов.
type mockDonorRepo struct {
	createFn           func(ctx context.Context, d *model.Donor) error
	getByIDFn          func(ctx context.Context, id string) (*model.Donor, error)
	getByIDForUpdateFn func(ctx context.Context, id string) (*model.Donor, error)
	updateFn           func(ctx context.Context, d *model.Donor) error
	appendDonationFn   func(ctx context.Context, don *model.Donation) error
	listDonationsFn    func(ctx context.Context, donorID string, limit, offset int) ([]*model.Donation, error)
	countDonationsFn   func(ctx context.Context, donorID string) (int, error)
}

func (m *mockDonorRepo) Create(ctx context.Context, d *model.Donor) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	return nil
}

func (m *mockDonorRepo) GetByID(ctx context.Context, id string) (*model.Donor, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockDonorRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Donor, error) {
	if m.getByIDForUpdateFn != nil {
		return m.getByIDForUpdateFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockDonorRepo) Update(ctx context.Context, d *model.Donor) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, d)
	}
	return nil
}

func (m *mockDonorRepo) AppendDonation(ctx context.Context, don *model.Donation) error {
	if m.appendDonationFn != nil {
		return m.appendDonationFn(ctx, don)
	}
	return nil
}

func (m *mockDonorRepo) ListDonations(ctx context.Context, donorID string, limit, offset int) ([]*model.Donation, error) {
	if m.listDonationsFn != nil {
		return m.listDonationsFn(ctx, donorID, limit, offset)
	}
	return nil, nil
}

func (m *mockDonorRepo) CountDonations(ctx context.Context, donorID string) (int, error) {
	if m.countDonationsFn != nil {
		return m.countDonationsFn(ctx, donorID)
	}
	return 0, nil
}

// mockFacilityRepo — мок FacilityRepository для unit-тестов.
type mockFacilityRepo struct {
	createFn      func(ctx context.Context, f *model.Facility) error
	getByIDFn     func(ctx context.Context, id string) (*model.Facility, error)
	setStatusFn   func(ctx context.Context, id, status string) error
	appendAuditFn func(ctx context.Context, e *model.FacilityAuditEntry) error
	pruneAuditFn  func(ctx context.Context, facilityID string, keep int) (int64, error)
	listAuditFn   func(ctx context.Context, facilityID string, limit int) ([]*model.FacilityAuditEntry, error)
	countAuditFn  func(ctx context.Context, facilityID string) (int, error)
}

func (m *mockFacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return nil
}

func (m *mockFacilityRepo) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFacilityRepo) SetStatus(ctx context.Context, id, status string) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockFacilityRepo) AppendAudit(ctx context.Context, e *model.FacilityAuditEntry) error {
	if m.appendAuditFn != nil {
		return m.appendAuditFn(ctx, e)
	}
	return nil
}

func (m *mockFacilityRepo) PruneAudit(ctx context.Context, facilityID string, keep int) (int64, error) {
	if m.pruneAuditFn != nil {
		return m.pruneAuditFn(ctx, facilityID, keep)
	}
	return 0, nil
}

func (m *mockFacilityRepo) ListAudit(ctx context.Context, facilityID string, limit int) ([]*model.FacilityAuditEntry, error) {
	if m.listAuditFn != nil {
		return m.listAuditFn(ctx, facilityID, limit)
	}
	return nil, nil
}

func (m *mockFacilityRepo) CountAudit(ctx context.Context, facilityID string) (int, error) {
	if m.countAuditFn != nil {
		return m.countAuditFn(ctx, facilityID)
	}
	return 0, nil
}

// mockStockRepo — мок BloodStockRepository для unit-тестов.
type mockStockRepo struct {
	replenishFn      func(ctx context.Context, facilityID string, group model.BloodGroup, qty int, expiryAt time.Time) (*model.BloodStockEntry, error)
	withdrawFn       func(ctx context.Context, facilityID string, group model.BloodGroup, qty int) (*model.BloodStockEntry, error)
	getFn            func(ctx context.Context, facilityID string, group model.BloodGroup) (*model.BloodStockEntry, error)
	listByFacilityFn func(ctx context.Context, facilityID string) ([]*model.BloodStockEntry, error)
}

func (m *mockStockRepo) Replenish(ctx context.Context, facilityID string, group model.BloodGroup, qty int, expiryAt time.Time) (*model.BloodStockEntry, error) {
	if m.replenishFn != nil {
		return m.replenishFn(ctx, facilityID, group, qty, expiryAt)
	}
	return &model.BloodStockEntry{FacilityID: facilityID, BloodGroup: group, Quantity: qty, ExpiryAt: expiryAt}, nil
}

func (m *mockStockRepo) Withdraw(ctx context.Context, facilityID string, group model.BloodGroup, qty int) (*model.BloodStockEntry, error) {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, facilityID, group, qty)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStockRepo) Get(ctx context.Context, facilityID string, group model.BloodGroup) (*model.BloodStockEntry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, facilityID, group)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStockRepo) ListByFacility(ctx context.Context, facilityID string) ([]*model.BloodStockEntry, error) {
	if m.listByFacilityFn != nil {
		return m.listByFacilityFn(ctx, facilityID)
	}
	return nil, nil
}

// mockScheduleRepo — мок ScheduleRepository для unit-тестов.
type mockScheduleRepo struct {
	createFn            func(ctx context.Context, s *model.DonationSchedule) error
	getByIDFn           func(ctx context.Context, id string) (*model.DonationSchedule, error)
	getUpcomingFn       func(ctx context.Context, donorID string, from time.Time) (*model.DonationSchedule, error)
	completeScheduledFn func(ctx context.Context, donorID string) error
	cancelFn            func(ctx context.Context, id, donorID string) error
}

func (m *mockScheduleRepo) Create(ctx context.Context, s *model.DonationSchedule) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockScheduleRepo) GetByID(ctx context.Context, id string) (*model.DonationSchedule, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockScheduleRepo) GetUpcoming(ctx context.Context, donorID string, from time.Time) (*model.DonationSchedule, error) {
	if m.getUpcomingFn != nil {
		return m.getUpcomingFn(ctx, donorID, from)
	}
	return nil, repository.ErrNotFound
}

func (m *mockScheduleRepo) CompleteScheduled(ctx context.Context, donorID string) error {
	if m.completeScheduledFn != nil {
		return m.completeScheduledFn(ctx, donorID)
	}
	return repository.ErrNotFound
}

func (m *mockScheduleRepo) Cancel(ctx context.Context, id, donorID string) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, id, donorID)
	}
	return repository.ErrNotFound
}

// mockTx — мок TxStores: выполняет fn поверх переданных моков без транзакции.
type mockTx struct {
	stores *repository.Stores
}

func (m *mockTx) InTx(_ context.Context, fn func(s *repository.Stores) error) error {
	return fn(m.stores)
}

// fixedClock возвращает Clock, всегда отдающий t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
