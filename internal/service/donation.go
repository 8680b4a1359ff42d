// donation.go — сервис фиксации донаций (Donation Recorder).
// Одна донация затрагивает донора, историю, журнал учреждения,
// склад и запись на донацию — всё в одной транзакции.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
	"github.com/bigkaa/hemobank/donation-module/internal/repository"
)

// donationsRecordedTotal — счётчик зафиксированных донаций по группам крови.
var donationsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dm_donations_recorded_total",
	Help: "Общее количество зафиксированных донаций.",
}, []string{"blood_group"})

// TxStores выполняет функцию в транзакции поверх набора репозиториев.
// Реализуется repository.TxRunner; в unit-тестах подменяется моком.
type TxStores interface {
	InTx(ctx context.Context, fn func(s *repository.Stores) error) error
}

// DonationService — сервис фиксации донаций.
type DonationService struct {
	tx     TxStores
	cache  *CacheService
	now    Clock
	logger *slog.Logger
}

// NewDonationService создаёт сервис фиксации донаций.
// Если now == nil — используется SystemClock.
func NewDonationService(
	tx TxStores,
	cache *CacheService,
	now Clock,
	logger *slog.Logger,
) *DonationService {
	if now == nil {
		now = SystemClock
	}
	return &DonationService{
		tx:     tx,
		cache:  cache,
		now:    now,
		logger: logger.With(slog.String("component", "donation_service")),
	}
}

// RecordInput — данные фиксации донации.
type RecordInput struct {
	DonorID    string
	FacilityID string
	Quantity   int
	// BloodGroup — фактическая группа по результату анализа.
	// Пустая — берётся группа из профиля донора.
	BloodGroup model.BloodGroup
	Remarks    *string
}

// Record фиксирует донацию атомарно: проверка учреждения и донора,
// строгий кулдаун, запись в историю, обновление донора, журнал
// учреждения, пополнение склада и завершение записи на донацию.
// Любая ошибка — полный откат, ни одно изменение не видно.
func (s *DonationService) Record(ctx context.Context, in RecordInput) (*model.Donation, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.BloodGroup != "" && !model.IsValidBloodGroup(in.BloodGroup) {
		return nil, fmt.Errorf("%w: неизвестная группа крови %q", ErrValidation, in.BloodGroup)
	}

	now := s.now()
	var donation *model.Donation

	err := s.tx.InTx(ctx, func(st *repository.Stores) error {
		// Учреждение должно существовать и быть одобренным.
		facility, err := st.Facilities.GetByID(ctx, in.FacilityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("получение учреждения: %w", err)
		}
		if facility.Status != model.FacilityStatusApproved {
			return ErrFacilityNotApproved
		}

		// Донор блокируется на время транзакции: конкурентные фиксации
		// по одному донору сериализуются, кулдаун не обходится гонкой.
		donor, err := st.Donors.GetByIDForUpdate(ctx, in.DonorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("получение донора: %w", err)
		}

		// Строгий кулдаун фиксации: 3 календарных месяца.
		// Намеренно отличается от 90-дневного правила проверки допуска.
		if donor.LastDonationAt != nil && donor.LastDonationAt.After(now.AddDate(0, -3, 0)) {
			return ErrCooldownActive
		}

		// Группа по анализу перекрывает профиль и сохраняется в нём.
		group := donor.BloodGroup
		if in.BloodGroup != "" {
			group = in.BloodGroup
			donor.BloodGroup = in.BloodGroup
		}

		donation = &model.Donation{
			ID:         uuid.New().String(),
			DonorID:    in.DonorID,
			FacilityID: in.FacilityID,
			BloodGroup: group,
			Quantity:   in.Quantity,
			Remarks:    in.Remarks,
			Verified:   true,
			DonatedAt:  now,
		}
		if err := st.Donors.AppendDonation(ctx, donation); err != nil {
			return fmt.Errorf("запись донации: %w", err)
		}

		donor.LastDonationAt = &now
		if err := st.Donors.Update(ctx, donor); err != nil {
			return fmt.Errorf("обновление донора: %w", err)
		}

		// Журнал учреждения с усечением до лимита.
		entry := &model.FacilityAuditEntry{
			FacilityID: in.FacilityID,
			EventType:  model.AuditEventDonation,
			Description: fmt.Sprintf("донация: донор %s, %d ед., группа %s",
				donor.FullName, in.Quantity, group),
			ReferenceID: &in.DonorID,
			CreatedAt:   now,
		}
		if err := st.Facilities.AppendAudit(ctx, entry); err != nil {
			return fmt.Errorf("запись в журнал учреждения: %w", err)
		}
		if _, err := st.Facilities.PruneAudit(ctx, in.FacilityID, model.AuditRetentionLimit); err != nil {
			return fmt.Errorf("усечение журнала учреждения: %w", err)
		}

		// Кровь поступает на склад учреждения.
		if _, err := st.Stock.Replenish(ctx, in.FacilityID, group, in.Quantity, now.Add(model.StockShelfLife)); err != nil {
			return fmt.Errorf("пополнение склада: %w", err)
		}

		// Активная запись донора на донацию считается исполненной.
		if err := st.Schedules.CompleteScheduled(ctx, in.DonorID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("завершение записи на донацию: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	donationsRecordedTotal.WithLabelValues(string(donation.BloodGroup)).Inc()

	// Кэш допуска протух: last_donation_at изменился.
	s.cache.Invalidate(in.DonorID)

	s.logger.Info("Донация зафиксирована",
		slog.String("donation_id", donation.ID),
		slog.String("donor_id", in.DonorID),
		slog.String("facility_id", in.FacilityID),
		slog.Int("quantity", in.Quantity),
		slog.String("blood_group", string(donation.BloodGroup)),
	)

	return donation, nil
}
