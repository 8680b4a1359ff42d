package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
)

// BloodStockRepository — интерфейс доступа к таблице blood_stock.
// Пополнение и списание выполняются одним атомарным SQL-запросом,
// чтобы конкурентные вызовы на одном ключе не теряли обновления.
type BloodStockRepository interface {
	// Replenish увеличивает остаток по ключу (facility, group) на qty
	// и сдвигает срок годности на expiryAt. Создаёт запись при первом
	// пополнении ключа; повторное пополнение никогда не создаёт вторую запись.
	Replenish(ctx context.Context, facilityID string, group model.BloodGroup, qty int, expiryAt time.Time) (*model.BloodStockEntry, error)
	// Withdraw уменьшает остаток на qty, если единиц достаточно.
	// При нехватке возвращает ErrInsufficientStock, остаток не меняется.
	// При отсутствии записи — ErrNotFound.
	Withdraw(ctx context.Context, facilityID string, group model.BloodGroup, qty int) (*model.BloodStockEntry, error)
	// Get возвращает запись склада по ключу.
	Get(ctx context.Context, facilityID string, group model.BloodGroup) (*model.BloodStockEntry, error)
	// ListByFacility возвращает все записи склада учреждения.
	ListByFacility(ctx context.Context, facilityID string) ([]*model.BloodStockEntry, error)
}

// bloodStockRepo — реализация BloodStockRepository.
type bloodStockRepo struct {
	db DBTX
}

// NewBloodStockRepository создаёт репозиторий склада крови.
func NewBloodStockRepository(db DBTX) BloodStockRepository {
	return &bloodStockRepo{db: db}
}

func (r *bloodStockRepo) Replenish(ctx context.Context, facilityID string, group model.BloodGroup, qty int, expiryAt time.Time) (*model.BloodStockEntry, error) {
	// Upsert с инкрементом — атомарный, без read-modify-write в приложении.
	// Срок годности всегда сбрасывается к последнему пополнению:
	// партии по ключу не различаются.
	query := `
		INSERT INTO blood_stock (facility_id, blood_group, quantity, expiry_at, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (facility_id, blood_group) DO UPDATE
		SET quantity = blood_stock.quantity + EXCLUDED.quantity,
			expiry_at = EXCLUDED.expiry_at,
			updated_at = now()
		RETURNING facility_id, blood_group, quantity, expiry_at, updated_at`

	return r.scanEntry(r.db.QueryRow(ctx, query, facilityID, group, qty, expiryAt))
}

func (r *bloodStockRepo) Withdraw(ctx context.Context, facilityID string, group model.BloodGroup, qty int) (*model.BloodStockEntry, error) {
	// Условный декремент: срабатывает только при достаточном остатке.
	query := `
		UPDATE blood_stock
		SET quantity = quantity - $3, updated_at = now()
		WHERE facility_id = $1 AND blood_group = $2 AND quantity >= $3
		RETURNING facility_id, blood_group, quantity, expiry_at, updated_at`

	entry, err := r.scanEntry(r.db.QueryRow(ctx, query, facilityID, group, qty))
	if err == ErrNotFound {
		// Запрос не сработал: различаем отсутствие записи и нехватку единиц.
		if _, getErr := r.Get(ctx, facilityID, group); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientStock
	}
	return entry, err
}

func (r *bloodStockRepo) Get(ctx context.Context, facilityID string, group model.BloodGroup) (*model.BloodStockEntry, error) {
	query := `
		SELECT facility_id, blood_group, quantity, expiry_at, updated_at
		FROM blood_stock
		WHERE facility_id = $1 AND blood_group = $2`

	return r.scanEntry(r.db.QueryRow(ctx, query, facilityID, group))
}

func (r *bloodStockRepo) ListByFacility(ctx context.Context, facilityID string) ([]*model.BloodStockEntry, error) {
	query := `
		SELECT facility_id, blood_group, quantity, expiry_at, updated_at
		FROM blood_stock
		WHERE facility_id = $1
		ORDER BY blood_group`

	rows, err := r.db.Query(ctx, query, facilityID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения склада: %w", err)
	}
	defer rows.Close()

	var result []*model.BloodStockEntry
	for rows.Next() {
		e := &model.BloodStockEntry{}
		if err := rows.Scan(&e.FacilityID, &e.BloodGroup, &e.Quantity, &e.ExpiryAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи склада: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *bloodStockRepo) scanEntry(row pgx.Row) (*model.BloodStockEntry, error) {
	e := &model.BloodStockEntry{}
	err := row.Scan(&e.FacilityID, &e.BloodGroup, &e.Quantity, &e.ExpiryAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи склада: %w", err)
	}
	return e, nil
}
