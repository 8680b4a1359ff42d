package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
)

// DonorRepository — интерфейс доступа к таблицам donors и donations.
type DonorRepository interface {
	// Create создаёт нового донора.
	Create(ctx context.Context, d *model.Donor) error
	// GetByID возвращает донора по UUID.
	GetByID(ctx context.Context, id string) (*model.Donor, error)
	// GetByIDForUpdate возвращает донора по UUID с блокировкой строки
	// (SELECT ... FOR UPDATE). Используется внутри транзакции фиксации донации.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Donor, error)
	// Update обновляет изменяемые поля донора (биометрия, группа крови,
	// время последней донации).
	Update(ctx context.Context, d *model.Donor) error
	// AppendDonation добавляет запись в историю донаций.
	// История append-only: записи никогда не изменяются и не удаляются.
	AppendDonation(ctx context.Context, don *model.Donation) error
	// ListDonations возвращает историю донаций донора в хронологическом порядке.
	ListDonations(ctx context.Context, donorID string, limit, offset int) ([]*model.Donation, error)
	// CountDonations возвращает число донаций донора.
	CountDonations(ctx context.Context, donorID string) (int, error)
}

// donorRepo — реализация DonorRepository.
type donorRepo struct {
	db DBTX
}

// NewDonorRepository создаёт репозиторий доноров.
func NewDonorRepository(db DBTX) DonorRepository {
	return &donorRepo{db: db}
}

func (r *donorRepo) Create(ctx context.Context, d *model.Donor) error {
	query := `
		INSERT INTO donors (id, full_name, age, weight_kg, blood_group, last_donation_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		d.ID, d.FullName, d.Age, d.WeightKg, d.BloodGroup, d.LastDonationAt,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: донор уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания донора: %w", err)
	}
	return nil
}

const donorColumns = `id, full_name, age, weight_kg, blood_group, last_donation_at, created_at, updated_at`

func (r *donorRepo) GetByID(ctx context.Context, id string) (*model.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`
	return r.scanDonor(r.db.QueryRow(ctx, query, id))
}

func (r *donorRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1 FOR UPDATE`
	return r.scanDonor(r.db.QueryRow(ctx, query, id))
}

func (r *donorRepo) scanDonor(row pgx.Row) (*model.Donor, error) {
	d := &model.Donor{}
	err := row.Scan(
		&d.ID, &d.FullName, &d.Age, &d.WeightKg, &d.BloodGroup,
		&d.LastDonationAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения донора: %w", err)
	}
	return d, nil
}

func (r *donorRepo) Update(ctx context.Context, d *model.Donor) error {
	query := `
		UPDATE donors
		SET full_name = $2, age = $3, weight_kg = $4, blood_group = $5,
			last_donation_at = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		d.ID, d.FullName, d.Age, d.WeightKg, d.BloodGroup, d.LastDonationAt,
	).Scan(&d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления донора: %w", err)
	}
	return nil
}

func (r *donorRepo) AppendDonation(ctx context.Context, don *model.Donation) error {
	query := `
		INSERT INTO donations (id, donor_id, facility_id, blood_group, quantity,
			remarks, verified, donated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		don.ID, don.DonorID, don.FacilityID, don.BloodGroup, don.Quantity,
		don.Remarks, don.Verified, don.DonatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка добавления донации: %w", err)
	}
	return nil
}

func (r *donorRepo) ListDonations(ctx context.Context, donorID string, limit, offset int) ([]*model.Donation, error) {
	query := `
		SELECT id, donor_id, facility_id, blood_group, quantity, remarks, verified, donated_at
		FROM donations
		WHERE donor_id = $1
		ORDER BY donated_at
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, donorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории донаций: %w", err)
	}
	defer rows.Close()

	var result []*model.Donation
	for rows.Next() {
		don := &model.Donation{}
		if err := rows.Scan(
			&don.ID, &don.DonorID, &don.FacilityID, &don.BloodGroup,
			&don.Quantity, &don.Remarks, &don.Verified, &don.DonatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования донации: %w", err)
		}
		result = append(result, don)
	}
	return result, rows.Err()
}

func (r *donorRepo) CountDonations(ctx context.Context, donorID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE donor_id = $1`, donorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта донаций: %w", err)
	}
	return count, nil
}
