package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
)

// FacilityRepository — интерфейс доступа к таблицам facilities и facility_audit.
type FacilityRepository interface {
	// Create регистрирует новое учреждение (статус pending).
	Create(ctx context.Context, f *model.Facility) error
	// GetByID возвращает учреждение по UUID.
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	// SetStatus изменяет статус регистрации учреждения.
	SetStatus(ctx context.Context, id, status string) error
	// AppendAudit добавляет запись в журнал учреждения.
	AppendAudit(ctx context.Context, e *model.FacilityAuditEntry) error
	// PruneAudit усекает журнал учреждения до keep самых свежих записей,
	// вытесняя старые первыми (FIFO по порядку вставки).
	PruneAudit(ctx context.Context, facilityID string, keep int) (int64, error)
	// ListAudit возвращает записи журнала от новых к старым.
	ListAudit(ctx context.Context, facilityID string, limit int) ([]*model.FacilityAuditEntry, error)
	// CountAudit возвращает число записей журнала учреждения.
	CountAudit(ctx context.Context, facilityID string) (int, error)
}

// facilityRepo — реализация FacilityRepository.
type facilityRepo struct {
	db DBTX
}

// NewFacilityRepository создаёт репозиторий учреждений.
func NewFacilityRepository(db DBTX) FacilityRepository {
	return &facilityRepo{db: db}
}

func (r *facilityRepo) Create(ctx context.Context, f *model.Facility) error {
	query := `
		INSERT INTO facilities (id, name, kind, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, f.ID, f.Name, f.Kind, f.Status).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: учреждение уже зарегистрировано", ErrConflict)
		}
		return fmt.Errorf("ошибка создания учреждения: %w", err)
	}
	return nil
}

func (r *facilityRepo) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	query := `
		SELECT id, name, kind, status, created_at, updated_at
		FROM facilities
		WHERE id = $1`

	f := &model.Facility{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.Kind, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения учреждения: %w", err)
	}
	return f, nil
}

func (r *facilityRepo) SetStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE facilities SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("ошибка изменения статуса учреждения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *facilityRepo) AppendAudit(ctx context.Context, e *model.FacilityAuditEntry) error {
	query := `
		INSERT INTO facility_audit (facility_id, event_type, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		e.FacilityID, e.EventType, e.Description, e.ReferenceID, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("ошибка добавления записи журнала: %w", err)
	}
	return nil
}

func (r *facilityRepo) PruneAudit(ctx context.Context, facilityID string, keep int) (int64, error) {
	// Удаляем всё, что не входит в keep самых свежих по порядку вставки.
	query := `
		DELETE FROM facility_audit
		WHERE facility_id = $1
		  AND id NOT IN (
			SELECT id FROM facility_audit
			WHERE facility_id = $1
			ORDER BY id DESC
			LIMIT $2
		  )`

	tag, err := r.db.Exec(ctx, query, facilityID, keep)
	if err != nil {
		return 0, fmt.Errorf("ошибка усечения журнала: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *facilityRepo) ListAudit(ctx context.Context, facilityID string, limit int) ([]*model.FacilityAuditEntry, error) {
	query := `
		SELECT id, facility_id, event_type, description, reference_id, created_at
		FROM facility_audit
		WHERE facility_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, facilityID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала: %w", err)
	}
	defer rows.Close()

	var result []*model.FacilityAuditEntry
	for rows.Next() {
		e := &model.FacilityAuditEntry{}
		if err := rows.Scan(&e.ID, &e.FacilityID, &e.EventType, &e.Description, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *facilityRepo) CountAudit(ctx context.Context, facilityID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM facility_audit WHERE facility_id = $1`, facilityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта записей журнала: %w", err)
	}
	return count, nil
}
