package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/model"
)

// ScheduleRepository — интерфейс доступа к таблице donation_schedules.
// Уникальность активной записи донора обеспечивает частичный уникальный
// индекс: проверка в приложении не защищает от гонки check-then-act.
type ScheduleRepository interface {
	// Create создаёт новую запись на донацию.
	// При существующей активной записи донора возвращает ErrConflict.
	Create(ctx context.Context, s *model.DonationSchedule) error
	// GetByID возвращает запись по UUID.
	GetByID(ctx context.Context, id string) (*model.DonationSchedule, error)
	// GetUpcoming возвращает единственную активную будущую запись донора.
	// Если записей (дефенсивно) несколько — первую по дате и времени.
	GetUpcoming(ctx context.Context, donorID string, from time.Time) (*model.DonationSchedule, error)
	// CompleteScheduled переводит активную запись донора в completed.
	// Если активной записи нет — ErrNotFound.
	CompleteScheduled(ctx context.Context, donorID string) error
	// Cancel переводит запись донора из scheduled в cancelled.
	// Если записи нет или она уже не активна — ErrNotFound.
	Cancel(ctx context.Context, id, donorID string) error
}

// scheduleRepo — реализация ScheduleRepository.
type scheduleRepo struct {
	db DBTX
}

// NewScheduleRepository создаёт репозиторий записей на донацию.
func NewScheduleRepository(db DBTX) ScheduleRepository {
	return &scheduleRepo{db: db}
}

const scheduleColumns = `id, donor_id, center, scheduled_on, scheduled_at, status, created_at, updated_at`

func (r *scheduleRepo) Create(ctx context.Context, s *model.DonationSchedule) error {
	query := `
		INSERT INTO donation_schedules (id, donor_id, center, scheduled_on, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		s.ID, s.DonorID, s.Center, s.ScheduledOn, s.ScheduledAt, s.Status,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: у донора уже есть активная запись", ErrConflict)
		}
		return fmt.Errorf("ошибка создания записи на донацию: %w", err)
	}
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.DonationSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM donation_schedules WHERE id = $1`
	return r.scanSchedule(r.db.QueryRow(ctx, query, id))
}

func (r *scheduleRepo) GetUpcoming(ctx context.Context, donorID string, from time.Time) (*model.DonationSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM donation_schedules
		WHERE donor_id = $1 AND status = $2 AND scheduled_on >= $3
		ORDER BY scheduled_on, scheduled_at
		LIMIT 1`

	return r.scanSchedule(r.db.QueryRow(ctx, query, donorID, model.ScheduleStatusScheduled, from))
}

func (r *scheduleRepo) CompleteScheduled(ctx context.Context, donorID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE donation_schedules
		SET status = $2, updated_at = now()
		WHERE donor_id = $1 AND status = $3`,
		donorID, model.ScheduleStatusCompleted, model.ScheduleStatusScheduled,
	)
	if err != nil {
		return fmt.Errorf("ошибка завершения записи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepo) Cancel(ctx context.Context, id, donorID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE donation_schedules
		SET status = $3, updated_at = now()
		WHERE id = $1 AND donor_id = $2 AND status = $4`,
		id, donorID, model.ScheduleStatusCancelled, model.ScheduleStatusScheduled,
	)
	if err != nil {
		return fmt.Errorf("ошибка отмены записи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepo) scanSchedule(row pgx.Row) (*model.DonationSchedule, error) {
	s := &model.DonationSchedule{}
	err := row.Scan(
		&s.ID, &s.DonorID, &s.Center, &s.ScheduledOn, &s.ScheduledAt,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи на донацию: %w", err)
	}
	return s, nil
}
