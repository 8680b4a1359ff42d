package model

import "time"

// Статусы записи на донацию.
// Переходы: scheduled -> completed (при фиксации донации),
// scheduled -> cancelled (явная отмена). Других переходов нет.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCancelled = "cancelled"
)

// DonationSchedule — запись донора на будущую донацию.
// Инвариант: у донора не более одной записи в статусе scheduled —
// обеспечивается частичным уникальным индексом в БД.
type DonationSchedule struct {
	// ID — UUID записи
	ID string
	// DonorID — UUID донора
	DonorID string
	// Center — название центра сдачи
	Center string
	// ScheduledOn — дата приёма
	ScheduledOn time.Time
	// ScheduledAt — время приёма (HH:MM)
	ScheduledAt string
	// Status — статус (scheduled, completed, cancelled)
	Status string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
