package model

import "time"

// Типы учреждений.
const (
	FacilityKindHospital = "hospital"
	FacilityKindBloodLab = "blood_lab"
)

// Статусы регистрации учреждения.
// Учреждение должно быть рассмотрено администратором (approved)
// прежде чем его акторы смогут выполнять операции.
const (
	FacilityStatusPending  = "pending"
	FacilityStatusApproved = "approved"
	FacilityStatusRejected = "rejected"
)

// Facility — учреждение (госпиталь или лаборатория крови).
type Facility struct {
	// ID — UUID записи
	ID string
	// Name — название учреждения
	Name string
	// Kind — тип (hospital, blood_lab)
	Kind string
	// Status — статус регистрации (pending, approved, rejected)
	Status string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// Типы событий журнала учреждения.
const (
	AuditEventLogin         = "login"
	AuditEventDonation      = "donation"
	AuditEventProfileUpdate = "profile_update"
	AuditEventStockUpdate   = "stock_update"
)

// AuditRetentionLimit — максимальное число записей журнала на учреждение.
// Старые записи вытесняются первыми (FIFO по времени вставки).
const AuditRetentionLimit = 50

// FacilityAuditEntry — запись журнала событий учреждения.
// Журнал append-only с ограничением в AuditRetentionLimit записей.
type FacilityAuditEntry struct {
	// ID — последовательный идентификатор записи
	ID int64
	// FacilityID — UUID учреждения
	FacilityID string
	// EventType — тип события (login, donation, profile_update, stock_update)
	EventType string
	// Description — текстовое описание события
	Description string
	// ReferenceID — ссылка на связанную сущность, например UUID донора (опционально)
	ReferenceID *string
	// CreatedAt — время события
	CreatedAt time.Time
}
