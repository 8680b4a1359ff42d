package model

import "time"

// Donor — зарегистрированный донор.
// Хранится в таблице donors.
type Donor struct {
	// ID — UUID записи
	ID string
	// FullName — полное имя донора
	FullName string
	// Age — возраст в годах
	Age int
	// WeightKg — вес в килограммах
	WeightKg float64
	// BloodGroup — группа крови (может уточняться при сдаче)
	BloodGroup BloodGroup
	// LastDonationAt — время последней завершённой донации (nil — не сдавал)
	LastDonationAt *time.Time
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// Donation — запись о завершённой донации.
// Хранится в таблице donations, история append-only:
// записи никогда не изменяются и не удаляются.
type Donation struct {
	// ID — UUID записи
	ID string
	// DonorID — UUID донора
	DonorID string
	// FacilityID — UUID учреждения, зафиксировавшего донацию
	FacilityID string
	// BloodGroup — группа крови на момент сдачи
	BloodGroup BloodGroup
	// Quantity — количество единиц
	Quantity int
	// Remarks — примечания (опционально)
	Remarks *string
	// Verified — донация подтверждена учреждением
	Verified bool
	// DonatedAt — время донации
	DonatedAt time.Time
}
