package model

import "time"

// StockShelfLife — срок годности единицы крови с момента последнего пополнения.
const StockShelfLife = 42 * 24 * time.Hour

// BloodStockEntry — запись склада крови.
// Ключ — пара (facility_id, blood_group), не более одной записи на пару.
// Запись с нулевым количеством остаётся валидной и не удаляется.
type BloodStockEntry struct {
	// FacilityID — UUID учреждения
	FacilityID string
	// BloodGroup — группа крови
	BloodGroup BloodGroup
	// Quantity — количество единиц (всегда >= 0)
	Quantity int
	// ExpiryAt — срок годности: время последнего пополнения + 42 дня.
	// Срок общий на всю пару (facility, group) — партии не различаются.
	ExpiryAt time.Time
	// UpdatedAt — время последнего изменения
	UpdatedAt time.Time
}

// Expired сообщает, истёк ли срок годности запаса на момент now.
// Просроченные записи не удаляются — исключение просроченного
// остатка лежит на читающей стороне.
func (e *BloodStockEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiryAt)
}
