// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrCooldownActive — донор в периоде восстановления после донации.
	ErrCooldownActive = errors.New("период восстановления донора не завершён")
	// ErrInvalidQuantity — количество единиц не положительное.
	ErrInvalidQuantity = errors.New("количество единиц должно быть положительным")
	// ErrInsufficientStock — на складе недостаточно единиц для списания.
	ErrInsufficientStock = errors.New("недостаточно единиц на складе")
	// ErrAlreadyScheduled — у донора уже есть активная запись на донацию.
	ErrAlreadyScheduled = errors.New("у донора уже есть активная запись на донацию")
	// ErrFacilityNotApproved — учреждение не одобрено администратором.
	ErrFacilityNotApproved = errors.New("учреждение не одобрено")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)
