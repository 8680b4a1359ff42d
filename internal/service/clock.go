// clock.go — источник времени сервисного слоя.
package service

import "time"

// Clock — функция получения текущего времени.
// Все проверки годности и сроков используют внедрённые часы,
// чтобы тесты могли зафиксировать "сейчас".
type Clock func() time.Time

// SystemClock возвращает текущее время UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}
