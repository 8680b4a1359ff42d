// Пакет eligibility — чистая логика определения допуска донора к донации.
// Правила проверяются в фиксированном порядке: кулдаун, возраст, вес.
// Каждая следующая проверка перезаписывает вердикт предыдущей —
// порядок является частью контракта и закреплён тестами.
package eligibility

import (
	"fmt"
	"time"
)

// Пороговые значения правил допуска.
const (
	// CooldownDays — минимальный интервал между донациями в днях.
	CooldownDays = 90
	// MinAge — минимальный возраст донора (включительно).
	MinAge = 18
	// MaxAge — максимальный возраст донора (включительно).
	MaxAge = 65
	// MinWeightKg — минимальный вес донора в килограммах.
	MinWeightKg = 45.0
)

// Result — результат вычисления допуска.
type Result struct {
	// Eligible — допущен ли донор к донации.
	Eligible bool
	// Reason — причина отказа (пусто, если Eligible).
	Reason string
	// NextEligibleAt — дата следующего допуска по кулдауну
	// (nil, если донор ещё не сдавал кровь).
	NextEligibleAt *time.Time
}

// Compute вычисляет допуск донора из биометрии и времени последней донации.
// Чистая функция: без I/O, время передаётся параметром now.
func Compute(lastDonation *time.Time, age int, weightKg float64, now time.Time) Result {
	res := Result{Eligible: true}

	// Кулдаун: 90 дней с последней донации
	if lastDonation != nil {
		next := lastDonation.Add(CooldownDays * 24 * time.Hour)
		res.NextEligibleAt = &next

		if next.After(now) {
			res.Eligible = false
			res.Reason = fmt.Sprintf("до следующей донации осталось %d дн.", daysUntil(now, next))
		}
	}

	// Возраст: [18, 65] включительно. Проверяется после кулдауна
	// и перезаписывает его вердикт.
	if age < MinAge || age > MaxAge {
		res.Eligible = false
		res.Reason = fmt.Sprintf("возраст %d вне допустимого диапазона %d-%d", age, MinAge, MaxAge)
	}

	// Вес: не менее 45 кг. Проверяется последним, его сообщение
	// перекрывает сообщение о возрасте.
	if weightKg < MinWeightKg {
		res.Eligible = false
		res.Reason = fmt.Sprintf("вес %.1f кг ниже минимального %.0f кг", weightKg, MinWeightKg)
	}

	return res
}

// daysUntil возвращает число оставшихся дней от from до to —
// деление разницы в миллисекундах на длину суток с округлением вверх.
func daysUntil(from, to time.Time) int {
	const dayMs = 24 * 60 * 60 * 1000
	diffMs := to.Sub(from).Milliseconds()
	if diffMs <= 0 {
		return 0
	}
	return int((diffMs + dayMs - 1) / dayMs)
}
