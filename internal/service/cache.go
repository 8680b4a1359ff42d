// Пакет service — бизнес-логика Donation Module.
// CacheService — LRU-кэш результатов проверки годности донора с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/hemobank/donation-module/internal/domain/eligibility"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш результатов годности.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша результатов годности.",
	})
)

// CacheService — LRU-кэш результатов годности доноров с автоматическим TTL.
// Каждый экземпляр модуля имеет собственный in-memory кэш.
// Результат годности зависит от "сейчас", поэтому TTL короткий:
// протухшая запись — это максимум TTL неточности в remaining days.
type CacheService struct {
	cache *expirable.LRU[string, *eligibility.Result]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *eligibility.Result](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает результат годности из кэша по donorID.
// Возвращает (результат, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(donorID string) (*eligibility.Result, bool) {
	val, ok := c.cache.Get(donorID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет результат в кэше.
func (c *CacheService) Set(donorID string, result *eligibility.Result) {
	c.cache.Add(donorID, result)
}

// Invalidate удаляет результат из кэша.
// Вызывается при фиксации донации и обновлении профиля донора.
func (c *CacheService) Invalidate(donorID string) {
	c.cache.Remove(donorID)
}
