// cache.go — кэширующий декоратор справочника проектов.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package directory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша резолвинга проектов.
var (
	projectCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kja_project_cache_hits_total",
		Help: "Общее количество попаданий в кэш резолвинга проектов.",
	})
	projectCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kja_project_cache_misses_total",
		Help: "Общее количество промахов кэша резолвинга проектов.",
	})
)

// CachedProjects — LRU-кэш поверх справочника проектов с TTL.
// Имена проектов в карте стабильны, а карта перечитывается периодически:
// кэш избавляет повторные построения от повторных походов в бэкенд.
//
// Кэшируются только успешные резолвы. Отрицательный результат
// (ErrProjectNotFound) не кэшируется: проект, созданный позже,
// подхватится при следующем построении.
type CachedProjects struct {
	next  Projects
	cache *expirable.LRU[string, string]
}

// NewCachedProjects создаёт кэширующий декоратор над next.
// maxSize — максимальное количество записей, ttl — время жизни записи.
func NewCachedProjects(next Projects, maxSize int, ttl time.Duration) *CachedProjects {
	cache := expirable.NewLRU[string, string](maxSize, nil, ttl)
	return &CachedProjects{next: next, cache: cache}
}

// ProjectIDByName возвращает идентификатор проекта, используя кэш.
func (c *CachedProjects) ProjectIDByName(ctx context.Context, domainID, projectName string) (string, error) {
	key := domainID + "/" + projectName
	if id, ok := c.cache.Get(key); ok {
		projectCacheHitsTotal.Inc()
		return id, nil
	}
	projectCacheMissesTotal.Inc()

	id, err := c.next.ProjectIDByName(ctx, domainID, projectName)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, id)
	return id, nil
}

// DomainIDByName резолвит домен напрямую, без кэширования.
// Домен резолвится один раз за построение, кэш здесь не нужен.
func (c *CachedProjects) DomainIDByName(ctx context.Context, domainName string) (string, error) {
	return c.next.DomainIDByName(ctx, domainName)
}
