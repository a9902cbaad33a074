// metrics.go — Prometheus-метрики оверлея.
package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики оверлея.
var (
	mapUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kja_map_users",
		Help: "Количество пользователей в текущем снапшоте карты.",
	})
	mapPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kja_map_pairs",
		Help: "Количество пар пользователь-проект в текущем снапшоте карты.",
	})
	skippedUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kja_skipped_users_total",
		Help: "Количество записей карты, пропущенных из-за неизвестного пользователя.",
	})
	skippedProjectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kja_skipped_projects_total",
		Help: "Количество ссылок карты, пропущенных из-за неизвестного проекта.",
	})
	syntheticGrantsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kja_synthetic_grants_total",
		Help: "Количество синтетических грантов, добавленных в ответы чтения.",
	})
	mapReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kja_map_reloads_total",
		Help: "Количество перечитываний карты по статусам.",
	}, []string{"status"})
	mapReloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kja_map_reload_duration_seconds",
		Help:    "Длительность построения снапшота карты.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms … ~5s
	})
)
