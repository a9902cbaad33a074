// Пакет overlay — драйвер назначений со статической картой
// «пользователь → проекты».
//
// Оверлей оборачивает настоящий драйвер назначений (делегат). При
// построении он читает файл карты, резолвит имена через справочник
// identity-сервиса и держит в памяти снапшот «пользователь → множество
// проектов». Чтения сначала идут в делегат, затем дополняются
// синтетическими грантами фиксированной роли для пар из снапшота.
// Записи уходят в делегат как есть: оверлей ничего не персистит,
// синтетический грант нельзя ни создать, ни отозвать через API записи.
//
// Снапшот неизменяемый и заменяется целиком (Rebuild, ReloadService).
// Неудачное перечитывание не трогает текущий снапшот.
package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bbobrov/keystone-json-assignment/assignment"
	"github.com/bbobrov/keystone-json-assignment/directory"
)

// Driver — оверлей поверх драйвера назначений.
// Реализует assignment.Driver.
type Driver struct {
	delegate assignment.Driver
	dir      directory.Directory
	// projects — кэширующая обёртка над справочником проектов.
	// Переживает перестроения: повторный Rebuild не ходит в бэкенд
	// за стабильными именами, TTL ограничивает устаревание.
	projects directory.Projects
	cfg      Config
	logger   *slog.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// snapshot — неизменяемый результат построения карты.
type snapshot struct {
	// domainID — идентификатор домена пользователей карты
	domainID string
	// roleID — идентификатор назначаемой роли
	roleID string
	// users — userID → множество projectID
	users map[string]map[string]struct{}
	// entries — синтетические назначения в отсортированном порядке
	entries []assignment.Assignment
}

// contains сообщает, есть ли в снапшоте пара (userID, projectID).
func (s *snapshot) contains(userID, projectID string) bool {
	set, ok := s.users[userID]
	if !ok {
		return false
	}
	_, ok = set[projectID]
	return ok
}

// Stats — сводка текущего снапшота для логов и диагностики.
type Stats struct {
	// Users — количество пользователей в снапшоте
	Users int
	// Pairs — количество пар пользователь-проект
	Pairs int
	// RoleID — идентификатор назначаемой роли
	RoleID string
	// DomainID — идентификатор домена пользователей
	DomainID string
}

// New строит оверлей: резолвит домен и роль, читает файл карты,
// резолвит пользователей и проекты и формирует снапшот.
// Неизвестные пользователи и проекты пропускаются с предупреждением,
// любая другая ошибка резолвинга фатальна.
func New(ctx context.Context, cfg Config, delegate assignment.Driver, dir directory.Directory, logger *slog.Logger) (*Driver, error) {
	d := &Driver{
		delegate: delegate,
		dir:      dir,
		cfg:      cfg.withDefaults(),
		logger:   logger.With(slog.String("component", "assignment_overlay")),
	}
	d.projects = directory.NewCachedProjects(dir, d.cfg.ResolveCacheSize, d.cfg.ResolveCacheTTL)

	if len(d.cfg.DefaultRoles) > 1 {
		d.logger.Warn("Задано несколько ролей, используется только первая",
			slog.String("role", d.cfg.DefaultRoles[0]),
		)
	}

	snap, err := d.build(ctx)
	if err != nil {
		return nil, err
	}
	d.setSnapshot(snap)
	return d, nil
}

// Rebuild перечитывает файл карты и атомарно заменяет снапшот.
// При ошибке текущий снапшот остаётся прежним.
func (d *Driver) Rebuild(ctx context.Context) error {
	start := time.Now()

	snap, err := d.build(ctx)
	if err != nil {
		mapReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("ошибка перестроения карты: %w", err)
	}

	d.setSnapshot(snap)
	mapReloadsTotal.WithLabelValues("success").Inc()
	mapReloadDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Stats возвращает сводку текущего снапшота.
func (d *Driver) Stats() Stats {
	snap := d.snapshot()
	return Stats{
		Users:    len(snap.users),
		Pairs:    len(snap.entries),
		RoleID:   snap.roleID,
		DomainID: snap.domainID,
	}
}

// snapshot возвращает текущий снапшот.
func (d *Driver) snapshot() *snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// setSnapshot заменяет снапшот и обновляет gauge-метрики.
func (d *Driver) setSnapshot(snap *snapshot) {
	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()

	mapUsers.Set(float64(len(snap.users)))
	mapPairs.Set(float64(len(snap.entries)))
}
