// build.go — построение снапшота карты.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bbobrov/keystone-json-assignment/assignment"
	"github.com/bbobrov/keystone-json-assignment/directory"
	"github.com/bbobrov/keystone-json-assignment/mapfile"
)

// build читает файл карты и резолвит имена в идентификаторы.
//
// Домен и роль обязаны резолвиться, иначе построение падает.
// Неизвестный пользователь или проект пропускается с предупреждением:
// карта правится руками и живёт дольше, чем записи в справочнике.
// Любая другая ошибка справочника фатальна, чтобы временный сбой
// бэкенда не выдал урезанный снапшот за полный.
func (d *Driver) build(ctx context.Context) (*snapshot, error) {
	domainID, err := d.dir.DomainIDByName(ctx, d.cfg.DomainName)
	if err != nil {
		return nil, fmt.Errorf("ошибка резолвинга домена %q: %w", d.cfg.DomainName, err)
	}

	roleName := d.cfg.DefaultRoles[0]
	roleID, err := d.dir.RoleIDByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("ошибка резолвинга роли %q: %w", roleName, err)
	}

	m, err := mapfile.Load(d.cfg.MapPath)
	if err != nil {
		return nil, err
	}

	users := make(map[string]map[string]struct{}, len(m))
	// Мемоизация резолвинга проектов в рамках одного построения:
	// один и тот же проект встречается у многих пользователей.
	projectIDByName := make(map[string]string)
	skippedUsers := 0
	skippedProjects := 0
	pairs := 0

	for _, userName := range m.Users() {
		userID, err := d.dir.UserIDByName(ctx, d.cfg.DomainName, userName)
		if errors.Is(err, directory.ErrUserNotFound) {
			d.logger.Warn("Пользователь из карты не найден, запись пропущена",
				slog.String("user", userName),
				slog.String("domain", d.cfg.DomainName),
			)
			skippedUsers++
			skippedUsersTotal.Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка резолвинга пользователя %q: %w", userName, err)
		}

		projectIDs := make(map[string]struct{}, len(m[userName]))
		for _, projectName := range m[userName] {
			projectID, ok := projectIDByName[projectName]
			if !ok {
				projectID, err = d.projects.ProjectIDByName(ctx, d.cfg.ProjectDomainID, projectName)
				if errors.Is(err, directory.ErrProjectNotFound) {
					d.logger.Warn("Проект из карты не найден, ссылка пропущена",
						slog.String("project", projectName),
						slog.String("user", userName),
					)
					skippedProjects++
					skippedProjectsTotal.Inc()
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("ошибка резолвинга проекта %q: %w", projectName, err)
				}
				projectIDByName[projectName] = projectID
			}
			projectIDs[projectID] = struct{}{}
		}

		users[userID] = projectIDs
		pairs += len(projectIDs)
	}

	snap := &snapshot{
		domainID: domainID,
		roleID:   roleID,
		users:    users,
		entries:  syntheticEntries(roleID, users, pairs),
	}

	d.logger.Info("Карта user-project построена",
		slog.String("path", d.cfg.MapPath),
		slog.Int("users", len(users)),
		slog.Int("pairs", pairs),
		slog.Int("skipped_users", skippedUsers),
		slog.Int("skipped_projects", skippedProjects),
	)
	return snap, nil
}

// syntheticEntries формирует отсортированный список синтетических
// назначений по снапшоту. Считается один раз за построение, чтобы
// ListRoleAssignments не сортировал на каждом чтении.
func syntheticEntries(roleID string, users map[string]map[string]struct{}, pairs int) []assignment.Assignment {
	userIDs := make([]string, 0, len(users))
	for userID := range users {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	entries := make([]assignment.Assignment, 0, pairs)
	for _, userID := range userIDs {
		projectIDs := make([]string, 0, len(users[userID]))
		for projectID := range users[userID] {
			projectIDs = append(projectIDs, projectID)
		}
		sort.Strings(projectIDs)

		for _, projectID := range projectIDs {
			entries = append(entries, assignment.Assignment{
				RoleID:    roleID,
				UserID:    userID,
				ProjectID: projectID,
			})
		}
	}
	return entries
}
