// Пакет inmem — in-memory драйвер назначений для разработки и тестов.
//
// Хранит назначения в map под sync.RWMutex. Не персистентный: при
// рестарте всё теряется. В продакшене identity-сервис ходит в свой
// SQL-бэкенд; inmem позволяет гонять оверлей и интеграционные сценарии
// без базы данных.
package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/bbobrov/keystone-json-assignment/assignment"
)

// Driver — in-memory реализация assignment.Driver.
type Driver struct {
	mu     sync.RWMutex
	grants map[assignment.Assignment]struct{}
}

// New создаёт пустой in-memory драйвер.
func New() *Driver {
	return &Driver{
		grants: make(map[assignment.Assignment]struct{}),
	}
}

// Count возвращает количество хранимых назначений.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.grants)
}

func (d *Driver) ListGrantRoleIDs(ctx context.Context, g assignment.Grant) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var roleIDs []string
	for a := range d.grants {
		if sameCoordinates(a, g) {
			roleIDs = append(roleIDs, a.RoleID)
		}
	}
	sort.Strings(roleIDs)
	return roleIDs, nil
}

func (d *Driver) CheckGrant(ctx context.Context, roleID string, g assignment.Grant) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.grants[g.Assignment(roleID)]; !ok {
		return assignment.ErrGrantNotFound
	}
	return nil
}

func (d *Driver) ListRoleAssignments(ctx context.Context, f assignment.Filter) ([]assignment.Assignment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []assignment.Assignment
	for a := range d.grants {
		if f.Matches(a) {
			result = append(result, a)
		}
	}
	sortAssignments(result)
	return result, nil
}

func (d *Driver) CreateGrant(ctx context.Context, roleID string, g assignment.Grant) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Повторная выдача той же роли — no-op.
	d.grants[g.Assignment(roleID)] = struct{}{}
	return nil
}

func (d *Driver) DeleteGrant(ctx context.Context, roleID string, g assignment.Grant) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := g.Assignment(roleID)
	if _, ok := d.grants[a]; !ok {
		return assignment.ErrGrantNotFound
	}
	delete(d.grants, a)
	return nil
}

func (d *Driver) AddRoleToUserProject(ctx context.Context, userID, projectID, roleID string) error {
	return d.CreateGrant(ctx, roleID, assignment.Grant{UserID: userID, ProjectID: projectID})
}

func (d *Driver) RemoveRoleFromUserProject(ctx context.Context, userID, projectID, roleID string) error {
	return d.DeleteGrant(ctx, roleID, assignment.Grant{UserID: userID, ProjectID: projectID})
}

func (d *Driver) DeleteProjectAssignments(ctx context.Context, projectID string) error {
	d.deleteWhere(projectID, func(a assignment.Assignment) bool { return a.ProjectID == projectID })
	return nil
}

func (d *Driver) DeleteRoleAssignments(ctx context.Context, roleID string) error {
	d.deleteWhere(roleID, func(a assignment.Assignment) bool { return a.RoleID == roleID })
	return nil
}

func (d *Driver) DeleteUserAssignments(ctx context.Context, userID string) error {
	d.deleteWhere(userID, func(a assignment.Assignment) bool { return a.UserID == userID })
	return nil
}

func (d *Driver) DeleteGroupAssignments(ctx context.Context, groupID string) error {
	d.deleteWhere(groupID, func(a assignment.Assignment) bool { return a.GroupID == groupID })
	return nil
}

func (d *Driver) DeleteDomainAssignments(ctx context.Context, domainID string) error {
	d.deleteWhere(domainID, func(a assignment.Assignment) bool { return a.DomainID == domainID })
	return nil
}

// deleteWhere удаляет все назначения, для которых match возвращает true.
// Пустой id означает «не задано» и не совпадает ни с чем.
func (d *Driver) deleteWhere(id string, match func(assignment.Assignment) bool) {
	if id == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for a := range d.grants {
		if match(a) {
			delete(d.grants, a)
		}
	}
}

// sameCoordinates сообщает, совпадают ли координаты назначения и гранта.
func sameCoordinates(a assignment.Assignment, g assignment.Grant) bool {
	return a.UserID == g.UserID &&
		a.GroupID == g.GroupID &&
		a.ProjectID == g.ProjectID &&
		a.DomainID == g.DomainID &&
		a.Inherited == g.Inherited
}

// sortAssignments упорядочивает назначения детерминированно,
// чтобы списки были воспроизводимы в логах и тестах.
func sortAssignments(list []assignment.Assignment) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.RoleID != b.RoleID {
			return a.RoleID < b.RoleID
		}
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		if a.DomainID != b.DomainID {
			return a.DomainID < b.DomainID
		}
		return !a.Inherited && b.Inherited
	})
}
