// grants.go — операции assignment.Driver поверх делегата.
//
// Чтения: сначала делегат, затем дополнение синтетическими грантами
// из снапшота. Записи: проксирование в делегат без изменений.
package overlay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bbobrov/keystone-json-assignment/assignment"
)

// Интерфейсная проверка.
var _ assignment.Driver = (*Driver)(nil)

// ListGrantRoleIDs возвращает роли гранта из делегата и добавляет роль
// карты, если пара (пользователь, проект) есть в снапшоте.
// Роль добавляется без дедупликации, даже если делегат уже вернул её.
func (d *Driver) ListGrantRoleIDs(ctx context.Context, g assignment.Grant) ([]string, error) {
	roleIDs, err := d.delegate.ListGrantRoleIDs(ctx, g)
	if err != nil {
		return nil, err
	}

	snap := d.snapshot()
	if snap.contains(g.UserID, g.ProjectID) {
		roleIDs = append(roleIDs, snap.roleID)
		syntheticGrantsTotal.Inc()
	}
	return roleIDs, nil
}

// CheckGrant проверяет грант в делегате. Отсутствующий грант считается
// существующим, если речь о роли карты и пара (пользователь, проект)
// есть в снапшоте.
func (d *Driver) CheckGrant(ctx context.Context, roleID string, g assignment.Grant) error {
	err := d.delegate.CheckGrant(ctx, roleID, g)
	if err == nil {
		return nil
	}
	if !errors.Is(err, assignment.ErrGrantNotFound) {
		return err
	}

	snap := d.snapshot()
	if roleID == snap.roleID && snap.contains(g.UserID, g.ProjectID) {
		syntheticGrantsTotal.Inc()
		return nil
	}
	return err
}

// ListRoleAssignments возвращает назначения из делегата и добавляет
// все синтетические назначения снапшота. Фильтр к синтетическим
// назначениям не применяется: выдача фильтруется вызывающей стороной.
func (d *Driver) ListRoleAssignments(ctx context.Context, f assignment.Filter) ([]assignment.Assignment, error) {
	result, err := d.delegate.ListRoleAssignments(ctx, f)
	if err != nil {
		return nil, err
	}

	snap := d.snapshot()
	if len(snap.entries) > 0 {
		result = append(result, snap.entries...)
		syntheticGrantsTotal.Add(float64(len(snap.entries)))
	}
	return result, nil
}

func (d *Driver) CreateGrant(ctx context.Context, roleID string, g assignment.Grant) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "CreateGrant"))
	return d.delegate.CreateGrant(ctx, roleID, g)
}

func (d *Driver) DeleteGrant(ctx context.Context, roleID string, g assignment.Grant) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "DeleteGrant"))
	return d.delegate.DeleteGrant(ctx, roleID, g)
}

func (d *Driver) AddRoleToUserProject(ctx context.Context, userID, projectID, roleID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "AddRoleToUserProject"))
	return d.delegate.AddRoleToUserProject(ctx, userID, projectID, roleID)
}

func (d *Driver) RemoveRoleFromUserProject(ctx context.Context, userID, projectID, roleID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "RemoveRoleFromUserProject"))
	return d.delegate.RemoveRoleFromUserProject(ctx, userID, projectID, roleID)
}

func (d *Driver) DeleteProjectAssignments(ctx context.Context, projectID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "DeleteProjectAssignments"))
	return d.delegate.DeleteProjectAssignments(ctx, projectID)
}

func (d *Driver) DeleteRoleAssignments(ctx context.Context, roleID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "DeleteRoleAssignments"))
	return d.delegate.DeleteRoleAssignments(ctx, roleID)
}

func (d *Driver) DeleteUserAssignments(ctx context.Context, userID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "DeleteUserAssignments"))
	return d.delegate.DeleteUserAssignments(ctx, userID)
}

func (d *Driver) DeleteGroupAssignments(ctx context.Context, groupID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "DeleteGroupAssignments"))
	return d.delegate.DeleteGroupAssignments(ctx, groupID)
}

func (d *Driver) DeleteDomainAssignments(ctx context.Context, domainID string) error {
	d.logger.Debug("Проксирование запроса к драйверу-делегату", slog.String("op", "DeleteDomainAssignments"))
	return d.delegate.DeleteDomainAssignments(ctx, domainID)
}
