// driver.go — интерфейс драйвера назначений.
package assignment

import "context"

// Driver — интерфейс бэкенда назначений ролей.
// Чтения возвращают текущее состояние хранилища, записи его меняют.
// Каскадные Delete*Assignments вызываются identity-сервисом при
// удалении соответствующей сущности и убирают все её назначения.
type Driver interface {
	// ListGrantRoleIDs возвращает идентификаторы ролей гранта.
	ListGrantRoleIDs(ctx context.Context, g Grant) ([]string, error)
	// CheckGrant проверяет наличие роли roleID в гранте.
	// Возвращает ErrGrantNotFound, если роль не назначена.
	CheckGrant(ctx context.Context, roleID string, g Grant) error
	// ListRoleAssignments возвращает назначения, проходящие фильтр.
	ListRoleAssignments(ctx context.Context, f Filter) ([]Assignment, error)

	// CreateGrant назначает роль roleID актору гранта на его цель.
	// Повторное назначение — no-op.
	CreateGrant(ctx context.Context, roleID string, g Grant) error
	// DeleteGrant отзывает роль roleID у гранта.
	// Возвращает ErrGrantNotFound, если роль не была назначена.
	DeleteGrant(ctx context.Context, roleID string, g Grant) error
	// AddRoleToUserProject назначает пользователю роль на проект.
	AddRoleToUserProject(ctx context.Context, userID, projectID, roleID string) error
	// RemoveRoleFromUserProject отзывает у пользователя роль на проект.
	// Возвращает ErrGrantNotFound, если роль не была назначена.
	RemoveRoleFromUserProject(ctx context.Context, userID, projectID, roleID string) error

	// DeleteProjectAssignments удаляет все назначения на проект.
	DeleteProjectAssignments(ctx context.Context, projectID string) error
	// DeleteRoleAssignments удаляет все назначения роли.
	DeleteRoleAssignments(ctx context.Context, roleID string) error
	// DeleteUserAssignments удаляет все назначения пользователя.
	DeleteUserAssignments(ctx context.Context, userID string) error
	// DeleteGroupAssignments удаляет все назначения группы.
	DeleteGroupAssignments(ctx context.Context, groupID string) error
	// DeleteDomainAssignments удаляет все назначения на домен.
	DeleteDomainAssignments(ctx context.Context, domainID string) error
}
