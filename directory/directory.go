// Пакет directory — контракты справочника identity-сервиса.
//
// Оверлей карты не хранит пользователей, проекты, домены и роли:
// он резолвит имена из файла карты во внутренние идентификаторы через
// эти интерфейсы. Реализации предоставляет identity-сервис (SQL, LDAP),
// в тестах используются фейки.
//
// Ошибки «не найдено» — сигнальные: построение оверлея пропускает
// неизвестных пользователей и проекты с предупреждением в логе, а любую
// другую ошибку (сеть, бэкенд) считает фатальной.
package directory

import (
	"context"
	"errors"
)

// Ошибки справочника.
var (
	// ErrUserNotFound — пользователь с таким именем не существует.
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrProjectNotFound — проект с таким именем не существует.
	ErrProjectNotFound = errors.New("проект не найден")
	// ErrDomainNotFound — домен с таким именем не существует.
	ErrDomainNotFound = errors.New("домен не найден")
	// ErrRoleNotFound — роль с таким именем не существует.
	ErrRoleNotFound = errors.New("роль не найдена")
)

// Users — поиск пользователей по имени.
type Users interface {
	// UserIDByName возвращает публичный идентификатор пользователя
	// userName в домене с именем domainName.
	// Возвращает ErrUserNotFound, если пользователя нет.
	UserIDByName(ctx context.Context, domainName, userName string) (string, error)
}

// Projects — поиск проектов и доменов по имени.
// Проекты ищутся в домене по его идентификатору, домены — по имени:
// так устроен справочник identity-сервиса.
type Projects interface {
	// ProjectIDByName возвращает идентификатор проекта projectName
	// в домене domainID.
	// Возвращает ErrProjectNotFound, если проекта нет.
	ProjectIDByName(ctx context.Context, domainID, projectName string) (string, error)
	// DomainIDByName возвращает идентификатор домена по имени.
	// Возвращает ErrDomainNotFound, если домена нет.
	DomainIDByName(ctx context.Context, domainName string) (string, error)
}

// Roles — поиск ролей по имени.
type Roles interface {
	// RoleIDByName возвращает идентификатор роли по имени.
	// Возвращает ErrRoleNotFound, если роли нет.
	RoleIDByName(ctx context.Context, roleName string) (string, error)
}

// Directory агрегирует справочники, необходимые для построения оверлея.
type Directory interface {
	Users
	Projects
	Roles
}
