// Пакет assignment — контракт драйвера назначений ролей identity-сервиса.
//
// Драйвер отвечает за связки «актор — цель — роль»: чтение грантов,
// выдачу и отзыв, каскадные удаления при удалении сущностей. Актор —
// пользователь или группа, цель — проект или домен.
//
// Реализации контракта: SQL-бэкенд identity-сервиса (вне этого модуля),
// inmem — референс для разработки и тестов, overlay — обёртка поверх
// делегата со статической картой user→projects.
package assignment

import "errors"

// Ошибки драйвера назначений.
var (
	// ErrGrantNotFound — запрошенный грант не существует.
	ErrGrantNotFound = errors.New("грант не найден")
)

// Assignment — одно назначение роли.
// У актора заполнено ровно одно из UserID/GroupID, у цели — ровно одно
// из ProjectID/DomainID. Пустая строка означает «не задано».
type Assignment struct {
	// RoleID — идентификатор назначенной роли
	RoleID string
	// UserID — идентификатор пользователя-актора
	UserID string
	// GroupID — идентификатор группы-актора
	GroupID string
	// ProjectID — идентификатор проекта-цели
	ProjectID string
	// DomainID — идентификатор домена-цели
	DomainID string
	// Inherited — грант наследуется подпроектами цели
	Inherited bool
}

// Grant — координаты гранта в операциях чтения и записи:
// те же актор и цель, что в Assignment, но без роли.
type Grant struct {
	// UserID — пользователь-актор (пусто, если актор — группа)
	UserID string
	// GroupID — группа-актор (пусто, если актор — пользователь)
	GroupID string
	// ProjectID — проект-цель (пусто, если цель — домен)
	ProjectID string
	// DomainID — домен-цель (пусто, если цель — проект)
	DomainID string
	// Inherited — грант наследуемый
	Inherited bool
}

// Assignment возвращает назначение роли roleID с координатами гранта.
func (g Grant) Assignment(roleID string) Assignment {
	return Assignment{
		RoleID:    roleID,
		UserID:    g.UserID,
		GroupID:   g.GroupID,
		ProjectID: g.ProjectID,
		DomainID:  g.DomainID,
		Inherited: g.Inherited,
	}
}
