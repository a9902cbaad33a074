// filter.go — параметры фильтрации списка назначений.
package assignment

// Filter — фильтр для ListRoleAssignments.
// nil-поле означает «фильтр не применяется». Слайсы фильтруют по
// принципу «любое из»: nil — не применяется, пустой слайс не
// пропускает ничего.
type Filter struct {
	// RoleID — только назначения этой роли
	RoleID *string
	// UserID — только назначения этого пользователя
	UserID *string
	// GroupIDs — только назначения этих групп
	GroupIDs []string
	// ProjectIDs — только назначения на эти проекты
	ProjectIDs []string
	// DomainID — только назначения на этот домен
	DomainID *string
	// Inherited — только наследуемые (true) или прямые (false)
	Inherited *bool
}

// Matches сообщает, проходит ли назначение все заданные поля фильтра.
func (f Filter) Matches(a Assignment) bool {
	if f.RoleID != nil && a.RoleID != *f.RoleID {
		return false
	}
	if f.UserID != nil && a.UserID != *f.UserID {
		return false
	}
	if f.GroupIDs != nil && !containsString(f.GroupIDs, a.GroupID) {
		return false
	}
	if f.ProjectIDs != nil && !containsString(f.ProjectIDs, a.ProjectID) {
		return false
	}
	if f.DomainID != nil && a.DomainID != *f.DomainID {
		return false
	}
	if f.Inherited != nil && a.Inherited != *f.Inherited {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
