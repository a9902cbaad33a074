// Пакет mapfile — чтение файла карты «пользователь → проекты».
//
// Формат файла: объект «имя пользователя → список имён проектов».
// Исторически файл называется user-project-map.json, но парсится как
// YAML: JSON — подмножество YAML, поэтому один парсер читает оба
// варианта записи.
//
// Пример:
//
//	{
//	    "alice": ["infra", "billing"],
//	    "bob": []
//	}
//
// Пустой файл — валидная пустая карта. Пустой список проектов у
// пользователя допустим: такой пользователь не получает ничего.
package mapfile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Map — карта «имя пользователя → имена проектов».
// Порядок проектов сохраняется как в файле, дубликаты не удаляются.
type Map map[string][]string

// Parse разбирает содержимое файла карты.
// Значение null у пользователя трактуется как пустой список.
func Parse(data []byte) (Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ошибка разбора карты user-project: %w", err)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// Load читает и разбирает файл карты по пути path.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла карты %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Users возвращает имена пользователей в отсортированном порядке.
// Детерминированный порядок нужен для воспроизводимых логов и тестов.
func (m Map) Users() []string {
	users := make([]string, 0, len(m))
	for u := range m {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Stats — сводка по карте для диагностики и CLI.
type Stats struct {
	// Users — количество пользователей в карте
	Users int `json:"users"`
	// ProjectRefs — суммарное количество ссылок на проекты
	ProjectRefs int `json:"project_refs"`
	// UniqueProjects — количество различных имён проектов
	UniqueProjects int `json:"unique_projects"`
	// EmptyUsers — пользователи с пустым списком проектов
	EmptyUsers int `json:"empty_users"`
	// DuplicateRefs — повторные ссылки на проект у одного пользователя
	DuplicateRefs int `json:"duplicate_refs"`
}

// Stats подсчитывает сводку по карте.
func (m Map) Stats() Stats {
	st := Stats{Users: len(m)}
	unique := make(map[string]struct{})
	for _, projects := range m {
		if len(projects) == 0 {
			st.EmptyUsers++
			continue
		}
		seen := make(map[string]struct{}, len(projects))
		for _, p := range projects {
			st.ProjectRefs++
			unique[p] = struct{}{}
			if _, dup := seen[p]; dup {
				st.DuplicateRefs++
				continue
			}
			seen[p] = struct{}{}
		}
	}
	st.UniqueProjects = len(unique)
	return st
}
