// main.go — точка входа mapcheck: офлайн-проверка файла карты user-project.
//
// Утилита для администраторов, правящих карту руками: читает файл,
// валидирует формат и печатает сводку. Справочник identity-сервиса
// не нужен, проверяется только сам файл.
//
// Коды выхода: 0 — файл валиден, 1 — файл не читается или битый,
// 2 — некорректные аргументы.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bbobrov/keystone-json-assignment/mapfile"
	"github.com/bbobrov/keystone-json-assignment/overlay"
)

func main() {
	// 1. Разбор флагов
	defaultPath := os.Getenv("KJA_MAP_PATH")
	if defaultPath == "" {
		defaultPath = overlay.DefaultMapPath
	}

	mapPath := flag.String("map", defaultPath, "путь к файлу карты user-project")
	quiet := flag.Bool("quiet", false, "не печатать сводку, только код выхода")
	jsonOut := flag.Bool("json", false, "печатать сводку в формате JSON")
	flag.Parse()

	// 2. Логгер: текстовый, в stderr, чтобы не мешать сводке в stdout
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// 3. Чтение и разбор файла карты
	m, err := mapfile.Load(*mapPath)
	if err != nil {
		logger.Error("Файл карты не прошёл проверку", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Предупреждения о подозрительных записях
	warnSuspicious(logger, m)

	// 5. Сводка
	if !*quiet {
		if err := printStats(os.Stdout, *mapPath, m.Stats(), *jsonOut); err != nil {
			logger.Error("Ошибка вывода сводки", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

// warnSuspicious логирует записи, которые построение карты молча
// пропустит или схлопнет.
func warnSuspicious(logger *slog.Logger, m mapfile.Map) {
	for _, user := range m.Users() {
		if user == "" {
			logger.Warn("Пустое имя пользователя в карте")
		}
		seen := make(map[string]struct{}, len(m[user]))
		for _, project := range m[user] {
			if project == "" {
				logger.Warn("Пустое имя проекта в карте", slog.String("user", user))
				continue
			}
			if _, dup := seen[project]; dup {
				logger.Warn("Дубликат проекта у пользователя",
					slog.String("user", user),
					slog.String("project", project),
				)
			}
			seen[project] = struct{}{}
		}
	}
}

// printStats печатает сводку по карте в текстовом или JSON-формате.
func printStats(w io.Writer, path string, st mapfile.Stats, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(w, "Файл карты: %s\n", path)
	fmt.Fprintf(w, "Пользователей:       %d\n", st.Users)
	fmt.Fprintf(w, "Ссылок на проекты:   %d\n", st.ProjectRefs)
	fmt.Fprintf(w, "Уникальных проектов: %d\n", st.UniqueProjects)
	fmt.Fprintf(w, "Без проектов:        %d\n", st.EmptyUsers)
	fmt.Fprintf(w, "Дубликатов ссылок:   %d\n", st.DuplicateRefs)
	return nil
}
