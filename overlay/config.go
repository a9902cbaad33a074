// config.go — конфигурация оверлея из переменных окружения.
package overlay

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Значения по умолчанию.
const (
	// DefaultMapPath — стандартный путь к файлу карты.
	DefaultMapPath = "/etc/keystone/user-project-map.json"
	// DefaultRoleName — роль, назначаемая по карте, если не задано иное.
	DefaultRoleName = "Member"
	// DefaultDomainName — домен, в котором ищутся пользователи из карты.
	DefaultDomainName = "ldap_users"
	// DefaultProjectDomainID — домен, в котором ищутся проекты из карты.
	DefaultProjectDomainID = "default"
)

// Config содержит все параметры оверлея.
type Config struct {
	// --- Карта ---

	// Путь к файлу карты user-project
	MapPath string
	// Имена ролей, назначаемых по карте. Используется только первая,
	// список сохранён ради совместимости формата конфигурации.
	DefaultRoles []string
	// Имя домена, в котором ищутся пользователи из карты
	DomainName string
	// Идентификатор домена, в котором ищутся проекты из карты
	ProjectDomainID string

	// --- Перечитывание карты ---

	// Интервал периодического перечитывания (0 — отключено)
	ReloadInterval time.Duration

	// --- Кэш резолвинга проектов ---

	// Максимальное количество записей в кэше
	ResolveCacheSize int
	// Время жизни записи в кэше
	ResolveCacheTTL time.Duration

	// --- Логи ---

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
}

// ConfigFromEnv загружает конфигурацию оверлея из переменных окружения,
// валидирует значения и возвращает Config или ошибку.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Карта ---

	// KJA_MAP_PATH — путь к файлу карты (по умолчанию /etc/keystone/user-project-map.json)
	cfg.MapPath = getEnvDefault("KJA_MAP_PATH", DefaultMapPath)

	// KJA_DEFAULT_ROLES — имена ролей через запятую (по умолчанию Member)
	cfg.DefaultRoles = parseCSV(getEnvDefault("KJA_DEFAULT_ROLES", DefaultRoleName))
	if len(cfg.DefaultRoles) == 0 {
		return nil, fmt.Errorf("KJA_DEFAULT_ROLES: список ролей пуст")
	}

	// KJA_DOMAIN_NAME — домен пользователей карты (по умолчанию ldap_users)
	cfg.DomainName = getEnvDefault("KJA_DOMAIN_NAME", DefaultDomainName)

	// KJA_PROJECT_DOMAIN_ID — домен проектов карты (по умолчанию default)
	cfg.ProjectDomainID = getEnvDefault("KJA_PROJECT_DOMAIN_ID", DefaultProjectDomainID)

	// --- Перечитывание карты ---

	// KJA_RELOAD_INTERVAL — интервал перечитывания (по умолчанию 0 — отключено)
	cfg.ReloadInterval, err = getEnvDuration("KJA_RELOAD_INTERVAL", 0)
	if err != nil {
		return nil, fmt.Errorf("KJA_RELOAD_INTERVAL: %w", err)
	}
	if cfg.ReloadInterval < 0 {
		return nil, fmt.Errorf("KJA_RELOAD_INTERVAL: значение не может быть отрицательным")
	}

	// --- Кэш резолвинга проектов ---

	// KJA_RESOLVE_CACHE_SIZE — размер кэша (по умолчанию 1024)
	cfg.ResolveCacheSize, err = getEnvInt("KJA_RESOLVE_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("KJA_RESOLVE_CACHE_SIZE: %w", err)
	}
	if cfg.ResolveCacheSize < 1 {
		return nil, fmt.Errorf("KJA_RESOLVE_CACHE_SIZE: значение %d должно быть положительным", cfg.ResolveCacheSize)
	}

	// KJA_RESOLVE_CACHE_TTL — время жизни записи (по умолчанию 5m)
	cfg.ResolveCacheTTL, err = getEnvDuration("KJA_RESOLVE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("KJA_RESOLVE_CACHE_TTL: %w", err)
	}

	// --- Логи ---

	// KJA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("KJA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("KJA_LOG_LEVEL: %w", err)
	}

	// KJA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("KJA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("KJA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	return cfg, nil
}

// withDefaults заполняет незаданные поля значениями по умолчанию.
// Позволяет собирать Config вручную, указывая только отличия.
func (c Config) withDefaults() Config {
	if c.MapPath == "" {
		c.MapPath = DefaultMapPath
	}
	if len(c.DefaultRoles) == 0 {
		c.DefaultRoles = []string{DefaultRoleName}
	}
	if c.DomainName == "" {
		c.DomainName = DefaultDomainName
	}
	if c.ProjectDomainID == "" {
		c.ProjectDomainID = DefaultProjectDomainID
	}
	if c.ResolveCacheSize == 0 {
		c.ResolveCacheSize = 1024
	}
	if c.ResolveCacheTTL == 0 {
		c.ResolveCacheTTL = 5 * time.Minute
	}
	return c
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
