package logging

import (
	"errors"
	"fmt"
	"slices"
)

// Значения Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Значения Config.Level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Значения Config.Output.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Значения Config.Backend.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// ErrInvalidConfig оборачивает все ошибки Config.Validate.
var ErrInvalidConfig = errors.New("logging: invalid config")

// Config: параметры локального лога, куда попадают INFO алерты
// и результаты доставки остальных уровней.
type Config struct {
	// Backend: slog или zerolog.
	Backend string

	// Format: json или text. Для zerolog text означает ConsoleWriter без цвета.
	Format string

	// Level: минимальный записываемый уровень.
	Level string

	// Output: stderr или file.
	Output string

	// Параметры файла с ротацией (lumberjack), используются при Output=file.
	// MaxSize в мегабайтах, MaxAge в днях.
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// DefaultConfig: slog, text, info, stderr. Параметры ротации заполнены
// на случай переключения Output на file.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendSlog,
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     OutputStderr,
		FilePath:   "/var/log/commonlog.log",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}
}

// Validate проверяет, что все значения из допустимых наборов.
// NewLogger к невалидной конфигурации снисходителен (подставляет значения
// по умолчанию), Validate нужен для явной проверки при загрузке конфигурации.
func (c Config) Validate() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"backend", c.Backend, []string{BackendSlog, BackendZerolog}},
		{"level", c.Level, []string{LevelDebug, LevelInfo, LevelWarn, LevelError}},
		{"format", c.Format, []string{FormatJSON, FormatText}},
		{"output", c.Output, []string{OutputStderr, OutputFile}},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("%w: %s %q, допустимо: %v", ErrInvalidConfig, ch.field, ch.value, ch.allowed)
		}
	}
	if c.Output == OutputFile && c.FilePath == "" {
		return fmt.Errorf("%w: filePath обязателен при output=file", ErrInvalidConfig)
	}
	return nil
}
