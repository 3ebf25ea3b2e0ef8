package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger создаёт Logger согласно конфигурации.
//
// Вывод (config.Output):
//   - "stderr" или "": os.Stderr
//   - "file": файл с ротацией через lumberjack (MaxSize, MaxBackups, MaxAge, Compress)
//
// Реализация (config.Backend): "slog" по умолчанию, "zerolog" по запросу.
func NewLogger(config Config) Logger {
	var w io.Writer

	switch config.Output {
	case OutputFile:
		w = newRotatingWriter(config)
	case OutputStderr, "":
		w = os.Stderr
	default:
		_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
			"WARNING: неизвестный logging output %q, используется stderr\n", config.Output)
		w = os.Stderr
	}

	return NewLoggerWithWriter(config, w)
}

// newRotatingWriter создаёт writer с ротацией на основе lumberjack.
// При пустом FilePath или невозможности создать директорию возвращает os.Stderr.
func newRotatingWriter(config Config) io.Writer {
	if config.FilePath == "" {
		_, _ = os.Stderr.WriteString("WARNING: logging output=file, но filePath пустой, используется stderr\n") //nolint:errcheck // bootstrap stderr
		return os.Stderr
	}

	dir := filepath.Dir(config.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
				"WARNING: не удалось создать директорию логов %q: %v, используется stderr\n", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// NewLoggerWithWriter создаёт Logger с заданным writer.
// Используется в тестах и когда вывод нужно направить в собственный поток.
func NewLoggerWithWriter(config Config, w io.Writer) Logger {
	if config.Backend == BackendZerolog {
		return newZerologLogger(config, w)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}
	var handler slog.Handler

	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return NewSlogAdapter(slog.New(handler))
}

func newZerologLogger(config Config, w io.Writer) Logger {
	if config.Format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).Level(zerologLevel(config.Level)).With().Timestamp().Logger()
	return NewZerologAdapter(zl)
}

// parseLevel конвертирует строковый уровень в slog.Level.
// Неизвестное значение трактуется как info.
func parseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
