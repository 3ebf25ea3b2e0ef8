package logging

import (
	"context"
	"log/slog"
)

// SlogAdapter реализует Logger поверх slog. Используется по умолчанию.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter оборачивает slog.Logger; nil означает slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.log(slog.LevelDebug, msg, args) }

func (s *SlogAdapter) Info(msg string, args ...any) { s.log(slog.LevelInfo, msg, args) }

func (s *SlogAdapter) Warn(msg string, args ...any) { s.log(slog.LevelWarn, msg, args) }

func (s *SlogAdapter) Error(msg string, args ...any) { s.log(slog.LevelError, msg, args) }

// With возвращает Logger, добавляющий args к каждой записи.
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(args...)}
}

// log не собирает запись, если уровень отключён у handler-а.
func (s *SlogAdapter) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !s.logger.Enabled(ctx, level) {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
