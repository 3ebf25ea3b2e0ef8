package logging

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
)

// LogrAdapter реализует Logger поверх go-logr.
// Удобен для сервисов на controller-runtime, где логгер приходит как logr.Logger.
//
// logr не различает info и warn: Warn пишется через Info с атрибутом "severity"="warn".
// Debug соответствует V(1).
type LogrAdapter struct {
	logger logr.Logger
}

// NewLogrAdapter оборачивает logr.Logger.
func NewLogrAdapter(logger logr.Logger) *LogrAdapter {
	return &LogrAdapter{logger: logger}
}

// Debug записывает сообщение с verbosity 1.
func (l *LogrAdapter) Debug(msg string, args ...any) {
	l.logger.V(1).Info(msg, args...)
}

// Info записывает сообщение уровня INFO.
func (l *LogrAdapter) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn записывает сообщение через Info с пометкой severity=warn.
func (l *LogrAdapter) Warn(msg string, args ...any) {
	l.logger.Info(msg, append([]any{"severity", "warn"}, args...)...)
}

// Error записывает сообщение уровня ERROR.
// Значение ключа "error" (если есть) передаётся в logr как err.
func (l *LogrAdapter) Error(msg string, args ...any) {
	err, rest := extractError(args)
	l.logger.Error(err, msg, rest...)
}

// With возвращает новый Logger с добавленными атрибутами.
func (l *LogrAdapter) With(args ...any) Logger {
	return &LogrAdapter{logger: l.logger.WithValues(args...)}
}

// extractError достаёт пару "error"=<value> из key-value списка.
func extractError(args []any) (error, []any) {
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok && key == "error" {
			rest := make([]any, 0, len(args)-2)
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+2:]...)
			switch v := args[i+1].(type) {
			case error:
				return v, rest
			case string:
				return errors.New(v), rest
			default:
				return fmt.Errorf("%v", v), rest
			}
		}
	}
	return nil, args
}
