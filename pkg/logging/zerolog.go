package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologAdapter реализует Logger поверх rs/zerolog.
// Позволяет сервисам, уже использующим zerolog, передать свой логгер в commonlog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter оборачивает zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug записывает сообщение уровня DEBUG.
func (z *ZerologAdapter) Debug(msg string, args ...any) {
	z.logger.Debug().Fields(kvFields(args)).Msg(msg)
}

// Info записывает сообщение уровня INFO.
func (z *ZerologAdapter) Info(msg string, args ...any) {
	z.logger.Info().Fields(kvFields(args)).Msg(msg)
}

// Warn записывает сообщение уровня WARN.
func (z *ZerologAdapter) Warn(msg string, args ...any) {
	z.logger.Warn().Fields(kvFields(args)).Msg(msg)
}

// Error записывает сообщение уровня ERROR.
func (z *ZerologAdapter) Error(msg string, args ...any) {
	z.logger.Error().Fields(kvFields(args)).Msg(msg)
}

// With возвращает новый Logger с добавленными атрибутами.
func (z *ZerologAdapter) With(args ...any) Logger {
	return &ZerologAdapter{logger: z.logger.With().Fields(kvFields(args)).Logger()}
}

// kvFields превращает key-value пары в map для zerolog.
// Ключ без значения сохраняется с пометкой "!MISSING", нестроковые ключи приводятся через fmt.
func kvFields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			fields[key] = "!MISSING"
			break
		}
		fields[key] = args[i+1]
	}
	return fields
}

// zerologLevel конвертирует строковый уровень в zerolog.Level.
func zerologLevel(level string) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
