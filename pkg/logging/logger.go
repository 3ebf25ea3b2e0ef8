// Package logging предоставляет интерфейс и реализации для структурированного логирования
// commonlog. Логгер внедряется в фасад и провайдеры явно, глобального состояния нет.
package logging

// Logger определяет интерфейс для структурированного логирования.
// Реализации: SlogAdapter (slog из stdlib), ZerologAdapter (rs/zerolog),
// LogrAdapter (go-logr) и NopLogger.
//
// Все методы принимают сообщение и опциональные key-value пары:
//
//	logger.Warn("алерт не доставлен", "provider", "slack", "channel", "#ops")
//
// ВАЖНО: Logger пишет только в stderr или файл, никогда в stdout.
// stdout зарезервирован для результата CLI.
type Logger interface {
	// Debug записывает сообщение уровня DEBUG.
	Debug(msg string, args ...any)

	// Info записывает сообщение уровня INFO.
	// В commonlog сюда же попадают алерты уровня INFO (они не отправляются в чат).
	Info(msg string, args ...any)

	// Warn записывает сообщение уровня WARN.
	Warn(msg string, args ...any)

	// Error записывает сообщение уровня ERROR.
	// Используется для ошибок доставки алертов.
	Error(msg string, args ...any)

	// With возвращает новый Logger с добавленными атрибутами.
	//
	//	logger.With("delivery_id", id).Info("алерт отправлен")
	With(args ...any) Logger
}
