// Package alert описывает модель commonlog: уровни алертов, методы отправки,
// вложения, конфигурацию провайдера, резолверы каналов и ошибки доставки.
package alert

import (
	"fmt"
	"strings"
)

// Level определяет уровень важности алерта.
// Уровни упорядочены: LevelInfo < LevelWarn < LevelError.
type Level int

const (
	// LevelInfo: информационное сообщение. Только пишется в локальный лог,
	// в чат не отправляется.
	LevelInfo Level = iota
	// LevelWarn: предупреждение, отправляется в чат.
	LevelWarn
	// LevelError: ошибка, отправляется в чат.
	LevelError
)

// String возвращает строковое представление уровня.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Transmitted возвращает true для уровней, которые отправляются провайдеру.
// Значения вне LevelInfo..LevelError не отправляются.
func (l Level) Transmitted() bool {
	return l == LevelWarn || l == LevelError
}

// ParseLevel разбирает строковое имя уровня без учёта регистра.
// Допустимые значения: info, warn, warning, error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: неизвестный уровень %q", ErrConfiguration, s)
	}
}
