// Package apperrors предоставляет структурированные ошибки CLI commonlog
// и их отображение в коды завершения процесса.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Коды ошибок в иерархическом формате: CATEGORY.SPECIFIC_ERROR.
const (
	// Категория CONFIG, ошибки загрузки и проверки конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// Категория INPUT, некорректные флаги или входные данные.
	ErrInputInvalid = "INPUT.INVALID"

	// Категория ALERT, алерт не доставлен.
	ErrAlertSend = "ALERT.SEND_FAILED"

	// Категория OUTPUT, ошибки форматирования вывода.
	ErrOutputFormat = "OUTPUT.FORMAT_FAILED"
)

// Коды завершения процесса.
const (
	ExitOK           = 0
	ExitSendFailed   = 1
	ExitInvalidInput = 2
)

// AppError представляет структурированную ошибку приложения.
// Реализует error interface и поддерживает wrapping через Unwrap().
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты (токены, app secret, URL webhook).
type AppError struct {
	// Code: машиночитаемый код ошибки в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message: человекочитаемое описание ошибки.
	Message string `json:"message"`

	// Cause: исходная ошибка. Не сериализуется в JSON.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает wrapped ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт новый AppError с заданным кодом, сообщением и причиной.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Category возвращает категорию кода: "CONFIG" для "CONFIG.LOAD_FAILED".
func (e *AppError) Category() string {
	category, _, _ := strings.Cut(e.Code, ".")
	return category
}

// ExitCode возвращает код завершения для ошибки:
// 0 без ошибки, 2 для CONFIG и INPUT, 1 для остальных (в том числе
// ошибок без AppError в цепочке).
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Category() {
		case "CONFIG", "INPUT":
			return ExitInvalidInput
		}
	}
	return ExitSendFailed
}
