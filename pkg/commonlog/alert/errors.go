package alert

import (
	"errors"
	"fmt"
)

// Базовые ошибки commonlog. Конкретные ошибки оборачивают их,
// поэтому проверка выполняется через errors.Is.
var (
	// ErrConfiguration: не хватает обязательной настройки (учётные данные, URL, переменная окружения).
	ErrConfiguration = errors.New("commonlog: invalid configuration")

	// ErrUnsupportedMethod: метод отправки не поддерживается провайдером.
	ErrUnsupportedMethod = errors.New("commonlog: unsupported send method")

	// ErrUnsupportedProvider: неизвестный провайдер.
	ErrUnsupportedProvider = errors.New("commonlog: unsupported provider")

	// ErrTransport: HTTP вызов завершился ошибкой сети или статусом, отличным от 200.
	ErrTransport = errors.New("commonlog: transport failure")

	// ErrCacheUnavailable: хранилище кэша токенов недоступно.
	ErrCacheUnavailable = errors.New("commonlog: token cache unavailable")

	// ErrTokenFetch: API авторизации Lark вернул code != 0.
	ErrTokenFetch = errors.New("commonlog: lark tenant token request rejected")

	// ErrChatNotFound: чат Lark с указанным именем не найден.
	ErrChatNotFound = errors.New("commonlog: lark chat not found")
)

// UnsupportedMethodError сообщает провайдера и метод, который он не поддерживает.
type UnsupportedMethodError struct {
	Provider ProviderID
	Method   SendMethod
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("commonlog: %s: unsupported send method %q", e.Provider, string(e.Method))
}

// Is позволяет сопоставлять ошибку с ErrUnsupportedMethod.
func (e *UnsupportedMethodError) Is(target error) bool {
	return target == ErrUnsupportedMethod
}

// UnsupportedProviderError сообщает имя неизвестного провайдера.
type UnsupportedProviderError struct {
	Provider ProviderID
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("commonlog: unsupported provider %q", string(e.Provider))
}

// Is позволяет сопоставлять ошибку с ErrUnsupportedProvider.
func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}

// TransportError описывает неуспешный HTTP вызов провайдера.
// StatusCode == 0 означает сетевую ошибку (Err заполнен).
// Endpoint хранится в маскированном виде и безопасен для логов.
type TransportError struct {
	Provider   ProviderID
	Method     SendMethod
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("commonlog: %s %s: request to %s failed: %v", e.Provider, e.Method, e.Endpoint, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("commonlog: %s %s: HTTP %d from %s", e.Provider, e.Method, e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("commonlog: %s %s: HTTP %d from %s: %s", e.Provider, e.Method, e.StatusCode, e.Endpoint, e.Body)
}

// Is позволяет сопоставлять ошибку с ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Unwrap возвращает сетевую ошибку, если она есть.
func (e *TransportError) Unwrap() error {
	return e.Err
}
