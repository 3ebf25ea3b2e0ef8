// Package output форматирует результат команд CLI commonlog в JSON или текст.
// Результат пишется в stdout; логи идут в stderr или файл.
package output

// StatusSuccess и StatusError: возможные значения поля Status в Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIVersion: версия формата Result.
const APIVersion = "v1"

// Result представляет структурированный результат выполнения команды.
type Result struct {
	// Status содержит статус выполнения: "success" или "error".
	Status string `json:"status"`

	// Command содержит имя выполненной команды.
	Command string `json:"command"`

	// Data содержит данные команды (например, *SendData).
	Data any `json:"data,omitempty"`

	// Error содержит информацию об ошибке (только при status="error").
	Error *ErrorInfo `json:"error,omitempty"`

	// Metadata содержит метаданные выполнения.
	Metadata *Metadata `json:"metadata,omitempty"`
}

// ErrorInfo содержит информацию об ошибке в структурированном виде.
// Code: машиночитаемый код ошибки (например, "ALERT.SEND_FAILED").
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты!
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata содержит метаданные выполнения команды.
type Metadata struct {
	// DurationMs: время выполнения команды в миллисекундах.
	DurationMs int64 `json:"duration_ms"`

	// TraceID: идентификатор трассировки для корреляции логов и span-ов.
	TraceID string `json:"trace_id,omitempty"`

	// APIVersion: версия формата результата.
	APIVersion string `json:"api_version"`
}

// SendData: данные результата команды send.
type SendData struct {
	Provider string `json:"provider"`
	Method   string `json:"method"`
	Level    string `json:"level"`
	Channel  string `json:"channel,omitempty"`

	// Transmitted равен false для INFO, такой алерт только записан в локальный лог.
	Transmitted bool `json:"transmitted"`

	// TraceTruncated: trace был обрезан до допустимого размера.
	TraceTruncated bool `json:"trace_truncated,omitempty"`
}

// VersionData: данные результата команды version.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}
