// Package constants содержит имя приложения, версию и общие значения CLI commonlog.
package constants

import "time"

// AppName: имя бинарника и значение по умолчанию для service.name.
const AppName = "commonlog"

// Version, Commit и BuildDate задаются при сборке:
//
//	go build -ldflags "-X github.com/Kargones/commonlog/internal/constants.Version=1.4.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Форматы вывода результата CLI.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Имена команд CLI.
const (
	CmdSend    = "send"
	CmdVersion = "version"
)

// EnvConfigPath: переменная окружения с путём к файлу конфигурации,
// используется если флаг --config не задан.
const EnvConfigPath = "CL_CONFIG"

// StdinPath: значение --trace-file для чтения trace из stdin.
const StdinPath = "-"

// MaxTraceBytes: максимальный размер trace, читаемого из --trace-file.
// Всё, что длиннее, обрезается.
const MaxTraceBytes = 1 << 20

// ShutdownTimeout ограничивает отправку метрик и span-ов при завершении.
const ShutdownTimeout = 5 * time.Second
