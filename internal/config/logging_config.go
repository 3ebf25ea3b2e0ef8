package config

import (
	"github.com/Kargones/commonlog/pkg/logging"
)

// LoggingConfig содержит настройки локального логирования.
type LoggingConfig struct {
	// Backend: реализация логгера (slog, zerolog).
	Backend string `yaml:"backend" env:"CL_LOG_BACKEND" env-default:"slog" env-description:"logger backend: slog or zerolog"`

	// Level: уровень логирования (debug, info, warn, error).
	Level string `yaml:"level" env:"CL_LOG_LEVEL" env-default:"info" env-description:"log level"`

	// Format: формат логов (json, text).
	Format string `yaml:"format" env:"CL_LOG_FORMAT" env-default:"text" env-description:"log format: json or text"`

	// Output: вывод логов (stderr, file).
	Output string `yaml:"output" env:"CL_LOG_OUTPUT" env-default:"stderr" env-description:"log output: stderr or file"`

	// FilePath: путь к файлу логов (если output=file).
	FilePath string `yaml:"filePath" env:"CL_LOG_FILE_PATH" env-default:"/var/log/commonlog.log"`

	// MaxSize: максимальный размер файла лога в MB.
	MaxSize int `yaml:"maxSize" env:"CL_LOG_MAX_SIZE" env-default:"50"`

	// MaxBackups: максимальное количество backup файлов.
	MaxBackups int `yaml:"maxBackups" env:"CL_LOG_MAX_BACKUPS" env-default:"3"`

	// MaxAge: максимальный возраст backup файлов в днях.
	MaxAge int `yaml:"maxAge" env:"CL_LOG_MAX_AGE" env-default:"7"`

	// Compress: сжимать ли backup файлы.
	// cleanenv подставляет env-default для нулевого значения, поэтому
	// compress: false в YAML отключить сжатие не может; только CL_LOG_COMPRESS=false.
	Compress bool `yaml:"compress" env:"CL_LOG_COMPRESS" env-default:"true"`
}

// ToLogging преобразует секцию в logging.Config.
func (c LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Backend:    c.Backend,
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

func (c LoggingConfig) validate() error {
	return c.ToLogging().Validate()
}
