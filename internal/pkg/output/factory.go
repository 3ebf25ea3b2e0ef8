package output

import (
	"errors"
	"fmt"
	"strings"
)

// FormatJSON и FormatText: поддерживаемые форматы вывода.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ErrUnknownFormat возвращается ParseFormat для неподдерживаемого формата.
var ErrUnknownFormat = errors.New("output: unknown format")

// NewWriter создаёт Writer по указанному формату (без учёта регистра).
// При неизвестном формате возвращает TextWriter.
func NewWriter(format string) Writer {
	if strings.EqualFold(format, FormatJSON) {
		return NewJSONWriter()
	}
	return NewTextWriter()
}

// ParseFormat проверяет значение флага --output.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatJSON, FormatText:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
