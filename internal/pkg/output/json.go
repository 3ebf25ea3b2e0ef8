package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter пишет Result одним JSON документом с отступами.
// HTML символы не экранируются: сообщения алертов часто содержат <, > и &.
type JSONWriter struct {
	indent string
}

// NewJSONWriter создаёт JSONWriter с отступом в два пробела.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{indent: "  "}
}

// Write сериализует result в w. nil result ничего не пишет.
func (j *JSONWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", j.indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("output: json: %w", err)
	}
	return nil
}
