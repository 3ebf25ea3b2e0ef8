package output

import (
	"fmt"
	"io"
)

// TextWriter форматирует Result в человекочитаемый текст.
type TextWriter struct{}

// NewTextWriter создаёт новый TextWriter.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Write форматирует result в текст и записывает в w.
func (t *TextWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s: %s\n", result.Command, result.Status); err != nil {
		return err
	}

	if result.Error != nil {
		if _, err := fmt.Fprintf(w, "Error [%s]: %s\n", result.Error.Code, result.Error.Message); err != nil {
			return err
		}
	}

	if err := writeData(w, result.Data); err != nil {
		return err
	}

	if result.Metadata != nil {
		if result.Metadata.DurationMs > 0 {
			if _, err := fmt.Fprintf(w, "Время выполнения: %s\n", formatDuration(result.Metadata.DurationMs)); err != nil {
				return err
			}
		}
		if result.Metadata.TraceID != "" {
			if _, err := fmt.Fprintf(w, "trace_id: %s\n", result.Metadata.TraceID); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeData(w io.Writer, data any) error {
	switch d := data.(type) {
	case nil:
		return nil
	case *SendData:
		delivery := "отправлен в " + d.Provider + " (" + d.Method + ")"
		if !d.Transmitted {
			delivery = "записан только в локальный лог"
		}
		if _, err := fmt.Fprintf(w, "Алерт %s: %s\n", d.Level, delivery); err != nil {
			return err
		}
		if d.Channel != "" && d.Transmitted {
			if _, err := fmt.Fprintf(w, "Канал: %s\n", d.Channel); err != nil {
				return err
			}
		}
		if d.TraceTruncated {
			if _, err := fmt.Fprintln(w, "Trace обрезан"); err != nil {
				return err
			}
		}
		return nil
	case *VersionData:
		_, err := fmt.Fprintf(w, "Версия: %s (commit %s, собрано %s)\n", d.Version, d.Commit, d.BuildDate)
		return err
	default:
		_, err := fmt.Fprintf(w, "Data: %v\n", d)
		return err
	}
}

// formatDuration форматирует duration в человекочитаемый вид.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dмс", ms)
	}
	sec := ms / 1000
	if sec < 60 {
		return fmt.Sprintf("%.1fс", float64(ms)/1000)
	}
	return fmt.Sprintf("%dм %dс", sec/60, sec%60)
}
