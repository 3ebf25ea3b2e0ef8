package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/commonlog/internal/pkg/testutil"
)

func sendResult() *Result {
	return &Result{
		Status:  StatusSuccess,
		Command: "send",
		Data: &SendData{
			Provider:    "slack",
			Method:      "webhook",
			Level:       "ERROR",
			Channel:     "#ops",
			Transmitted: true,
		},
		Metadata: &Metadata{
			DurationMs: 150,
			TraceID:    "abcdef1234567890abcdef1234567890",
			APIVersion: APIVersion,
		},
	}
}

func errorResult() *Result {
	return &Result{
		Status:  StatusError,
		Command: "send",
		Error:   &ErrorInfo{Code: "ALERT.SEND_FAILED", Message: "алерт не доставлен"},
		Metadata: &Metadata{
			DurationMs: 50,
			APIVersion: APIVersion,
		},
	}
}

// loadSchema загружает JSON Schema из файла для валидации.
func loadSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(filepath.Join("testdata", "schema", "result.schema.json"))
	require.NoError(t, err, "не удалось загрузить JSON Schema")
	return schema
}

func TestJSONWriter_SchemaValidation(t *testing.T) {
	schema := loadSchema(t)

	tests := []struct {
		name   string
		result *Result
	}{
		{"успешная отправка", sendResult()},
		{"ошибка", errorResult()},
		{"минимальный", &Result{Status: StatusSuccess, Command: "version"}},
		{"версия", &Result{Status: StatusSuccess, Command: "version", Data: &VersionData{
			Version: "1.4.0", Commit: "a1b2c3d", BuildDate: "2026-10-01",
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewJSONWriter().Write(&buf, tt.result))

			var doc any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
			assert.NoError(t, schema.Validate(doc))
		})
	}
}

func TestJSONWriter_SchemaRejectsErrorWithoutInfo(t *testing.T) {
	schema := loadSchema(t)
	doc := map[string]any{"status": "error", "command": "send"}
	assert.Error(t, schema.Validate(doc))
}

func TestJSONWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, sendResult()))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "success", parsed["status"])

	data := parsed["data"].(map[string]any)
	assert.Equal(t, "#ops", data["channel"])
	assert.Equal(t, true, data["transmitted"])
	_, has := data["trace_truncated"]
	assert.False(t, has)
}

func TestJSONWriter_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	result := errorResult()
	result.Error.Message = "HTTP 400 from <masked> & retry"
	require.NoError(t, NewJSONWriter().Write(&buf, result))
	assert.Contains(t, buf.String(), "HTTP 400 from <masked> & retry")

	buf.Reset()
	require.NoError(t, NewJSONWriter().Write(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestTextWriter(t *testing.T) {
	tests := []struct {
		name     string
		result   *Result
		contains []string
		excludes []string
	}{
		{
			name:     "отправка",
			result:   sendResult(),
			contains: []string{"send: success", "Алерт ERROR: отправлен в slack (webhook)", "Канал: #ops", "150мс", "trace_id: abcdef"},
		},
		{
			name: "INFO только в лог",
			result: &Result{Status: StatusSuccess, Command: "send", Data: &SendData{
				Provider: "lark", Method: "webhook", Level: "INFO", Channel: "#x",
			}},
			contains: []string{"Алерт INFO: записан только в локальный лог"},
			excludes: []string{"Канал"},
		},
		{
			name: "версия",
			result: &Result{Status: StatusSuccess, Command: "version", Data: &VersionData{
				Version: "1.4.0", Commit: "a1b2c3d", BuildDate: "2026-10-01",
			}},
			contains: []string{"Версия: 1.4.0 (commit a1b2c3d, собрано 2026-10-01)"},
		},
		{
			name:     "ошибка",
			result:   errorResult(),
			contains: []string{"send: error", "Error [ALERT.SEND_FAILED]: алерт не доставлен"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewTextWriter().Write(&buf, tt.result))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestTextWriter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "999мс", formatDuration(999))
	assert.Equal(t, "1.5с", formatDuration(1500))
	assert.Equal(t, "2м 5с", formatDuration(125000))
}

func TestNewWriter(t *testing.T) {
	_, isJSON := NewWriter("JSON").(*JSONWriter)
	assert.True(t, isJSON)
	_, isText := NewWriter("yaml").(*TextWriter)
	assert.True(t, isText, "неизвестный формат: текст")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Json ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriter_Stdout(t *testing.T) {
	out := testutil.CaptureStdout(t, func() {
		_ = NewWriter(FormatText).Write(os.Stdout, &Result{Status: StatusSuccess, Command: "version"})
	})
	assert.Equal(t, "version: success\n", out)
}
