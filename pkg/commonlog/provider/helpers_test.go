package provider

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/require"
)

// recordedRequest хранит снимок запроса. Тело читается сразу, чтобы его можно было проверить позже.
type recordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// mockHTTPClient реализует HTTPClient для тестирования.
type mockHTTPClient struct {
	mu       sync.Mutex
	DoFunc   func(req *http.Request) (*http.Response, error)
	Requests []recordedRequest
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.Requests = append(m.Requests, recordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	m.mu.Unlock()

	if m.DoFunc == nil {
		return textResponse(http.StatusOK, `{"ok":true}`), nil
	}
	return m.DoFunc(req)
}

func (m *mockHTTPClient) requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.Requests...)
}

// textResponse создаёт mock HTTP response с текстовым телом.
func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// jsonResponse создаёт mock HTTP response с JSON телом.
func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

// decodeJSON разбирает тело запроса в map.
func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m), "тело запроса должно быть JSON: %s", body)
	return m
}

// validateSchema проверяет тело запроса по JSON Schema из testdata.
func validateSchema(t *testing.T, schemaFile string, body []byte) {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(filepath.Join("testdata", schemaFile))
	require.NoError(t, err, "не удалось загрузить JSON Schema %s", schemaFile)

	var doc any
	require.NoError(t, json.Unmarshal(body, &doc))
	require.NoError(t, schema.Validate(doc), "payload не соответствует %s: %s", schemaFile, body)
}
