package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/Kargones/commonlog/internal/pkg/urlutil"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/logging"
)

// HTTPClient определяет интерфейс HTTP клиента. *http.Client ему удовлетворяет;
// в тестах подставляется mock.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	// maxErrorBodySize: сколько байт тела ответа с ошибкой сохраняется для диагностики.
	maxErrorBodySize = 1024
	// maxAPIResponseSize: ограничение на тело успешного ответа API (токен, список чатов).
	maxAPIResponseSize = 1 << 20

	userAgent = "commonlog-go/1.0"
)

// call описывает один HTTP вызов провайдера.
type call struct {
	provider alert.ProviderID
	method   alert.SendMethod
	verb     string
	url      string
	bearer   string
	payload  any // nil для GET
	debug    bool
}

// transport выполняет HTTP вызовы и приводит неуспех к alert.TransportError.
// Успехом считается только HTTP 200.
type transport struct {
	client  HTTPClient
	limiter *rate.Limiter
	logger  logging.Logger
}

// do выполняет вызов и возвращает тело ответа при статусе 200.
func (t *transport) do(ctx context.Context, c call) ([]byte, error) {
	masked := urlutil.MaskURL(c.url)

	var body io.Reader
	if c.payload != nil {
		data, err := json.Marshal(c.payload)
		if err != nil {
			return nil, fmt.Errorf("сериализация payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, c.verb, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	if c.payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("User-Agent", userAgent)
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &alert.TransportError{Provider: c.provider, Method: c.method, Endpoint: masked, Err: err}
		}
	}

	if c.debug {
		args := []any{"method", c.method, "http_method", c.verb, "url", masked}
		if c.bearer != "" {
			args = append(args, "authorization", "Bearer "+urlutil.MaskSecret(c.bearer))
		}
		t.logger.Debug("отправка запроса провайдеру", args...)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &alert.TransportError{Provider: c.provider, Method: c.method, Endpoint: masked, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize)) //nolint:errcheck // best-effort diagnostics
		return nil, &alert.TransportError{
			Provider:   c.provider,
			Method:     c.method,
			Endpoint:   masked,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseSize))
	if err != nil {
		return nil, fmt.Errorf("чтение ответа %s: %w", masked, err)
	}
	if c.debug {
		t.logger.Debug("ответ провайдера получен", "url", masked, "bytes", len(data))
	}
	return data, nil
}
