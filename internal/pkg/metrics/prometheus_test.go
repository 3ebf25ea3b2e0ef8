package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/commonlog/pkg/commonlog"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/logging"
)

// Collector подходит как получатель метрик фасада.
var _ commonlog.Recorder = Collector(nil)

func testConfig() Config {
	return Config{
		Enabled:        true,
		PushgatewayURL: "http://localhost:9091",
		JobName:        "test-job",
		Timeout:        10 * time.Second,
	}
}

func newTestCollector(t *testing.T) *PrometheusCollector {
	t.Helper()
	collector, err := NewPrometheusCollector(testConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	return collector
}

func gather(t *testing.T, c *PrometheusCollector) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func labelsOf(m *dto.Metric) map[string]string {
	labels := make(map[string]string)
	for _, l := range m.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	return labels
}

// TestPrometheusCollector_RecordDelivered проверяет запись успешной доставки.
func TestPrometheusCollector_RecordDelivered(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordDelivery(alert.ProviderSlack, alert.MethodWebhook, alert.LevelError, 300*time.Millisecond, nil)

	families := gather(t, collector)
	require.Contains(t, families, "commonlog_delivery_duration_seconds")
	require.Contains(t, families, "commonlog_delivered_total")
	assert.NotContains(t, families, "commonlog_delivery_failed_total", "вектор без наблюдений не экспортируется")

	metric := families["commonlog_delivered_total"].GetMetric()[0]
	assert.Equal(t, float64(1), metric.GetCounter().GetValue())
	assert.Equal(t, map[string]string{"provider": "slack", "method": "webhook", "level": "ERROR"}, labelsOf(metric))

	hist := families["commonlog_delivery_duration_seconds"].GetMetric()[0]
	assert.Equal(t, "delivered", labelsOf(hist)["status"])
	assert.Equal(t, uint64(1), hist.GetHistogram().GetSampleCount())
}

// TestPrometheusCollector_FailureReasons проверяет классификацию ошибок доставки.
func TestPrometheusCollector_FailureReasons(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&alert.TransportError{Provider: alert.ProviderLark, StatusCode: 500}, reasonTransport},
		{fmt.Errorf("%w: code 99991663", alert.ErrTokenFetch), reasonToken},
		{alert.ErrChatNotFound, reasonChat},
		{fmt.Errorf("%w: dial tcp", alert.ErrCacheUnavailable), reasonCache},
		{&alert.UnsupportedMethodError{Provider: alert.ProviderSlack, Method: "smtp"}, reasonUnsupported},
		{fmt.Errorf("%w: webhook url is required", alert.ErrConfiguration), reasonConfig},
		{context.DeadlineExceeded, reasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, failureReason(tt.err))
		})
	}
}

// TestPrometheusCollector_MultipleRecords проверяет счётчики по нескольким доставкам.
func TestPrometheusCollector_MultipleRecords(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordDelivery(alert.ProviderSlack, alert.MethodWebhook, alert.LevelWarn, time.Second, nil)
	collector.RecordDelivery(alert.ProviderSlack, alert.MethodWebhook, alert.LevelWarn, 2*time.Second, nil)
	collector.RecordDelivery(alert.ProviderLark, alert.MethodWebClient, alert.LevelError, 3*time.Second,
		&alert.TransportError{Provider: alert.ProviderLark, StatusCode: 502})

	families := gather(t, collector)

	var delivered, failed float64
	for _, m := range families["commonlog_delivered_total"].GetMetric() {
		delivered += m.GetCounter().GetValue()
	}
	for _, m := range families["commonlog_delivery_failed_total"].GetMetric() {
		failed += m.GetCounter().GetValue()
		assert.Equal(t, "transport", labelsOf(m)["reason"])
		assert.Equal(t, "lark", labelsOf(m)["provider"])
	}
	assert.Equal(t, float64(2), delivered, "должно быть 2 успешных доставки")
	assert.Equal(t, float64(1), failed, "должна быть 1 ошибка")

	var samples uint64
	for _, m := range families["commonlog_delivery_duration_seconds"].GetMetric() {
		samples += m.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, uint64(3), samples)
}

// TestPrometheusCollector_Push проверяет отправку метрик.
func TestPrometheusCollector_Push(t *testing.T) {
	var receivedMethod string
	var receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := testConfig()
	config.PushgatewayURL = server.URL
	config.JobName = "commonlog"
	config.InstanceLabel = "ci-runner-1"
	config.Service = "billing"

	collector, err := NewPrometheusCollector(config, logging.NewNopLogger())
	require.NoError(t, err)
	collector.RecordDelivery(alert.ProviderSlack, alert.MethodWebhook, alert.LevelError, time.Second, nil)

	err = collector.Push(context.Background())
	assert.NoError(t, err)

	// Pushgateway принимает push через PUT.
	assert.Equal(t, http.MethodPut, receivedMethod)
	assert.Contains(t, receivedPath, "/metrics/job/commonlog")
	assert.Contains(t, receivedPath, "/instance/ci-runner-1")
	assert.Contains(t, receivedPath, "/service/billing")
}

// TestPrometheusCollector_PushError проверяет, что ошибка Pushgateway не возвращается.
func TestPrometheusCollector_PushError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := testConfig()
	config.PushgatewayURL = server.URL

	collector, err := NewPrometheusCollector(config, logging.NewNopLogger())
	require.NoError(t, err)

	err = collector.Push(context.Background())
	assert.NoError(t, err, "Push должен возвращать nil даже при ошибке")
}

// TestPrometheusCollector_ContextCancellation проверяет отмену контекста.
func TestPrometheusCollector_ContextCancellation(t *testing.T) {
	collector := newTestCollector(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, collector.Push(ctx))
}

// TestPrometheusCollector_PushWithoutURL проверяет push без URL.
func TestPrometheusCollector_PushWithoutURL(t *testing.T) {
	collector := newTestCollector(t)
	collector.config.PushgatewayURL = ""

	assert.NoError(t, collector.Push(context.Background()))
}

// TestPrometheusCollector_InstanceLabel проверяет выбор instance label.
func TestPrometheusCollector_InstanceLabel(t *testing.T) {
	t.Run("with custom instance label", func(t *testing.T) {
		config := testConfig()
		config.InstanceLabel = "custom-instance"

		collector, err := NewPrometheusCollector(config, logging.NewNopLogger())
		require.NoError(t, err)
		assert.Equal(t, "custom-instance", collector.instance)
	})

	t.Run("without instance label uses hostname", func(t *testing.T) {
		collector := newTestCollector(t)
		assert.NotEmpty(t, collector.instance)
	})
}

// TestMetricsConfig_Validate проверяет валидацию конфигурации.
func TestMetricsConfig_Validate(t *testing.T) {
	withConfig := func(modify func(*Config)) Config {
		c := testConfig()
		modify(&c)
		return c
	}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"valid config", testConfig(), nil},
		{"disabled config is always valid", Config{Enabled: false}, nil},
		{"missing pushgateway URL", withConfig(func(c *Config) { c.PushgatewayURL = "" }), ErrPushgatewayURLRequired},
		{"missing job name", withConfig(func(c *Config) { c.JobName = "" }), ErrJobNameRequired},
		{"zero timeout", withConfig(func(c *Config) { c.Timeout = 0 }), ErrInvalidTimeout},
		{"negative timeout", withConfig(func(c *Config) { c.Timeout = -5 * time.Second }), ErrInvalidTimeout},
		{"no scheme", withConfig(func(c *Config) { c.PushgatewayURL = "localhost:9091" }), ErrPushgatewayURLInvalid},
		{"no host", withConfig(func(c *Config) { c.PushgatewayURL = "http://" }), ErrPushgatewayURLInvalid},
		{"all problems reported", withConfig(func(c *Config) {
			c.JobName = ""
			c.Timeout = 0
		}), ErrJobNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestNewCollector_Factory проверяет factory функцию.
func TestNewCollector_Factory(t *testing.T) {
	logger := logging.NewNopLogger()

	t.Run("disabled returns NopCollector", func(t *testing.T) {
		collector, err := NewCollector(Config{Enabled: false}, logger)
		require.NoError(t, err)

		_, isNop := collector.(*NopCollector)
		assert.True(t, isNop)

		collector.RecordDelivery(alert.ProviderSlack, alert.MethodWebhook, alert.LevelError, time.Second, nil)
		assert.NoError(t, collector.Push(context.Background()))
	})

	t.Run("enabled returns PrometheusCollector", func(t *testing.T) {
		collector, err := NewCollector(testConfig(), logger)
		require.NoError(t, err)

		_, isProm := collector.(*PrometheusCollector)
		assert.True(t, isProm)
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		config := testConfig()
		config.PushgatewayURL = ""

		_, err := NewCollector(config, logger)
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "commonlog", cfg.JobName)
	assert.NoError(t, cfg.Validate())
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"короткое значение: без изменений", "webclient", "webclient"},
		{"пустая строка: без изменений", "", ""},
		{"ровно 128 символов: без изменений", strings.Repeat("a", maxLabelLength), strings.Repeat("a", maxLabelLength)},
		{"длинное значение: обрезается до 128", strings.Repeat("x", 256), strings.Repeat("x", maxLabelLength)},
		{"кириллица: обрезка по рунам, не по байтам", strings.Repeat("Б", 200), strings.Repeat("Б", maxLabelLength)},
		{"контрольные символы заменяются на underscore", "lark\nwith\rnewlines\x00null", "lark_with_newlines_null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeLabel(tt.input))
		})
	}
}
