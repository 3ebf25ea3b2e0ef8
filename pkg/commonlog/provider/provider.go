// Package provider форматирует сообщения и доставляет их в Slack и Lark
// через webhook, произвольный HTTP endpoint или API с Bearer токеном.
package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Kargones/commonlog/internal/pkg/urlutil"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/commonlog/tokencache"
	"github.com/Kargones/commonlog/pkg/logging"
)

// DefaultTimeout: таймаут HTTP клиента по умолчанию.
const DefaultTimeout = 10 * time.Second

const tracerName = "github.com/Kargones/commonlog/pkg/commonlog/provider"

// Provider доставляет отформатированное сообщение в чат.
// cfg: снимок конфигурации для одного вызова; провайдер его не сохраняет.
type Provider interface {
	Name() alert.ProviderID
	Send(ctx context.Context, level alert.Level, message string, att *alert.Attachment, cfg alert.Config) error
}

// Endpoints: адреса API провайдеров. Переопределяются в тестах и для прокси-шлюзов.
type Endpoints struct {
	// SlackPostMessage: метод chat.postMessage.
	SlackPostMessage string
	// LarkOpenAPI: базовый адрес open-apis Lark без завершающего слэша.
	LarkOpenAPI string
}

// DefaultEndpoints возвращает публичные адреса Slack и Lark.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SlackPostMessage: "https://slack.com/api/chat.postMessage",
		LarkOpenAPI:      "https://open.larksuite.com/open-apis",
	}
}

type options struct {
	httpClient HTTPClient
	timeout    time.Duration
	proxyURL   string
	limiter    *rate.Limiter
	logger     logging.Logger
	cache      *tokencache.Cache
	endpoints  Endpoints
	tracer     trace.Tracer
}

// Option настраивает провайдера.
type Option func(*options)

// WithHTTPClient задаёт HTTP клиента (по умолчанию http.Client с DefaultTimeout).
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout задаёт таймаут HTTP клиента по умолчанию.
// Не действует вместе с WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithProxyURL направляет запросы через HTTP прокси.
// Не действует вместе с WithHTTPClient.
func WithProxyURL(proxy string) Option {
	return func(o *options) { o.proxyURL = proxy }
}

// WithRateLimit ограничивает частоту исходящих запросов (запросов в секунду).
// perSecond <= 0 отключает ограничение.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger задаёт логгер.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTokenCache задаёт кэш токенов Lark. По умолчанию используется кэш в памяти.
func WithTokenCache(c *tokencache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithEndpoints переопределяет адреса API.
func WithEndpoints(e Endpoints) Option {
	return func(o *options) { o.endpoints = e }
}

// WithTracer задаёт OpenTelemetry tracer. По умолчанию берётся глобальный.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New создаёт провайдера по идентификатору.
func New(id alert.ProviderID, opts ...Option) (Provider, error) {
	switch id {
	case alert.ProviderSlack:
		return NewSlack(opts...), nil
	case alert.ProviderLark:
		return NewLark(opts...), nil
	default:
		return nil, &alert.UnsupportedProviderError{Provider: id}
	}
}

// base содержит общую часть провайдеров.
type base struct {
	id        alert.ProviderID
	transport *transport
	logger    logging.Logger
	cache     *tokencache.Cache
	endpoints Endpoints
	tracer    trace.Tracer
}

func newBase(id alert.ProviderID, opts []Option) base {
	o := options{
		timeout:   DefaultTimeout,
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	logger := o.logger.With("provider", string(id))

	if o.httpClient == nil {
		o.httpClient = newHTTPClient(o.timeout, o.proxyURL, logger)
	}
	if o.cache == nil {
		o.cache = tokencache.New(tokencache.NewMemoryStore(), logger)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	return base{
		id: id,
		transport: &transport{
			client:  o.httpClient,
			limiter: o.limiter,
			logger:  logger,
		},
		logger:    logger,
		cache:     o.cache,
		endpoints: o.endpoints,
		tracer:    o.tracer,
	}
}

func newHTTPClient(timeout time.Duration, proxy string, logger logging.Logger) *http.Client {
	client := &http.Client{Timeout: timeout}
	if proxy == "" {
		return client
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		logger.Warn("некорректный proxy URL, запросы идут напрямую", "proxy", urlutil.MaskURL(proxy))
		return client
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = http.ProxyURL(u)
	client.Transport = tr
	return client
}

// Name возвращает идентификатор провайдера.
func (b *base) Name() alert.ProviderID {
	return b.id
}

// startSpan открывает span доставки.
func (b *base) startSpan(ctx context.Context, level alert.Level, cfg alert.Config) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, "commonlog.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("commonlog.provider", string(b.id)),
			attribute.String("commonlog.method", string(cfg.SendMethod)),
			attribute.String("commonlog.level", level.String()),
			attribute.String("commonlog.channel", cfg.Channel),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
