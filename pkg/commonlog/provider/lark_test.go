package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/commonlog/tokencache"
)

const testLarkBase = "https://lark.test/open-apis"

// larkAPI имитирует Lark open-apis: выдаёт токен, список чатов и принимает сообщения.
type larkAPI struct {
	tokenCalls   atomic.Int32
	messageCalls atomic.Int32
	chatsCalls   atomic.Int32

	tokenCode int
	expire    int
	chats     [][]map[string]string // страницы
}

func (a *larkAPI) do(req *http.Request) (*http.Response, error) {
	switch {
	case strings.HasSuffix(req.URL.Path, larkTenantTokenPath):
		a.tokenCalls.Add(1)
		if a.tokenCode != 0 {
			return jsonResponse(http.StatusOK, map[string]any{"code": a.tokenCode, "msg": "app secret invalid"}), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"code": 0, "msg": "ok", "tenant_access_token": "t-fresh", "expire": a.expire,
		}), nil
	case strings.HasSuffix(req.URL.Path, "/im/v1/chats"):
		n := int(a.chatsCalls.Add(1)) - 1
		items := []map[string]string{}
		if n < len(a.chats) {
			items = a.chats[n]
		}
		hasMore := n+1 < len(a.chats)
		return jsonResponse(http.StatusOK, map[string]any{
			"code": 0,
			"data": map[string]any{"items": items, "has_more": hasMore, "page_token": "p" + string(rune('1'+n))},
		}), nil
	case strings.HasSuffix(req.URL.Path, "/im/v1/messages"):
		a.messageCalls.Add(1)
		return jsonResponse(http.StatusOK, map[string]any{"code": 0}), nil
	}
	return textResponse(http.StatusNotFound, "unknown path"), nil
}

func newTestLark(t *testing.T, api *larkAPI, cache *tokencache.Cache) (*Lark, *mockHTTPClient) {
	t.Helper()
	mock := &mockHTTPClient{DoFunc: api.do}
	opts := []Option{
		WithHTTPClient(mock),
		WithEndpoints(Endpoints{SlackPostMessage: "https://slack.test/api", LarkOpenAPI: testLarkBase}),
	}
	if cache != nil {
		opts = append(opts, WithTokenCache(cache))
	}
	return NewLark(opts...), mock
}

func TestLark_Webhook(t *testing.T) {
	l, mock := newTestLark(t, &larkAPI{}, nil)
	cfg := alert.Config{
		SendMethod:  alert.MethodWebhook,
		WebhookURL:  "https://open.larksuite.com/open-apis/bot/v2/hook/abc",
		Channel:     "ignored-by-webhook",
		ServiceName: "svc",
		Environment: "prod",
	}

	require.NoError(t, l.Send(context.Background(), alert.LevelWarn, "hi", nil, cfg))

	reqs := mock.requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"msg_type":"text","content":{"text":"**[svc - prod]**\nhi"}}`, string(reqs[0].Body))
	validateSchema(t, "lark_text.schema.json", reqs[0].Body)
}

func TestLark_HTTP(t *testing.T) {
	l, mock := newTestLark(t, &larkAPI{}, nil)
	cfg := alert.Config{SendMethod: alert.MethodHTTP, HTTPURL: "http://relay/lark"}

	require.NoError(t, l.Send(context.Background(), alert.LevelError, "x", nil, cfg))

	reqs := mock.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "http://relay/lark", reqs[0].URL)
	validateSchema(t, "lark_text.schema.json", reqs[0].Body)
}

func TestLark_WebClient_StaticToken(t *testing.T) {
	api := &larkAPI{}
	l, mock := newTestLark(t, api, nil)
	cfg := alert.Config{SendMethod: alert.MethodWebClient, Token: "static", Channel: "oc_123"}

	require.NoError(t, l.Send(context.Background(), alert.LevelError, `say "hi"`, nil, cfg))

	assert.Zero(t, api.tokenCalls.Load(), "без app credentials токен не запрашивается")
	reqs := mock.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, testLarkBase+"/im/v1/messages?receive_id_type=chat_id", reqs[0].URL)
	assert.Equal(t, "Bearer static", reqs[0].Header.Get("Authorization"))
	validateSchema(t, "lark_message.schema.json", reqs[0].Body)

	body := decodeJSON(t, reqs[0].Body)
	assert.Equal(t, "oc_123", body["receive_id"])
	assert.Equal(t, "text", body["msg_type"])

	var content map[string]string
	require.NoError(t, json.Unmarshal([]byte(body["content"].(string)), &content))
	assert.Equal(t, `say "hi"`, content["text"], "content: корректно экранированная JSON-строка")
}

// TestLark_WebClient_ColdCache_Redis: промах кэша → запрос токена → отправка → одна запись в кэш с TTL expire-600.
func TestLark_WebClient_ColdCache_Redis(t *testing.T) {
	srv := miniredis.RunT(t)
	store := tokencache.NewRedisStore(tokencache.RedisConfig{Addr: srv.Addr()})
	defer store.Close()
	cache := tokencache.New(store, nil)

	api := &larkAPI{expire: 7200}
	l, mock := newTestLark(t, api, cache)
	cfg := alert.Config{
		SendMethod: alert.MethodWebClient,
		LarkToken:  alert.LarkCredentials{AppID: "cli_a", AppSecret: "sec"},
		Channel:    "oc_ops",
	}

	require.NoError(t, l.Send(context.Background(), alert.LevelError, "boom", nil, cfg))

	reqs := mock.requests()
	require.Len(t, reqs, 2)
	assert.True(t, strings.HasSuffix(reqs[0].URL, larkTenantTokenPath))
	assert.JSONEq(t, `{"app_id":"cli_a","app_secret":"sec"}`, string(reqs[0].Body))
	assert.Empty(t, reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "Bearer t-fresh", reqs[1].Header.Get("Authorization"))

	key := tokencache.TokenKey("cli_a", "sec")
	assert.Equal(t, []string{key}, srv.Keys())
	assert.Equal(t, 6600*time.Second, srv.TTL(key))

	// Повторная отправка берёт токен из кэша.
	require.NoError(t, l.Send(context.Background(), alert.LevelError, "boom", nil, cfg))
	assert.EqualValues(t, 1, api.tokenCalls.Load())
	assert.EqualValues(t, 2, api.messageCalls.Load())
}

func TestLark_WebClient_ShortExpire(t *testing.T) {
	store := tokencache.NewMemoryStore()
	api := &larkAPI{expire: 100}
	l, _ := newTestLark(t, api, tokencache.New(store, nil))
	cfg := alert.Config{SendMethod: alert.MethodWebClient, LarkToken: alert.LarkCredentials{AppID: "a", AppSecret: "s"}, Channel: "oc"}

	require.NoError(t, l.Send(context.Background(), alert.LevelWarn, "m", nil, cfg))

	ttl := store.TTL(tokencache.TokenKey("a", "s"))
	assert.InDelta(t, float64(60*time.Second), float64(ttl), float64(time.Second))
}

func TestLark_WebClient_TokenRejected(t *testing.T) {
	api := &larkAPI{tokenCode: 10003}
	l, _ := newTestLark(t, api, nil)
	cfg := alert.Config{SendMethod: alert.MethodWebClient, LarkToken: alert.LarkCredentials{AppID: "a", AppSecret: "bad"}, Channel: "oc"}

	err := l.Send(context.Background(), alert.LevelError, "m", nil, cfg)

	assert.ErrorIs(t, err, alert.ErrTokenFetch)
	assert.Contains(t, err.Error(), "app secret invalid")
	assert.Zero(t, api.messageCalls.Load())
}

func TestLark_WebClient_CacheUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	store := tokencache.NewRedisStore(tokencache.RedisConfig{Addr: srv.Addr(), DialTimeout: 200 * time.Millisecond})
	defer store.Close()
	srv.Close()

	api := &larkAPI{expire: 7200}
	l, mock := newTestLark(t, api, tokencache.New(store, nil))
	cfg := alert.Config{SendMethod: alert.MethodWebClient, LarkToken: alert.LarkCredentials{AppID: "a", AppSecret: "s"}, Channel: "oc"}

	err := l.Send(context.Background(), alert.LevelError, "m", nil, cfg)

	assert.ErrorIs(t, err, alert.ErrCacheUnavailable)
	assert.Empty(t, mock.requests(), "недоступный кэш не обходится запросом токена")
}

func TestLark_WebClient_ResolveChatID(t *testing.T) {
	store := tokencache.NewMemoryStore()
	cache := tokencache.New(store, nil)
	api := &larkAPI{chats: [][]map[string]string{
		{{"chat_id": "oc_1", "name": "general"}},
		{{"chat_id": "oc_2", "name": "alerts"}},
	}}
	l, mock := newTestLark(t, api, cache)
	cfg := alert.Config{
		SendMethod:        alert.MethodWebClient,
		Token:             "static",
		Channel:           "alerts",
		Environment:       "staging",
		ResolveLarkChatID: true,
	}

	require.NoError(t, l.Send(context.Background(), alert.LevelError, "m", nil, cfg))

	reqs := mock.requests()
	require.Len(t, reqs, 3)
	first, err := url.Parse(reqs[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "20", first.Query().Get("page_size"))
	assert.Empty(t, first.Query().Get("page_token"))
	second, err := url.Parse(reqs[1].URL)
	require.NoError(t, err)
	assert.Equal(t, "p1", second.Query().Get("page_token"))
	assert.Equal(t, "oc_2", decodeJSON(t, reqs[2].Body)["receive_id"])

	cached, ok, err := cache.GetChatID(context.Background(), "staging", "alerts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "oc_2", cached)
	assert.Zero(t, store.TTL(tokencache.ChatIDKey("staging", "alerts")), "chat_id хранится без истечения")

	// Второй вызов не обходит список чатов.
	require.NoError(t, l.Send(context.Background(), alert.LevelError, "m", nil, cfg))
	assert.EqualValues(t, 2, api.chatsCalls.Load())
}

func TestLark_WebClient_ChatNotFound(t *testing.T) {
	api := &larkAPI{chats: [][]map[string]string{{{"chat_id": "oc_1", "name": "general"}}}}
	l, _ := newTestLark(t, api, nil)
	cfg := alert.Config{SendMethod: alert.MethodWebClient, Token: "t", Channel: "missing", ResolveLarkChatID: true}

	err := l.Send(context.Background(), alert.LevelError, "m", nil, cfg)

	assert.ErrorIs(t, err, alert.ErrChatNotFound)
	assert.Zero(t, api.messageCalls.Load())
}

func TestLark_Non200(t *testing.T) {
	mock := &mockHTTPClient{DoFunc: func(*http.Request) (*http.Response, error) {
		return textResponse(http.StatusForbidden, `{"code":99991663}`), nil
	}}
	l := NewLark(WithHTTPClient(mock))

	err := l.Send(context.Background(), alert.LevelError, "m", nil,
		alert.Config{SendMethod: alert.MethodWebhook, WebhookURL: "https://open.larksuite.com/hook/x"})

	var te *alert.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
	assert.Equal(t, alert.ProviderLark, te.Provider)
}

func TestLark_UnsupportedMethod_NoRequest(t *testing.T) {
	l, mock := newTestLark(t, &larkAPI{}, nil)

	err := l.Send(context.Background(), alert.LevelError, "m", nil, alert.Config{SendMethod: "fax"})

	var ume *alert.UnsupportedMethodError
	require.ErrorAs(t, err, &ume)
	assert.Equal(t, alert.SendMethod("fax"), ume.Method)
	assert.Empty(t, mock.requests())
}

func TestLark_RateLimit(t *testing.T) {
	mock := &mockHTTPClient{}
	l := NewLark(WithHTTPClient(mock), WithRateLimit(1000, 1))
	cfg := alert.Config{SendMethod: alert.MethodHTTP, HTTPURL: "http://relay/x"}

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Send(context.Background(), alert.LevelWarn, "m", nil, cfg))
	}
	assert.Len(t, mock.requests(), 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l = NewLark(WithHTTPClient(mock), WithRateLimit(0.001, 1))
	require.NoError(t, l.Send(context.Background(), alert.LevelWarn, "m", nil, cfg))
	err := l.Send(ctx, alert.LevelWarn, "m", nil, cfg)
	assert.ErrorIs(t, err, alert.ErrTransport, "отменённый контекст при ожидании лимитера")
}
