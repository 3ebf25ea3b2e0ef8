package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
)

const (
	larkTenantTokenPath = "/auth/v3/tenant_access_token/internal"
	larkMessagesPath    = "/im/v1/messages?receive_id_type=chat_id"
	larkChatsPath       = "/im/v1/chats"

	larkChatsPageSize = 20
	// larkMaxChatPages ограничивает обход списка чатов, если API бесконечно отдаёт has_more.
	larkMaxChatPages = 50
)

// Lark доставляет сообщения в Lark.
type Lark struct {
	base
}

// larkText: содержимое текстового сообщения.
type larkText struct {
	Text string `json:"text"`
}

// larkTextPayload: тело запроса для webhook и http.
type larkTextPayload struct {
	MsgType string   `json:"msg_type"`
	Content larkText `json:"content"`
}

// larkMessagePayload: тело запроса im/v1/messages.
// Content: JSON-строка вида {"text":"..."}, как требует API.
type larkMessagePayload struct {
	ReceiveID string `json:"receive_id"`
	MsgType   string `json:"msg_type"`
	Content   string `json:"content"`
}

type larkTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type larkTokenResponse struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Token  string `json:"tenant_access_token"`
	Expire int    `json:"expire"`
}

type larkChatsResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Items []struct {
			ChatID string `json:"chat_id"`
			Name   string `json:"name"`
		} `json:"items"`
		PageToken string `json:"page_token"`
		HasMore   bool   `json:"has_more"`
	} `json:"data"`
}

// NewLark создаёт провайдера Lark.
func NewLark(opts ...Option) *Lark {
	return &Lark{base: newBase(alert.ProviderLark, opts)}
}

// Send форматирует сообщение и отправляет его методом cfg.SendMethod.
// Поле code в ответе на отправку сообщения не проверяется: успех определяется статусом HTTP 200.
func (l *Lark) Send(ctx context.Context, level alert.Level, message string, att *alert.Attachment, cfg alert.Config) (err error) {
	ctx, span := l.startSpan(ctx, level, cfg)
	defer func() { endSpan(span, err) }()

	text := Format(message, att, cfg.ServiceName, cfg.Environment, LarkStyle)

	c := call{
		provider: alert.ProviderLark,
		method:   cfg.SendMethod,
		verb:     http.MethodPost,
		debug:    cfg.Debug,
	}

	switch cfg.SendMethod {
	case alert.MethodWebhook:
		c.url = cfg.WebhookURL
		c.payload = larkTextPayload{MsgType: "text", Content: larkText{Text: text}}
	case alert.MethodHTTP:
		c.url = cfg.HTTPURL
		c.payload = larkTextPayload{MsgType: "text", Content: larkText{Text: text}}
	case alert.MethodWebClient:
		if err := l.prepareWebClient(ctx, &c, text, cfg); err != nil {
			return err
		}
	default:
		return &alert.UnsupportedMethodError{Provider: alert.ProviderLark, Method: cfg.SendMethod}
	}

	if _, err := l.transport.do(ctx, c); err != nil {
		return err
	}

	if cfg.Debug {
		l.logger.Debug("сообщение доставлено в Lark", "channel", cfg.Channel, "method", cfg.SendMethod)
	}
	return nil
}

// prepareWebClient получает токен, при необходимости находит chat_id и собирает вызов im/v1/messages.
func (l *Lark) prepareWebClient(ctx context.Context, c *call, text string, cfg alert.Config) error {
	token, err := l.accessToken(ctx, cfg)
	if err != nil {
		return err
	}

	receiveID := cfg.Channel
	if cfg.ResolveLarkChatID {
		receiveID, err = l.chatID(ctx, token, cfg)
		if err != nil {
			return err
		}
	}

	content, err := json.Marshal(larkText{Text: text})
	if err != nil {
		return fmt.Errorf("сериализация content: %w", err)
	}

	c.url = l.endpoints.LarkOpenAPI + larkMessagesPath
	c.bearer = token
	c.payload = larkMessagePayload{ReceiveID: receiveID, MsgType: "text", Content: string(content)}
	return nil
}

// accessToken возвращает Bearer токен для webclient.
// Без учётных данных приложения используется cfg.Token. С ними токен берётся
// из кэша, а при промахе запрашивается у Lark и сохраняется в кэш.
func (l *Lark) accessToken(ctx context.Context, cfg alert.Config) (string, error) {
	if !cfg.LarkToken.IsSet() {
		return cfg.Token, nil
	}

	appID, appSecret := cfg.LarkToken.AppID, cfg.LarkToken.AppSecret
	token, ok, err := l.cache.GetToken(ctx, appID, appSecret)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	resp, err := l.fetchTenantToken(ctx, cfg)
	if err != nil {
		return "", err
	}
	if err := l.cache.PutToken(ctx, appID, appSecret, resp.Token, resp.Expire); err != nil {
		return "", err
	}

	l.logger.Info("получен tenant access token Lark", "app_id", appID, "expire_s", resp.Expire)
	return resp.Token, nil
}

func (l *Lark) fetchTenantToken(ctx context.Context, cfg alert.Config) (*larkTokenResponse, error) {
	data, err := l.transport.do(ctx, call{
		provider: alert.ProviderLark,
		method:   alert.MethodWebClient,
		verb:     http.MethodPost,
		url:      l.endpoints.LarkOpenAPI + larkTenantTokenPath,
		payload:  larkTokenRequest{AppID: cfg.LarkToken.AppID, AppSecret: cfg.LarkToken.AppSecret},
		debug:    cfg.Debug,
	})
	if err != nil {
		return nil, err
	}

	var resp larkTokenResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("разбор ответа tenant_access_token: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", alert.ErrTokenFetch, resp.Code, resp.Msg)
	}
	return &resp, nil
}

// chatID находит chat_id чата по имени канала. Результат кэшируется без срока истечения.
// Ошибка записи в кэш не прерывает отправку.
func (l *Lark) chatID(ctx context.Context, token string, cfg alert.Config) (string, error) {
	name := cfg.Channel

	cached, ok, err := l.cache.GetChatID(ctx, cfg.Environment, name)
	if err != nil {
		return "", err
	}
	if ok {
		return cached, nil
	}

	pageToken := ""
	for page := 0; page < larkMaxChatPages; page++ {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(larkChatsPageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		data, err := l.transport.do(ctx, call{
			provider: alert.ProviderLark,
			method:   alert.MethodWebClient,
			verb:     http.MethodGet,
			url:      l.endpoints.LarkOpenAPI + larkChatsPath + "?" + q.Encode(),
			bearer:   token,
			debug:    cfg.Debug,
		})
		if err != nil {
			return "", err
		}

		var resp larkChatsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return "", fmt.Errorf("разбор списка чатов: %w", err)
		}
		if resp.Code != 0 {
			return "", fmt.Errorf("lark chats API: code %d: %s", resp.Code, resp.Msg)
		}

		for _, item := range resp.Data.Items {
			if item.Name != name {
				continue
			}
			if err := l.cache.PutChatID(ctx, cfg.Environment, name, item.ChatID); err != nil {
				l.logger.Warn("не удалось закэшировать chat_id", "channel", name, "error", err.Error())
			}
			return item.ChatID, nil
		}

		if !resp.Data.HasMore || resp.Data.PageToken == "" {
			break
		}
		pageToken = resp.Data.PageToken
	}

	return "", fmt.Errorf("%w: %q", alert.ErrChatNotFound, name)
}
