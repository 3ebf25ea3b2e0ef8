// Package ginalert содержит gin middleware, которые отправляют алерты
// через commonlog: паники обработчиков (ERROR) и ответы 5xx (WARN).
package ginalert

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
)

// RequestIDHeader: заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// alertedKey помечает запрос, по которому алерт уже отправлен.
const alertedKey = "commonlog_alerted"

// Sender: часть commonlog.Logger, нужная middleware.
type Sender interface {
	Send(ctx context.Context, level alert.Level, message string, att *alert.Attachment, trace string) error
}

// RequestID возвращает идентификатор запроса из заголовка или генерирует новый.
// Идентификатор дублируется в заголовке ответа.
func RequestID(c *gin.Context) string {
	if id, ok := c.Get(RequestIDHeader); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Header(RequestIDHeader, id)
	return id
}

// Recovery перехватывает панику обработчика, отправляет ERROR со стеком
// в качестве trace и отвечает 500.
func Recovery(s Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := RequestID(c)
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			msg := fmt.Sprintf("panic: %v\n%s %s (request_id=%s)", r, c.Request.Method, c.Request.URL.Path, reqID)
			// Ошибка доставки уже записана в лог фасадом.
			_ = s.Send(alertContext(c), alert.LevelError, msg, nil, string(debug.Stack()))
			c.Set(alertedKey, true)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

// ServerErrors отправляет WARN, если обработчик ответил статусом 5xx.
// Ошибки из c.Errors попадают во вложение.
func ServerErrors(s Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := RequestID(c)
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusInternalServerError || c.GetBool(alertedKey) {
			return
		}

		msg := fmt.Sprintf("HTTP %d: %s %s (request_id=%s)", status, c.Request.Method, c.Request.URL.Path, reqID)
		var att *alert.Attachment
		if len(c.Errors) > 0 {
			att = &alert.Attachment{Content: c.Errors.String(), FileName: "errors.txt"}
		}
		_ = s.Send(alertContext(c), alert.LevelWarn, msg, att, "")
		c.Set(alertedKey, true)
	}
}

// alertContext не отменяется вместе с запросом клиента.
func alertContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
