package provider

import (
	"strings"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
)

// Style: особенности разметки провайдера.
type Style struct {
	// Bold: маркер жирного текста.
	Bold string
	// DefaultFileName: подпись блока вложения без FileName.
	DefaultFileName string
}

var (
	// SlackStyle: разметка Slack mrkdwn.
	SlackStyle = Style{Bold: "*", DefaultFileName: "attachment.txt"}
	// LarkStyle: разметка Lark.
	LarkStyle = Style{Bold: "**", DefaultFileName: "Trace Logs"}
)

// Format собирает текст сообщения в фиксированном порядке:
// заголовок [service - env], текст, блок с содержимым вложения, ссылка на вложение.
//
//	*[billing - production]*
//	disk full
//
//	*trace.log:*
//	```
//	...
//	```
//
//	*Attachment:* https://...
//
// Функция чистая: одинаковые аргументы дают одинаковый результат.
func Format(message string, att *alert.Attachment, serviceName, environment string, style Style) string {
	var b strings.Builder
	bold := style.Bold

	switch {
	case serviceName != "" && environment != "":
		b.WriteString(bold + "[" + serviceName + " - " + environment + "]" + bold + "\n")
	case serviceName != "":
		b.WriteString(bold + "[" + serviceName + "]" + bold + "\n")
	case environment != "":
		b.WriteString(bold + "[" + environment + "]" + bold + "\n")
	}

	b.WriteString(message)

	if att == nil {
		return b.String()
	}

	if att.Content != "" {
		name := att.FileName
		if name == "" {
			name = style.DefaultFileName
		}
		b.WriteString("\n\n" + bold + name + ":" + bold + "\n```\n" + att.Content + "\n```")
	}
	if att.URL != "" {
		b.WriteString("\n\n" + bold + "Attachment:" + bold + " " + att.URL)
	}

	return b.String()
}
