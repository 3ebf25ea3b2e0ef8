package alert

// SendMethod определяет транспорт доставки сообщения провайдеру.
type SendMethod string

const (
	// MethodWebhook: POST на входящий webhook URL.
	MethodWebhook SendMethod = "webhook"
	// MethodHTTP: POST на произвольный HTTP endpoint.
	MethodHTTP SendMethod = "http"
	// MethodWebClient: вызов API провайдера с Bearer токеном.
	MethodWebClient SendMethod = "webclient"
)

// ProviderID идентифицирует чат-провайдера.
type ProviderID string

const (
	// ProviderSlack: Slack.
	ProviderSlack ProviderID = "slack"
	// ProviderLark: Lark (Feishu).
	ProviderLark ProviderID = "lark"
)
