// Package urlutil маскирует URL и секреты перед записью в лог или в ошибку.
package urlutil

import "net/url"

// MaskURL маскирует URL для безопасного логирования.
// Скрывает path и query параметры, которые могут содержать токены или credentials.
// Пример: "https://hooks.slack.com/services/XXX/YYY/ZZZ" → "https://hooks.slack.com/***"
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}

// visibleSecretPrefix: сколько символов секрета остаётся видимым.
// Префикс токена (xoxb-, t-) помогает понять, какой токен использован.
const visibleSecretPrefix = 4

// MaskSecret оставляет первые символы токена и заменяет остальное на ***.
// Короткие секреты скрываются полностью.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= visibleSecretPrefix*2 {
		return "***"
	}
	return string(runes[:visibleSecretPrefix]) + "***"
}
