/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package utils

import (
	"regexp"
	"strings"
)

// Padrões de credenciais conhecidos, aplicados em ordem.
// Os mais específicos vêm primeiro para não serem engolidos pelos genéricos.
var sensitivePatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-ant-[A-Za-z0-9_\-]{8,}`), "sk-ant-[REDACTED]"},
	{regexp.MustCompile(`sk-[A-Za-z0-9_\-]{8,}`), "sk-[REDACTED]"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{30,}`), "[REDACTED_GOOGLE_API_KEY]"},
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer [REDACTED]"},
	{regexp.MustCompile(`"(access_token|refresh_token|client_secret|api_key|apikey|password)"\s*:\s*"[^"]*"`), `"$1":"[REDACTED]"`},
	{regexp.MustCompile(`(?m)([A-Z0-9_]*(?:KEY|TOKEN|SECRET|PASSWORD)[A-Z0-9_]*)=\S+`), "$1=[REDACTED]"},
}

// SanitizeSensitiveText mascara credenciais e tokens em texto arbitrário antes
// dele ser logado ou incluído em mensagens de erro visíveis ao usuário.
func SanitizeSensitiveText(text string) string {
	for _, p := range sensitivePatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}

// isSensitiveEnvKey indica se o nome de uma variável de ambiente sugere credencial.
func isSensitiveEnvKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range []string{"KEY", "TOKEN", "SECRET", "PASSWORD"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
