/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package llm

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/cheney-yan/ai-shell/utils"
)

// KnownError é um erro classificado, com mensagem de remediação pronta para o
// usuário final. Erros conhecidos não são retryados automaticamente.
type KnownError struct {
	Name    string // Identificador curto, ex: "ENOTFOUND", "RATE_LIMIT"
	Message string // Descrição do que falhou
	Hint    string // Orientação de remediação
}

func (e *KnownError) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Hint
}

// ClassifyError converte falhas de transporte e de API em KnownError quando o
// padrão é reconhecido; caso contrário devolve o erro original.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(err.Error(), "no such host") {
		return &KnownError{
			Name:    "ENOTFOUND",
			Message: "Não foi possível conectar à API (falha de DNS).",
			Hint:    "Verifique sua conexão com a internet e o endpoint configurado.",
		}
	}

	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return &KnownError{
				Name:    "RATE_LIMIT",
				Message: fmt.Sprintf("Limite de requisições excedido (HTTP 429): %s", apiErr.Message),
				Hint:    "Aguarde alguns instantes ou verifique a cota e o plano da sua chave de API.",
			}
		}
		return &KnownError{
			Name:    "API_ERROR",
			Message: fmt.Sprintf("A API retornou HTTP %d: %s", apiErr.StatusCode, apiErr.Message),
			Hint:    "Confira a chave de API e o modelo configurados.",
		}
	}

	return err
}
