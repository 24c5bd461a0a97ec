/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cheney-yan/ai-shell/config"
	"github.com/cheney-yan/ai-shell/models"
	"github.com/cheney-yan/ai-shell/utils"
)

// Params descreve uma requisição de geração contra a API de chat completions.
// Prompt e Messages são mutuamente exclusivos: quando Messages está vazio, o
// Prompt vira uma única mensagem de usuário.
type Params struct {
	Key      string
	Model    string
	Endpoint string
	Number   int // quantidade de completions solicitadas
	Prompt   string
	Messages []models.Message
}

// StreamClient abre requisições de chat completions com stream=true e repassa
// cada bloco bruto do corpo da resposta, sem decodificar — a reconstrução do
// texto acontece do lado supervisor.
type StreamClient struct {
	logger      *zap.Logger
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
}

// NewStreamClient cria uma nova instância de StreamClient.
func NewStreamClient(logger *zap.Logger, maxAttempts int, backoff time.Duration) *StreamClient {
	return &StreamClient{
		logger:      logger,
		httpClient:  utils.NewHTTPClient(logger, 900*time.Second),
		limiter:     rate.NewLimiter(rate.Every(time.Second), 2),
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// StreamCompletion envia a requisição e entrega cada bloco lido do corpo ao
// sink, na ordem de chegada. Retorna depois que o corpo terminar ou no
// primeiro erro. Falhas de status HTTP viram KnownError classificado.
func (c *StreamClient) StreamCompletion(ctx context.Context, p Params, sink func(chunk string) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := c.buildPayload(p)
	if err != nil {
		return fmt.Errorf("erro ao preparar a requisição: %w", err)
	}

	// Retry cobre apenas o estabelecimento da conexão; um stream interrompido
	// no meio não é retomável.
	resp, err := utils.Retry(ctx, c.logger, c.maxAttempts, c.backoff, func(ctx context.Context) (*http.Response, error) {
		return c.sendRequest(ctx, p, payload)
	})
	if err != nil {
		return ClassifyError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if sinkErr := sink(string(buf[:n])); sinkErr != nil {
				return sinkErr
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("erro ao ler o stream da API: %w", readErr)
		}
	}
}

func (c *StreamClient) buildPayload(p Params) ([]byte, error) {
	messages := make([]map[string]string, 0, len(p.Messages)+1)
	for _, msg := range p.Messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		switch role {
		case "system", "user", "assistant":
			// válido
		default:
			role = "user"
		}
		messages = append(messages, map[string]string{
			"role":    role,
			"content": msg.Content,
		})
	}
	if len(messages) == 0 && strings.TrimSpace(p.Prompt) != "" {
		messages = append(messages, map[string]string{
			"role":    "user",
			"content": p.Prompt,
		})
	}

	number := p.Number
	if number <= 0 {
		number = config.DefaultCompletionCount
	}

	return json.Marshal(map[string]interface{}{
		"model":    p.Model,
		"messages": messages,
		"n":        number,
		"stream":   true,
	})
}

func (c *StreamClient) sendRequest(ctx context.Context, p Params, body []byte) (*http.Response, error) {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultAPIEndpoint
	}
	apiURL := strings.TrimSuffix(endpoint, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, utils.NewJSONReader(body))
	if err != nil {
		c.logger.Error("Erro ao criar a requisição", zap.Error(err))
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.Key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, &utils.APIError{
			StatusCode: resp.StatusCode,
			Message:    utils.SanitizeSensitiveText(string(bodyBytes)),
		}
	}

	return resp, nil
}
