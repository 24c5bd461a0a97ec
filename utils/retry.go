/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// APIError é um erro estruturado para respostas HTTP com status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status %d - %s", e.StatusCode, e.Message)
}

// Retry executa uma função com backoff exponencial para erros temporários.
// - maxAttempts: número máximo de tentativas.
// - initialBackoff: tempo inicial de espera entre tentativas.
// - fn: função a executar, que recebe ctx e retorna um resultado genérico T e erro.
func Retry[T any](ctx context.Context, logger *zap.Logger, maxAttempts int, initialBackoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			logger.Debug("Requisição bem-sucedida", zap.Int("attempt", attempt))
			return res, nil
		}

		// Apenas retry para erros temporários (timeout, 429, 5xx)
		if IsTemporaryError(err) && attempt < maxAttempts {
			logger.Warn("Erro temporário detectado, retentando",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err),
				zap.Duration("backoff", backoff))

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			backoff *= 2
			continue
		}

		logger.Error("Erro permanente na requisição, abortando",
			zap.Int("attempt", attempt),
			zap.Error(err))
		return zero, err
	}

	errMsg := fmt.Errorf("falha após %d tentativas", maxAttempts)
	logger.Error("Máximo de tentativas excedido", zap.Error(errMsg))
	return zero, errMsg
}

// IsTemporaryError verifica se o erro é temporário e pode ser retryado.
// Desembrulha erros aninhados e checa APIError com status 429 ou 5xx, além de timeouts.
func IsTemporaryError(err error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return true
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.StatusCode == 429 || (apiErr.StatusCode >= 500 && apiErr.StatusCode < 600)
		}
		err = errors.Unwrap(err)
	}
	return false
}
