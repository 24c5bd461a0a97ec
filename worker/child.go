/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/config"
	"github.com/cheney-yan/ai-shell/llm"
)

// IsWorkerProcess indica se o processo atual foi criado em modo worker.
func IsWorkerProcess() bool {
	return os.Getenv(EnvWorkerMode) != ""
}

// Run executa o loop do worker de geração: sinaliza prontidão, atende uma
// requisição por vez e relata chunk/done/error pelo stdout. Falhas de rede
// são capturadas e relatadas como erro estruturado, nunca derrubam o worker.
func Run(logger *zap.Logger) error {
	client := llm.NewStreamClient(logger, config.DefaultMaxAttempts, config.DefaultInitialBackoff)

	var mu sync.Mutex // serializa as escritas no stdout
	enc := json.NewEncoder(os.Stdout)
	send := func(msg Message) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(msg); err != nil {
			logger.Error("Falha ao escrever mensagem para o supervisor", zap.Error(err))
		}
	}

	send(Message{Type: TypeReady})
	logger.Debug("Worker de geração pronto")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("Requisição inválida do supervisor", zap.Error(err))
			continue
		}
		if req.Type != TypeGenerate {
			continue
		}

		handleGenerate(client, req, send, logger)
	}

	return scanner.Err()
}

// handleGenerate atende uma única requisição: zero ou mais chunk seguidos de
// exatamente um done ou error.
func handleGenerate(client *llm.StreamClient, req Request, send func(Message), logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			send(Message{Type: TypeError, ID: req.ID, Error: &ErrorInfo{
				Message: fmt.Sprintf("pânico no worker: %v", r),
				Name:    "PANIC",
				Stack:   string(debug.Stack()),
			}})
		}
	}()

	logger.Debug("Atendendo requisição de geração", zap.String("id", req.ID), zap.String("model", req.Model))

	err := client.StreamCompletion(context.Background(), llm.Params{
		Key:      req.Key,
		Model:    req.Model,
		Endpoint: req.APIEndpoint,
		Number:   req.Number,
		Prompt:   req.Prompt,
		Messages: req.Messages,
	}, func(chunk string) error {
		send(Message{Type: TypeChunk, ID: req.ID, Data: chunk})
		return nil
	})

	if err != nil {
		send(Message{Type: TypeError, ID: req.ID, Error: infoFromError(err)})
		return
	}
	send(Message{Type: TypeDone, ID: req.ID})
}

// infoFromError serializa a falha preservando a classificação de erros
// conhecidos.
func infoFromError(err error) *ErrorInfo {
	var known *llm.KnownError
	if errors.As(err, &known) {
		return &ErrorInfo{
			Message: known.Error(),
			Name:    known.Name,
		}
	}
	return &ErrorInfo{Message: err.Error()}
}
