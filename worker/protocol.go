/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */

// Package worker isola a chamada de rede de geração em um subprocesso,
// mantendo o loop interativo do processo supervisor sempre responsivo a
// teclas e sinais. A comunicação é por mensagens JSON, uma por linha, sobre
// os pipes de stdin/stdout do worker.
package worker

import "github.com/cheney-yan/ai-shell/models"

// Tipos de mensagem trocados entre supervisor e worker.
const (
	TypeReady    = "ready"
	TypeGenerate = "generate"
	TypeChunk    = "chunk"
	TypeDone     = "done"
	TypeError    = "error"
)

// EnvWorkerMode marca o processo filho como worker de geração.
const EnvWorkerMode = "AI_SHELL_WORKER"

// Request é a mensagem de geração enviada ao worker.
type Request struct {
	Type        string           `json:"type"`
	ID          string           `json:"id"`
	Prompt      string           `json:"prompt,omitempty"`
	Messages    []models.Message `json:"messages,omitempty"`
	Key         string           `json:"key"`
	Model       string           `json:"model"`
	APIEndpoint string           `json:"apiEndpoint"`
	Number      int              `json:"number"`
}

// ErrorInfo é a falha estruturada relatada pelo worker.
type ErrorInfo struct {
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Message é uma resposta do worker: ready (uma vez, na inicialização),
// zero ou mais chunk, e exatamente um done ou error terminal por requisição.
type Message struct {
	Type  string     `json:"type"`
	ID    string     `json:"id,omitempty"`
	Data  string     `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}
