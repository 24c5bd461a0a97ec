/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package config

import "time"

// Valores padrão para configuração da aplicação
const (
	// Valores padrão para a API de geração (chat completions com streaming)
	DefaultAPIEndpoint     = "https://api.openai.com/v1"
	DefaultModel           = "gpt-4o-mini"
	DefaultCompletionCount = 1
	DefaultMaxAttempts     = 3
	DefaultInitialBackoff  = time.Second

	// Timeout de prontidão do worker de geração
	DefaultWorkerReadyTimeout = 10 * time.Second

	// Capacidade do buffer de histórico de comandos enviado como contexto
	DefaultHistoryCapacity = 5

	// Orçamento de truncamento de saída de comandos no histórico (linhas)
	DefaultOutputLineBudget = 20
	DefaultOutputHeadLines  = 10
	DefaultOutputTailLines  = 5

	// Configuração de log
	DefaultLogFile    = "ai-shell.log"
	DefaultMaxLogSize = 10 // MB

	// Porta do servidor de métricas (0 = desabilitado)
	DefaultMetricsPort = 0
)
