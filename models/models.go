/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package models

import "time"

// Message representa uma mensagem trocada com o modelo de linguagem.
type Message struct {
	Role    string `json:"role"`    // O papel da mensagem: "system", "user" ou "assistant".
	Content string `json:"content"` // O conteúdo da mensagem.
}

// IsValid valida se a mensagem tem um papel e conteúdo válidos.
func (m *Message) IsValid() bool {
	validRoles := map[string]bool{
		"system":    true,
		"user":      true,
		"assistant": true,
	}
	return validRoles[m.Role] && m.Content != ""
}

// CommandResult representa um comando de shell executado. Imutável após a criação.
type CommandResult struct {
	Command    string    // Texto do comando executado
	ExitCode   int       // Código de saída do processo
	Stdout     string    // Saída padrão capturada
	Stderr     string    // Saída de erro capturada
	FinishedAt time.Time // Momento de conclusão
}

// Succeeded indica se o comando terminou com sucesso.
func (r CommandResult) Succeeded() bool {
	return r.ExitCode == 0
}
