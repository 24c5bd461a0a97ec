/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"fmt"
	"strings"

	"github.com/cheney-yan/ai-shell/models"
)

// generationSystemPrompt instrui o modelo a responder com um único comando
// dentro de um code fence — o fence é removido pelo decoder na emissão.
const generationSystemPrompt = `You are a command line expert. The user describes a task and you reply with
a single shell command that accomplishes it on the target environment: %s.

Rules:
- Reply with ONLY the command, wrapped in a markdown code block.
- Prefer a one-liner. Combine steps with && or pipes when needed.
- Never include explanations, comments or alternative commands.
- If the task is destructive, still produce the command; the user reviews it
  before running.`

const explanationSystemPrompt = `You are a command line expert. Explain concisely what the given shell command
does on %s, using a short markdown bullet list (one bullet per flag or step).%s`

const analysisSystemPrompt = `You are a command line expert helping to debug a failed shell command on %s.
Given the recent command history below (most recent first, with exit codes and
captured output), explain the most likely cause of the most recent failure and
suggest a corrected command.%s`

// languageDirective acrescenta a instrução de idioma quando configurado.
func languageDirective(language string) string {
	if strings.TrimSpace(language) == "" {
		return ""
	}
	return fmt.Sprintf("\nReply in %s.", language)
}

// BuildGenerationMessages monta a conversa para gerar um comando a partir de
// um pedido em linguagem natural, com o histórico recente como contexto.
func BuildGenerationMessages(request, osShell, historyBlock string) []models.Message {
	user := request
	if historyBlock != "" {
		user = fmt.Sprintf("Recent command history for context:\n%s\nTask: %s", historyBlock, request)
	}
	return []models.Message{
		{Role: "system", Content: fmt.Sprintf(generationSystemPrompt, osShell)},
		{Role: "user", Content: user},
	}
}

// BuildRevisionMessages monta a conversa para revisar um comando já gerado.
func BuildRevisionMessages(request, priorCommand, revision, osShell string) []models.Message {
	return []models.Message{
		{Role: "system", Content: fmt.Sprintf(generationSystemPrompt, osShell)},
		{Role: "user", Content: request},
		{Role: "assistant", Content: fmt.Sprintf("```\n%s\n```", priorCommand)},
		{Role: "user", Content: fmt.Sprintf("Revise the command: %s", revision)},
	}
}

// BuildExplanationMessages monta a conversa para explicar um comando.
func BuildExplanationMessages(command, osShell, language string) []models.Message {
	return []models.Message{
		{Role: "system", Content: fmt.Sprintf(explanationSystemPrompt, osShell, languageDirective(language))},
		{Role: "user", Content: command},
	}
}

// BuildAnalysisMessages monta a conversa de diagnóstico após uma falha,
// consumindo o bloco formatado do histórico.
func BuildAnalysisMessages(historyBlock, osShell, language string) []models.Message {
	return []models.Message{
		{Role: "system", Content: fmt.Sprintf(analysisSystemPrompt, osShell, languageDirective(language))},
		{Role: "user", Content: historyBlock},
	}
}
