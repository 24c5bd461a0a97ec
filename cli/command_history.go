/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"fmt"
	"strings"

	"github.com/cheney-yan/ai-shell/config"
	"github.com/cheney-yan/ai-shell/models"
)

// CommandHistoryBuffer é um anel limitado de execuções recentes, do mais novo
// para o mais antigo, formatado como bloco de contexto compacto para o modelo.
// Vive pela duração de uma sessão; acessado apenas pelo fluxo interativo, sem
// escritores concorrentes.
type CommandHistoryBuffer struct {
	capacity   int
	entries    []models.CommandResult // índice 0 = mais recente
	lineBudget int
	headLines  int
	tailLines  int
}

// NewCommandHistoryBuffer cria o buffer com a capacidade dada (<=0 usa o
// padrão).
func NewCommandHistoryBuffer(capacity int) *CommandHistoryBuffer {
	if capacity <= 0 {
		capacity = config.DefaultHistoryCapacity
	}
	return &CommandHistoryBuffer{
		capacity:   capacity,
		lineBudget: config.DefaultOutputLineBudget,
		headLines:  config.DefaultOutputHeadLines,
		tailLines:  config.DefaultOutputTailLines,
	}
}

// Record insere o resultado na frente, expulsando o mais antigo quando o
// buffer está cheio.
func (b *CommandHistoryBuffer) Record(result models.CommandResult) {
	b.entries = append([]models.CommandResult{result}, b.entries...)
	if len(b.entries) > b.capacity {
		b.entries = b.entries[:b.capacity]
	}
}

// Snapshot retorna uma cópia das entradas atuais, da mais recente para a mais
// antiga.
func (b *CommandHistoryBuffer) Snapshot() []models.CommandResult {
	out := make([]models.CommandResult, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len informa quantas entradas o buffer guarda.
func (b *CommandHistoryBuffer) Len() int {
	return len(b.entries)
}

// Clear descarta todas as entradas.
func (b *CommandHistoryBuffer) Clear() {
	b.entries = nil
}

// Format renderiza as entradas da mais recente para a mais antiga, com rótulo
// numérico (maior = mais recente), indicador de sucesso/falha, o comando, o
// código de saída e as saídas truncadas quando não vazias.
func (b *CommandHistoryBuffer) Format() string {
	if len(b.entries) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, entry := range b.entries {
		label := len(b.entries) - i
		indicator := "✓"
		if !entry.Succeeded() {
			indicator = "✗"
		}

		fmt.Fprintf(&sb, "[%d] %s %s\n", label, indicator, entry.Command)
		fmt.Fprintf(&sb, "    Exit code: %d\n", entry.ExitCode)

		if strings.TrimSpace(entry.Stdout) != "" {
			sb.WriteString("    stdout:\n")
			writeIndented(&sb, b.truncateOutput(entry.Stdout))
		}
		if strings.TrimSpace(entry.Stderr) != "" {
			sb.WriteString("    stderr:\n")
			writeIndented(&sb, b.truncateOutput(entry.Stderr))
		}
	}
	return sb.String()
}

// truncateOutput limita saídas longas preservando contexto nas duas pontas:
// linhas iniciais, marcador de elisão com a contagem omitida e linhas finais.
func (b *CommandHistoryBuffer) truncateOutput(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) <= b.lineBudget {
		return lines
	}

	omitted := len(lines) - b.headLines - b.tailLines
	out := make([]string, 0, b.headLines+b.tailLines+1)
	out = append(out, lines[:b.headLines]...)
	out = append(out, fmt.Sprintf("... (%d lines omitted) ...", omitted))
	out = append(out, lines[len(lines)-b.tailLines:]...)
	return out
}

func writeIndented(sb *strings.Builder, lines []string) {
	for _, line := range lines {
		sb.WriteString("      ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
