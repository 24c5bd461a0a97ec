/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package utils

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// clipboardCandidates lista as ferramentas de clipboard por plataforma, em
// ordem de preferência.
func clipboardCandidates() [][]string {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "windows":
		return [][]string{{"clip"}}
	default:
		return [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
}

// CopyToClipboard copia o texto para a área de transferência usando a primeira
// ferramenta disponível no sistema. Melhor esforço: retorna erro se nenhuma existir.
func CopyToClipboard(text string) error {
	for _, candidate := range clipboardCandidates() {
		path, err := exec.LookPath(candidate[0])
		if err != nil {
			continue
		}
		cmd := exec.Command(path, candidate[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("falha ao copiar com %s: %w", candidate[0], err)
		}
		return nil
	}
	return fmt.Errorf("nenhuma ferramenta de clipboard encontrada")
}
