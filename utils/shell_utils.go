/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package utils

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Variáveis para as funções que queremos mockar nos testes
var (
	osGetenv    = os.Getenv
	userCurrent = user.Current
	nowUnix     = func() int64 { return time.Now().Unix() }
)

// GetUserShell retorna o shell do usuário atual.
func GetUserShell() string {
	shell := osGetenv("SHELL")
	if shell == "" {
		return "sh"
	}
	return filepath.Base(shell)
}

// GetUserShellPath retorna o caminho completo do shell do usuário, com fallback.
func GetUserShellPath() string {
	shell := osGetenv("SHELL")
	if shell == "" {
		return "/bin/sh"
	}
	return shell
}

// DetectOSAndShell retorna uma descrição curta do ambiente de execução,
// usada na montagem do prompt para o modelo gerar comandos compatíveis.
func DetectOSAndShell() string {
	return fmt.Sprintf("%s (%s), shell %s", runtime.GOOS, runtime.GOARCH, GetUserShell())
}

// GetHomeDir retorna o diretório home do usuário atual.
func GetHomeDir() (string, error) {
	return os.UserHomeDir()
}

// ExpandPath expande o prefixo ~ para o diretório home do usuário.
func ExpandPath(path string) (string, error) {
	if path == "~" {
		return GetHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := GetHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("expansão de ~usuário não suportada: %s", path)
	}
	return path, nil
}

// GetShellHistoryFile retorna o caminho do arquivo de histórico do shell.
func GetShellHistoryFile() (string, error) {
	usr, err := userCurrent()
	if err != nil {
		return "", fmt.Errorf("não foi possível obter o usuário atual: %w", err)
	}

	shell := GetUserShell()
	var historyFile string

	switch shell {
	case "bash":
		historyFile = filepath.Join(usr.HomeDir, ".bash_history")
	case "zsh":
		historyFile = filepath.Join(usr.HomeDir, ".zsh_history")
	case "fish":
		historyFile = filepath.Join(usr.HomeDir, ".local", "share", "fish", "fish_history")
	default:
		return "", fmt.Errorf("shell não suportado ou não reconhecido: %s", shell)
	}

	return historyFile, nil
}

// AppendToShellHistory anexa um comando executado ao arquivo de histórico do
// shell do usuário. Fire-and-forget: falhas são reportadas mas não bloqueiam
// o fluxo interativo.
func AppendToShellHistory(command string) error {
	historyFile, err := GetShellHistoryFile()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	line := command
	if GetUserShell() == "zsh" {
		// zsh com EXTENDED_HISTORY espera o formato ": <epoch>:0;<comando>"
		line = fmt.Sprintf(": %d:0;%s", nowUnix(), command)
	}

	_, err = fmt.Fprintln(f, line)
	return err
}
