/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/models"
	"github.com/cheney-yan/ai-shell/utils"
)

// CommandExecutor executa o comando gerado no shell do usuário, capturando
// saída e código de saída para alimentar o histórico.
type CommandExecutor struct {
	logger *zap.Logger
}

// NewCommandExecutor cria uma nova instância do executor.
func NewCommandExecutor(logger *zap.Logger) *CommandExecutor {
	return &CommandExecutor{logger: logger}
}

// Execute roda o comando via `$SHELL -c`, espelhando a saída no terminal e
// capturando stdout/stderr para o CommandResult. O erro retornado cobre
// apenas falhas de execução do processo; saída com código != 0 não é erro.
func (e *CommandExecutor) Execute(ctx context.Context, command string) (models.CommandResult, error) {
	shell := utils.GetUserShellPath()

	e.logger.Debug("Executando comando",
		zap.String("command", command),
		zap.String("shell", shell))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdin = os.Stdin
	cmd.Stdout = io.MultiWriter(os.Stdout, &stdout)
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	runErr := cmd.Run()

	result := models.CommandResult{
		Command:    command,
		Stdout:     utils.SanitizeSensitiveText(stdout.String()),
		Stderr:     utils.SanitizeSensitiveText(stderr.String()),
		FinishedAt: time.Now(),
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			runErr = nil // saída não-zero é um resultado, não uma falha de execução
		} else {
			result.ExitCode = -1
		}
	}

	e.logger.Debug("Comando executado",
		zap.String("command", command),
		zap.Int("exit_code", result.ExitCode))

	return result, runErr
}
