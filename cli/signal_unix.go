//go:build !windows

/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/cheney-yan/ai-shell/utils"
)

// watchWindowResize acompanha o SIGWINCH e mantém a largura do terminal
// atualizada para truncamento e renderização. Retorna a função de parada.
func (a *AiShell) watchWindowResize() func() {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-winch:
				if w, _, err := utils.GetTerminalSize(); err == nil {
					a.setWidth(w)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(winch)
		close(done)
	}
}
