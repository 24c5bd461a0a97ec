/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package stream

import (
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// Teclas que pedem a parada de uma leitura em andamento.
const (
	keyEscape = 0x1b
	keyQuit   = 'q'
)

// KeyListener registra um ouvinte transitório de teclas durante uma leitura.
// Input e rawMode são injetáveis para os testes.
type KeyListener struct {
	Input   io.Reader
	RawMode func() (restore func(), err error)
}

// NewKeyListener cria um ouvinte sobre o stdin em modo raw.
func NewKeyListener() *KeyListener {
	return &KeyListener{
		Input: os.Stdin,
		RawMode: func() (func(), error) {
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return func() {}, nil
			}
			state, err := term.MakeRaw(fd)
			if err != nil {
				return nil, err
			}
			return func() { _ = term.Restore(fd, state) }, nil
		},
	}
}

// Listen começa a escutar teclas de parada ('q' e ESC). Retorna o canal que
// sinaliza a parada e a função de desligamento do ouvinte. O desligamento
// restaura o modo do terminal; a goroutine de leitura termina na próxima
// tecla ou no fechamento do stdin.
func (l *KeyListener) Listen() (<-chan struct{}, func()) {
	stopCh := make(chan struct{}, 1)

	restore, err := l.RawMode()
	if err != nil {
		// Sem modo raw não há escuta de tecla; a leitura segue sem parada
		// por teclado.
		return stopCh, func() {}
	}

	var done atomic.Bool
	go func() {
		buf := make([]byte, 1)
		for {
			n, readErr := l.Input.Read(buf)
			if done.Load() || readErr != nil {
				return
			}
			if n == 0 {
				continue
			}
			if buf[0] == keyQuit || buf[0] == keyEscape {
				select {
				case stopCh <- struct{}{}:
				default:
				}
				return
			}
		}
	}()

	shutdown := func() {
		done.Store(true)
		restore()
	}
	return stopCh, shutdown
}
