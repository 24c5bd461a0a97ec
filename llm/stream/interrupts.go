/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package stream

import (
	"os"
	"os/signal"
	"sync"
)

// InterruptController coordena a posse do SIGINT dentro da sessão. O canal
// base é o dono padrão (o loop interativo); uma leitura em modo análise toma
// posse exclusiva temporária via Acquire.
type InterruptController struct {
	mu   sync.Mutex
	base chan os.Signal
}

// NewInterruptController cria o controlador. base pode ser nil quando a sessão
// não registra tratador próprio.
func NewInterruptController(base chan os.Signal) *InterruptController {
	return &InterruptController{base: base}
}

// Acquire suspende a entrega no canal base e devolve um canal exclusivo para
// SIGINT, junto com a função de liberação. A liberação é idempotente e
// restaura o comportamento anterior exatamente uma vez — garantida em todo
// caminho de saída da leitura (conclusão, parada ou erro).
func (c *InterruptController) Acquire() (<-chan os.Signal, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.base != nil {
		signal.Stop(c.base)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	var once sync.Once
	release := func() {
		once.Do(func() {
			signal.Stop(ch)
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.base != nil {
				signal.Notify(c.base, os.Interrupt)
			}
		})
	}

	return ch, release
}
