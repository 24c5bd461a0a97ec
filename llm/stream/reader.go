/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package stream

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/i18n"
)

// Payload é um item da sequência assíncrona entregue pelo worker: um bloco
// bruto do stream, o fim normal ou uma falha terminal. Exatamente um item
// terminal (Done ou Err) encerra a sequência.
type Payload struct {
	Data string
	Done bool
	Err  error
}

// Options configura uma leitura cancelável.
type Options struct {
	// Patterns são os padrões de exclusão; o primeiro também detecta o início
	// do conteúdo real.
	Patterns []ExclusionPattern
	// AnalysisMode liga a posse exclusiva do SIGINT durante a leitura: a
	// interrupção resolve com o texto parcial, como sucesso.
	AnalysisMode bool
	// Keys é o ouvinte de teclas de parada. Nulo desabilita a parada por
	// teclado (usado nos testes e no modo análise).
	Keys *KeyListener
	// Interrupts coordena a posse do SIGINT no modo análise.
	Interrupts *InterruptController
}

// Reader dirige o Decoder contra a sequência de payloads de uma geração em
// andamento, com término antecipado por tecla ou por interrupção no modo
// análise. O resultado é entregue exatamente uma vez, qualquer que seja o
// caminho de término.
type Reader struct {
	logger    *zap.Logger
	writer    io.Writer
	cancelled bool
}

// NewReader cria um Reader que escreve os fragmentos decodificados em w.
func NewReader(w io.Writer, logger *zap.Logger) *Reader {
	return &Reader{logger: logger, writer: w}
}

// Cancelled informa se a última leitura terminou por tecla ou interrupção.
func (r *Reader) Cancelled() bool {
	return r.cancelled
}

// Read consome payloads até o término e retorna o texto acumulado. Parada por
// tecla e interrupção em modo análise são conclusões normais com texto
// parcial, não erros.
func (r *Reader) Read(ctx context.Context, payloads <-chan Payload, opts Options) (string, error) {
	dec := NewDecoder(opts.Patterns, r.logger)

	write := func(fragment string) {
		_, _ = io.WriteString(r.writer, fragment)
	}

	// Ouvinte transitório de teclas, apenas fora do modo análise.
	stopKeys := make(<-chan struct{})
	if !opts.AnalysisMode && opts.Keys != nil {
		var shutdown func()
		stopKeys, shutdown = opts.Keys.Listen()
		defer shutdown()
	}

	// Posse exclusiva do SIGINT no modo análise, com restauração garantida em
	// todo caminho de saída.
	var interrupted <-chan struct{}
	if opts.AnalysisMode && opts.Interrupts != nil {
		sigCh, release := opts.Interrupts.Acquire()
		done := make(chan struct{})
		defer func() {
			// Libera a goroutine de escuta mesmo quando a leitura termina sem
			// interrupção alguma.
			close(done)
			release()
		}()

		ch := make(chan struct{}, 1)
		go func() {
			select {
			case _, ok := <-sigCh:
				if ok {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
			case <-done:
			}
		}()
		interrupted = ch
	}

	for {
		select {
		case <-ctx.Done():
			return dec.Result(), ctx.Err()

		case <-stopKeys:
			// Parada cooperativa: efetiva na próxima fronteira de payload.
			r.logger.Debug("Parada solicitada por tecla")
			r.cancelled = true
			dec.Stop()

		case <-interrupted:
			// Interrupção durante análise: sucesso com texto parcial.
			r.logger.Debug("Análise interrompida pelo usuário")
			r.cancelled = true
			write("\n" + i18n.T("stream.stopped_by_user") + "\n")
			return dec.Result(), nil

		case p, ok := <-payloads:
			if !ok || p.Done {
				return dec.Result(), nil
			}
			if p.Err != nil {
				return dec.Result(), p.Err
			}
			if dec.Feed(p.Data, write) {
				return dec.Result(), nil
			}
		}
	}
}
