/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/llm"
	"github.com/cheney-yan/ai-shell/llm/stream"
)

// proc abstrai o subprocesso worker para permitir um processo falso nos testes.
type proc interface {
	// Send escreve uma requisição no stdin do worker.
	Send(req Request) error
	// Messages entrega as mensagens do worker na ordem de envio. O canal
	// fecha quando o processo termina.
	Messages() <-chan Message
	// Kill termina o processo imediatamente, sem handshake.
	Kill()
	// ExitCode bloqueia até o término e retorna o código de saída.
	ExitCode() int
}

// Handle é o recurso explicitamente possuído que gerencia o worker vivo:
// criação preguiçosa no primeiro uso, reuso entre requisições e teardown
// idempotente. Apenas uma geração pode estar em andamento por vez.
type Handle struct {
	logger       *zap.Logger
	readyTimeout time.Duration
	spawn        func(logger *zap.Logger) (proc, error)
	onRespawn    func()

	mu     sync.Mutex
	proc   proc
	busy   bool
	spawns int
}

// Option configura o Handle.
type Option func(*Handle)

// WithReadyTimeout ajusta o tempo máximo de espera pelo sinal de prontidão.
func WithReadyTimeout(d time.Duration) Option {
	return func(h *Handle) { h.readyTimeout = d }
}

// WithRespawnObserver registra um callback chamado sempre que um worker é
// recriado depois do primeiro.
func WithRespawnObserver(fn func()) Option {
	return func(h *Handle) { h.onRespawn = fn }
}

// withSpawner substitui a criação do subprocesso. Usado nos testes.
func withSpawner(fn func(logger *zap.Logger) (proc, error)) Option {
	return func(h *Handle) { h.spawn = fn }
}

// NewHandle cria o handle do worker. Nenhum processo é criado até a primeira
// requisição.
func NewHandle(logger *zap.Logger, opts ...Option) *Handle {
	h := &Handle{
		logger:       logger,
		readyTimeout: 10 * time.Second,
		spawn:        spawnSubprocess,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// acquire garante um worker vivo e pronto, criando um se necessário.
// Chamado com h.mu já adquirido.
func (h *Handle) acquire() (proc, error) {
	if h.proc != nil {
		return h.proc, nil
	}

	h.logger.Debug("Criando worker de geração")
	p, err := h.spawn(h.logger)
	if err != nil {
		return nil, fmt.Errorf("não foi possível criar o worker: %w", err)
	}

	// O worker emite ready uma única vez ao inicializar; sem o sinal dentro
	// do timeout, a criação é tratada como falha e o processo é morto.
	select {
	case msg, ok := <-p.Messages():
		if !ok || msg.Type != TypeReady {
			p.Kill()
			return nil, fmt.Errorf("worker terminou antes de sinalizar prontidão")
		}
	case <-time.After(h.readyTimeout):
		p.Kill()
		return nil, fmt.Errorf("worker não sinalizou prontidão em %s", h.readyTimeout)
	}

	h.proc = p
	h.spawns++
	if h.spawns > 1 && h.onRespawn != nil {
		h.onRespawn()
	}
	return p, nil
}

// Generate envia uma requisição ao worker e devolve a sequência de payloads
// resultante. A sequência termina com exatamente um item terminal: Done no
// sucesso, Err na falha. Uma segunda chamada antes do término da primeira é
// um erro de uso.
func (h *Handle) Generate(ctx context.Context, req Request) (<-chan stream.Payload, error) {
	h.mu.Lock()
	if h.busy {
		h.mu.Unlock()
		return nil, fmt.Errorf("já existe uma geração em andamento")
	}

	p, err := h.acquire()
	if err != nil {
		h.mu.Unlock()
		return nil, err
	}

	req.Type = TypeGenerate
	if err := p.Send(req); err != nil {
		// Falha de escrita indica worker morto; descarta para recriar no
		// próximo uso.
		h.dropLocked()
		h.mu.Unlock()
		return nil, fmt.Errorf("não foi possível enviar a requisição ao worker: %w", err)
	}

	h.busy = true
	h.mu.Unlock()

	out := make(chan stream.Payload)
	go h.pump(ctx, p, req.ID, out)
	return out, nil
}

// pump converte mensagens do worker em payloads até a mensagem terminal.
// Uma geração abandonada antes do terminal (cancelamento, timeout) descarta o
// processo: as mensagens restantes da requisição em voo nunca podem vazar para
// a próxima leitura.
func (h *Handle) pump(ctx context.Context, p proc, reqID string, out chan<- stream.Payload) {
	defer close(out)
	defer func() {
		h.mu.Lock()
		h.busy = false
		h.mu.Unlock()
	}()

	deliver := func(payload stream.Payload) bool {
		select {
		case out <- payload:
			return true
		case <-ctx.Done():
			return false
		}
	}

	abandon := func() {
		h.logger.Debug("Geração abandonada antes do terminal, descartando worker",
			zap.String("id", reqID))
		h.mu.Lock()
		h.dropLocked()
		h.mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			abandon()
			return
		case msg, ok := <-p.Messages():
			if !ok {
				// Worker morreu no meio do stream: sintetiza o erro com o
				// código de saída e descarta o processo.
				code := p.ExitCode()
				h.logger.Warn("Worker terminou inesperadamente", zap.Int("exit_code", code))
				h.mu.Lock()
				h.dropLocked()
				h.mu.Unlock()
				deliver(stream.Payload{Err: fmt.Errorf("worker terminou inesperadamente (código de saída %d)", code)})
				return
			}

			// Mensagens de outra requisição nunca alimentam esta leitura.
			if msg.ID != "" && msg.ID != reqID {
				h.logger.Debug("Mensagem de requisição alheia descartada",
					zap.String("id", msg.ID), zap.String("expected", reqID))
				continue
			}

			switch msg.Type {
			case TypeChunk:
				if !deliver(stream.Payload{Data: msg.Data}) {
					abandon()
					return
				}
			case TypeDone:
				deliver(stream.Payload{Done: true})
				return
			case TypeError:
				deliver(stream.Payload{Err: errorFromInfo(msg.Error)})
				return
			default:
				h.logger.Debug("Mensagem inesperada do worker ignorada", zap.String("type", msg.Type))
			}
		}
	}
}

// dropLocked descarta a referência ao processo (matando-o) para que o próximo
// uso recrie do zero. Chamado com h.mu adquirido.
func (h *Handle) dropLocked() {
	if h.proc != nil {
		h.proc.Kill()
		h.proc = nil
	}
}

// Shutdown termina o worker à força, sem handshake. Idempotente; o worker não
// guarda estado durável, então a morte imediata é aceitável.
func (h *Handle) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked()
}

// errorFromInfo reconstrói a falha estruturada relatada pelo worker.
func errorFromInfo(info *ErrorInfo) error {
	if info == nil {
		return fmt.Errorf("worker relatou erro sem detalhes")
	}
	if info.Name != "" {
		// A dica de remediação já vem embutida na mensagem serializada.
		return &llm.KnownError{Name: info.Name, Message: info.Message}
	}
	return fmt.Errorf("%s", info.Message)
}

// execProc é a implementação real de proc sobre exec.Cmd.
type execProc struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	msgs   chan Message
	logger *zap.Logger

	waitOnce sync.Once
	exitCode int
}

// spawnSubprocess reexecuta o próprio binário em modo worker, com pipes de
// stdin/stdout para o canal de mensagens.
func spawnSubprocess(logger *zap.Logger) (proc, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), EnvWorkerMode+"=1")
	cmd.Stderr = nil // o worker loga no próprio arquivo

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProc{
		cmd:    cmd,
		stdin:  stdin,
		msgs:   make(chan Message, 16),
		logger: logger,
	}
	go p.readLoop(stdout)
	return p, nil
}

// readLoop decodifica as mensagens JSON do stdout do worker e fecha o canal
// quando o processo termina.
func (p *execProc) readLoop(stdout io.Reader) {
	defer close(p.msgs)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			p.logger.Debug("Linha inválida do worker ignorada", zap.Error(err))
			continue
		}
		p.msgs <- msg
	}
}

func (p *execProc) Send(req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.stdin.Write(append(data, '\n'))
	return err
}

func (p *execProc) Messages() <-chan Message {
	return p.msgs
}

func (p *execProc) Kill() {
	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.wait()
}

func (p *execProc) ExitCode() int {
	p.wait()
	return p.exitCode
}

func (p *execProc) wait() {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			p.exitCode = 0
			return
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			p.exitCode = exitErr.ExitCode()
			return
		}
		p.exitCode = -1
	})
}
