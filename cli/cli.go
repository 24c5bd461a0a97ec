/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"time"

	gprompt "github.com/c-bata/go-prompt"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/config"
	"github.com/cheney-yan/ai-shell/i18n"
	"github.com/cheney-yan/ai-shell/llm"
	"github.com/cheney-yan/ai-shell/llm/stream"
	"github.com/cheney-yan/ai-shell/metrics"
	"github.com/cheney-yan/ai-shell/models"
	"github.com/cheney-yan/ai-shell/utils"
	"github.com/cheney-yan/ai-shell/worker"
)

// generationTimeout limita uma única requisição de geração.
const generationTimeout = 2 * time.Minute

// AiShell é a sessão interativa: lê pedidos em linguagem natural, gera
// comandos via worker isolado, executa, registra no histórico e dispara a
// análise automática de falhas.
type AiShell struct {
	logger    *zap.Logger
	cfg       *config.ConfigManager
	handle    *worker.Handle
	history   *CommandHistoryBuffer
	executor  *CommandExecutor
	animation *AnimationManager

	sigCh      chan os.Signal
	interrupts *stream.InterruptController
	metrics    *metrics.SessionMetrics

	widthMu       sync.Mutex
	terminalWidth int
}

// NewAiShell monta a sessão com todos os componentes injetados pelo logger e
// pela configuração.
func NewAiShell(cfg *config.ConfigManager, logger *zap.Logger) *AiShell {
	readyTimeout := cfg.GetDuration("AI_SHELL_WORKER_READY_TIMEOUT", config.DefaultWorkerReadyTimeout)
	sessionMetrics := metrics.NewSessionMetrics()

	// O loop interativo é o dono padrão do SIGINT: uma interrupção fora de
	// uma leitura em modo análise apenas quebra a linha atual.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		for range sigCh {
			fmt.Println()
		}
	}()

	width, _, err := utils.GetTerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}

	return &AiShell{
		logger: logger,
		cfg:    cfg,
		handle: worker.NewHandle(logger,
			worker.WithReadyTimeout(readyTimeout),
			worker.WithRespawnObserver(sessionMetrics.WorkerRespawns.Inc)),
		history:       NewCommandHistoryBuffer(cfg.GetInt("AI_SHELL_HISTORY_CAPACITY", config.DefaultHistoryCapacity)),
		executor:      NewCommandExecutor(logger),
		animation:     NewAnimationManager(),
		sigCh:         sigCh,
		interrupts:    stream.NewInterruptController(sigCh),
		metrics:       sessionMetrics,
		terminalWidth: width,
	}
}

// Start roda o loop da sessão até o usuário sair. Falhas em requisições
// individuais são reportadas e o loop continua.
func (a *AiShell) Start() {
	defer a.handle.Shutdown()
	defer signal.Stop(a.sigCh)

	stopResize := a.watchWindowResize()
	defer stopResize()

	fmt.Println(colorize(i18n.T("cli.welcome"), ColorCyan))
	fmt.Println(colorize(i18n.T("cli.exit_tip"), ColorGray))

	for {
		request := strings.TrimSpace(a.input(i18n.T("cli.prompt_label")))
		if request == "" {
			continue
		}
		if request == "exit" || request == "quit" {
			return
		}
		a.handleRequest(request)
	}
}

// handleRequest cobre um ciclo completo: geração, menu de ações e execução.
func (a *AiShell) handleRequest(request string) {
	osShell := utils.DetectOSAndShell()

	command, err := a.generate("command",
		BuildGenerationMessages(request, osShell, a.history.Format()),
		streamOptions{patterns: stream.CodeFencePatterns(), out: os.Stdout})
	fmt.Println()
	if err != nil {
		a.reportError(err)
		return
	}

	for {
		if command == "" {
			fmt.Println(colorize(i18n.T("cli.empty_generation"), ColorYellow))
			return
		}

		choice := strings.ToLower(strings.TrimSpace(a.input(i18n.T("cli.menu.choices"))))
		switch choice {
		case "", "r":
			a.runCommand(command)
			return

		case "v":
			revision := strings.TrimSpace(a.input(i18n.T("cli.revise_label")))
			if revision == "" {
				continue
			}
			revised, err := a.generate("revision",
				BuildRevisionMessages(request, command, revision, osShell),
				streamOptions{patterns: stream.CodeFencePatterns(), out: os.Stdout})
			fmt.Println()
			if err != nil {
				a.reportError(err)
				continue
			}
			if revised != "" {
				command = revised
			}

		case "e":
			a.explain(command, osShell)

		case "c":
			if err := utils.CopyToClipboard(command); err != nil {
				fmt.Println(colorize(i18n.T("cli.copy_failed", err), ColorYellow))
			} else {
				fmt.Println(colorize(i18n.T("cli.copied"), ColorGreen))
			}

		case "q":
			return
		}
	}
}

// streamOptions parametriza uma geração: padrões de exclusão, destino dos
// fragmentos e se a leitura roda em modo análise.
type streamOptions struct {
	patterns []stream.ExclusionPattern
	out      io.Writer
	analysis bool
}

// generate dispara uma geração no worker e dirige a leitura cancelável,
// escrevendo os fragmentos decodificados em opts.out. O spinner roda até o
// primeiro fragmento chegar.
func (a *AiShell) generate(kind string, messages []models.Message, opts streamOptions) (string, error) {
	settings := a.cfg.Settings()
	if settings.APIKey == "" {
		return "", &llm.KnownError{
			Name:    "API_ERROR",
			Message: "OPENAI_API_KEY não está configurada.",
			Hint:    "Exporte OPENAI_API_KEY ou adicione a chave ao seu arquivo .env.",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	a.animation.ShowThinkingAnimation(i18n.T("cli.thinking"))
	var stopOnce sync.Once
	stopSpinner := func() { stopOnce.Do(a.animation.StopThinkingAnimation) }
	defer stopSpinner()

	payloads, err := a.handle.Generate(ctx, worker.Request{
		ID:          utils.GenerateUUID(),
		Messages:    messages,
		Key:         settings.APIKey,
		Model:       settings.Model,
		APIEndpoint: settings.APIEndpoint,
		Number:      1,
	})
	if err != nil {
		a.metrics.GenerationsTotal.WithLabelValues(kind, "error").Inc()
		return "", err
	}

	writer := &fragmentWriter{
		out:     opts.out,
		onFirst: stopSpinner,
		onWrite: a.metrics.ChunksTotal.Inc,
	}

	readOpts := stream.Options{
		Patterns:     opts.patterns,
		AnalysisMode: opts.analysis,
	}
	if opts.analysis {
		readOpts.Interrupts = a.interrupts
	} else {
		readOpts.Keys = stream.NewKeyListener()
	}

	reader := stream.NewReader(writer, a.logger)
	text, err := reader.Read(ctx, payloads, readOpts)
	stopSpinner()
	if err != nil {
		a.metrics.GenerationsTotal.WithLabelValues(kind, "error").Inc()
		return "", err
	}
	if reader.Cancelled() {
		a.metrics.CancellationsTotal.WithLabelValues(cancelModeLabel(opts.analysis)).Inc()
	}

	a.metrics.GenerationsTotal.WithLabelValues(kind, "ok").Inc()
	return strings.TrimSpace(text), nil
}

func cancelModeLabel(analysis bool) string {
	if analysis {
		return "interrupt"
	}
	return "keypress"
}

// fragmentWriter intercepta os fragmentos da stream: para o spinner no
// primeiro e contabiliza cada escrita.
type fragmentWriter struct {
	out     io.Writer
	onFirst func()
	onWrite func()
	once    sync.Once
}

func (w *fragmentWriter) Write(p []byte) (int, error) {
	w.once.Do(w.onFirst)
	if w.onWrite != nil {
		w.onWrite()
	}
	return w.out.Write(p)
}

// explain gera a explicação do comando em segundo plano e renderiza o
// resultado como markdown.
func (a *AiShell) explain(command, osShell string) {
	var buf strings.Builder
	text, err := a.generate("explanation",
		BuildExplanationMessages(command, osShell, a.cfg.Settings().Language),
		streamOptions{out: &buf})
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Println(a.renderMarkdown(text))
}

// runCommand executa o comando no shell do usuário, registra o resultado no
// histórico e, em caso de falha, dispara a análise automática.
func (a *AiShell) runCommand(command string) {
	fmt.Println(colorize(i18n.T("cli.executing", a.displayCommand(command)), ColorCyan))

	result, err := a.executor.Execute(context.Background(), command)
	if err != nil {
		a.logger.Error("Falha ao executar comando", zap.Error(err))
		fmt.Println(colorize(i18n.T("cli.exec_error", err), ColorRed))
		return
	}

	a.history.Record(result)
	if result.Succeeded() {
		a.metrics.CommandsTotal.WithLabelValues("success").Inc()
	} else {
		a.metrics.CommandsTotal.WithLabelValues("failure").Inc()
	}

	if err := utils.AppendToShellHistory(command); err != nil {
		a.logger.Debug("Não foi possível gravar no histórico do shell", zap.Error(err))
	}

	if !result.Succeeded() && !a.cfg.Settings().Silent {
		fmt.Println(colorize(i18n.T("cli.command_failed", result.ExitCode), ColorRed))
		a.analyzeFailure()
	}
}

// analyzeFailure pede ao modelo um diagnóstico da falha mais recente usando o
// histórico de comandos como contexto. Durante a leitura o SIGINT pertence à
// stream: Ctrl+C encerra a análise, não a sessão.
func (a *AiShell) analyzeFailure() {
	fmt.Println(colorize(i18n.T("cli.analysis_header"), ColorYellow))

	_, err := a.generate("analysis",
		BuildAnalysisMessages(a.history.Format(), utils.DetectOSAndShell(), a.cfg.Settings().Language),
		streamOptions{out: os.Stdout, analysis: true})
	fmt.Println()
	if err != nil {
		a.reportError(err)
	}
}

func (a *AiShell) reportError(err error) {
	var known *llm.KnownError
	if errors.As(err, &known) {
		fmt.Println(colorize(known.Message, ColorRed))
		if known.Hint != "" {
			fmt.Println(colorize(known.Hint, ColorGray))
		}
		return
	}
	a.logger.Error("Erro na requisição", zap.Error(err))
	fmt.Println(colorize(i18n.T("cli.request_error", err), ColorRed))
}

// width devolve a largura corrente do terminal, atualizada pelo observador de
// redimensionamento.
func (a *AiShell) width() int {
	a.widthMu.Lock()
	defer a.widthMu.Unlock()
	return a.terminalWidth
}

func (a *AiShell) setWidth(w int) {
	if w <= 0 {
		return
	}
	a.widthMu.Lock()
	a.terminalWidth = w
	a.widthMu.Unlock()
}

// displayCommand encurta comandos longos para caber na largura do terminal.
func (a *AiShell) displayCommand(command string) string {
	budget := a.width() - 12
	if budget < 20 {
		budget = 20
	}
	return runewidth.Truncate(command, budget, "…")
}

// renderMarkdown devolve o texto formatado para o terminal; em caso de erro
// do renderizador, devolve o texto cru.
func (a *AiShell) renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(a.width()),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// input lê uma linha do usuário e restaura o terminal em seguida, já que o
// go-prompt o deixa em modo raw.
func (a *AiShell) input(label string) string {
	defer a.restoreTerminal()
	return gprompt.Input(label, func(gprompt.Document) []gprompt.Suggest { return nil })
}

// restoreTerminal devolve o terminal ao modo canônico após o go-prompt.
func (a *AiShell) restoreTerminal() {
	if runtime.GOOS == "windows" {
		return
	}
	cmd := exec.Command("stty", "sane")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}
