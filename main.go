/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/cli"
	"github.com/cheney-yan/ai-shell/config"
	"github.com/cheney-yan/ai-shell/i18n"
	"github.com/cheney-yan/ai-shell/metrics"
	"github.com/cheney-yan/ai-shell/utils"
	"github.com/cheney-yan/ai-shell/version"
	"github.com/cheney-yan/ai-shell/worker"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		// Sem .env é um caso normal; o supervisor avisa, o worker fica quieto.
		if !worker.IsWorkerProcess() {
			fmt.Println("Nenhum arquivo .env encontrado, continuando sem ele")
		}
	}

	logger, err := utils.InitializeLogger()
	if err != nil {
		panic(fmt.Sprintf("Não foi possível inicializar o logger: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	// O processo relançado como worker só fala o protocolo de geração pelo
	// stdin/stdout; nada de terminal interativo.
	if worker.IsWorkerProcess() {
		if err := worker.Run(logger); err != nil {
			logger.Error("Worker terminou com erro", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	showVersion := flag.Bool("version", false, "Exibe a versão e verifica atualizações")
	silent := flag.Bool("silent", false, "Desativa a análise automática de falhas")
	model := flag.String("model", "", "Modelo a usar nesta sessão")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.Format(true))
		return
	}

	i18n.Init()

	cfg := config.New(logger)
	cfg.Load()
	if *silent {
		cfg.Set("AI_SHELL_SILENT", "true")
	}
	if *model != "" {
		cfg.Set("AI_SHELL_MODEL", *model)
	}

	if watcher, err := config.NewWatcher(cfg, logger); err != nil {
		logger.Warn("Recarga automática de configuração desativada", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	if port := cfg.GetInt("AI_SHELL_METRICS_PORT", config.DefaultMetricsPort); port > 0 {
		server := metrics.NewServer(port, logger)
		server.Start()
		defer server.Stop()
	}

	shell := cli.NewAiShell(cfg, logger)
	shell.Start()
}
