/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observa o arquivo .env e aciona o Reload do ConfigManager
// quando ele muda, permitindo ajustar modelo/endpoint sem reiniciar a sessão.
type Watcher struct {
	manager   *ConfigManager
	watcher   *fsnotify.Watcher
	logger    *zap.Logger
	closeOnce sync.Once
}

// NewWatcher cria um watcher sobre o diretório atual (onde o .env é procurado).
func NewWatcher(manager *ConfigManager, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("não foi possível criar o observador de configuração: %w", err)
	}

	dir, err := os.Getwd()
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("não foi possível observar %s: %w", dir, err)
	}

	w := &Watcher{manager: manager, watcher: fw, logger: logger}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != ".env" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.logger.Debug("Alteração detectada no .env", zap.String("event", event.String()))
				w.manager.Reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Erro no observador de configuração", zap.Error(err))
		}
	}
}

// Close encerra o watcher de forma segura e idempotente.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}
