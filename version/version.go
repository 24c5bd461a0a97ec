/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */

// Package version carrega as informações de build e verifica releases novas.
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

var (
	// Preenchidas na compilação via ldflags.
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"

	// LatestVersionURL aponta para a release mais recente na API do GitHub.
	LatestVersionURL = "https://api.github.com/repos/cheney-yan/ai-shell/releases/latest"
)

// Info agrupa as informações de versão do binário.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
}

// Current retorna as informações de versão, completadas pelo build info do
// módulo quando os ldflags não foram usados.
func Current() Info {
	version, commitHash, buildDate := Version, CommitHash, BuildDate

	if version == "dev" || commitHash == "unknown" || buildDate == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					if commitHash == "unknown" && len(setting.Value) >= 8 {
						commitHash = setting.Value[:8]
					}
				case "vcs.time":
					if buildDate == "unknown" {
						if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
							buildDate = t.Format("2006-01-02 15:04:05")
						} else {
							buildDate = setting.Value
						}
					}
				}
			}
			if version == "dev" && info.Main.Version != "" {
				version = info.Main.Version
			}
		}
	}

	return Info{Version: version, CommitHash: commitHash, BuildDate: buildDate}
}

// CheckLatest consulta o GitHub pela release mais recente. Retorna a versão
// encontrada e se há atualização disponível.
func CheckLatest() (string, bool, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequest(http.MethodGet, LatestVersionURL, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("User-Agent", "AI-Shell-Version-Checker")

	resp, err := client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("erro ao verificar versão: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		return "", false, err
	}

	latest := strings.TrimPrefix(release.TagName, "v")

	// Builds de desenvolvimento sempre sugerem atualização.
	if Version == "dev" || Version == "unknown" {
		return latest, true, nil
	}

	return latest, needsUpdate(extractBaseVersion(Version), latest), nil
}

// extractBaseVersion remove o prefixo 'v' e sufixos de desenvolvimento.
// Exemplo: "v1.9.0-5-g1b6ecaa-dirty" -> "1.9.0".
func extractBaseVersion(version string) string {
	version = strings.TrimPrefix(version, "v")
	if i := strings.Index(version, "-"); i >= 0 {
		version = version[:i]
	}
	return version
}

// needsUpdate compara versões semânticas componente a componente.
func needsUpdate(current, latest string) bool {
	if current == "" {
		return true
	}

	currentParts := strings.Split(current, ".")
	latestParts := strings.Split(latest, ".")
	for len(currentParts) < 3 {
		currentParts = append(currentParts, "0")
	}
	for len(latestParts) < 3 {
		latestParts = append(latestParts, "0")
	}

	for i := 0; i < 3; i++ {
		c, _ := strconv.Atoi(currentParts[i])
		l, _ := strconv.Atoi(latestParts[i])
		if l > c {
			return true
		}
		if c > l {
			return false
		}
	}
	return false
}

// Format retorna o bloco de versão pronto para impressão, opcionalmente com a
// verificação de atualização.
func Format(includeLatest bool) string {
	info := Current()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("AI-Shell %s\n", info.Version))
	b.WriteString(fmt.Sprintf("Commit: %s\n", info.CommitHash))
	b.WriteString(fmt.Sprintf("Build:  %s\n", info.BuildDate))

	if includeLatest {
		latest, hasUpdate, err := CheckLatest()
		switch {
		case err != nil:
			b.WriteString(fmt.Sprintf("\nNão foi possível verificar atualizações: %s\n", err))
		case hasUpdate:
			b.WriteString(fmt.Sprintf("\nAtualização disponível: %s\n", latest))
			b.WriteString("Execute 'go install github.com/cheney-yan/ai-shell@latest' para atualizar.\n")
		default:
			b.WriteString("\nVocê está usando a versão mais recente.\n")
		}
	}

	return b.String()
}
