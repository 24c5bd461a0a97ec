/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */

// Package stream reconstrói texto limpo a partir do stream de eventos da API
// de geração e dá suporte a cancelamento cooperativo durante a leitura.
package stream

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	// eventDelimiter separa frames dentro de um bloco do transporte.
	eventDelimiter = "\n\n"
	// dataMarker prefixa frames que carregam payload de dados.
	dataMarker = "data: "
	// doneSentinel marca o fim normal do stream.
	doneSentinel = "[DONE]"
)

// ExclusionPattern é um padrão removido do texto emitido. O primeiro padrão da
// lista também funciona como detector de início de conteúdo real.
type ExclusionPattern struct {
	Regex   *regexp.Regexp // quando não-nulo, removido globalmente
	Literal string         // quando Regex é nulo, removido como string literal
}

// matches verifica se o padrão ocorre no texto.
func (p ExclusionPattern) matches(text string) bool {
	if p.Regex != nil {
		return p.Regex.MatchString(text)
	}
	return p.Literal != "" && strings.Contains(text, p.Literal)
}

// strip remove todas as ocorrências do padrão no texto.
func (p ExclusionPattern) strip(text string) string {
	if p.Regex != nil {
		return p.Regex.ReplaceAllString(text, "")
	}
	if p.Literal == "" {
		return text
	}
	return strings.ReplaceAll(text, p.Literal, "")
}

// CodeFencePatterns são os padrões usados em requisições de geração de script:
// o fence de abertura (com linguagem opcional) detecta o início do conteúdo e
// todos os marcadores de fence são removidos da saída.
func CodeFencePatterns() []ExclusionPattern {
	return []ExclusionPattern{
		{Regex: regexp.MustCompile("```[a-zA-Z]*\n")},
		{Literal: "```"},
	}
}

// Event é um evento decodificado do stream. Efêmero: produzido e consumido
// dentro de um único ciclo de leitura.
type Event struct {
	Raw     string // frame bruto, sem o marcador de dados
	Content string // fragmento incremental extraído (pode ser vazio)
	Done    bool   // frame sentinela de fim de stream
}

// Decoder carrega o estado de uma operação de decodificação: texto acumulado,
// buffer de look-behind para detectar o início do conteúdo e as flags de
// emissão e parada. Pertence exclusivamente a uma leitura em andamento.
type Decoder struct {
	patterns []ExclusionPattern
	logger   *zap.Logger

	started    bool
	stopped    bool
	carry      string
	lookBehind strings.Builder
	out        strings.Builder
}

// NewDecoder cria um Decoder para uma única operação de leitura.
// Sem padrões configurados, a emissão começa imediatamente.
func NewDecoder(patterns []ExclusionPattern, logger *zap.Logger) *Decoder {
	return &Decoder{
		patterns: patterns,
		logger:   logger,
		started:  len(patterns) == 0,
	}
}

// Stop solicita a parada cooperativa: respeitada na próxima iteração de
// payload, nunca no meio de um frame.
func (d *Decoder) Stop() {
	d.stopped = true
}

// Stopped informa se a parada já foi solicitada.
func (d *Decoder) Stopped() bool {
	return d.stopped
}

// Result retorna o texto acumulado até aqui.
func (d *Decoder) Result() string {
	return d.out.String()
}

// Feed processa um payload bruto do transporte, emitindo fragmentos limpos via
// write. Retorna true quando o stream terminou (sentinela ou parada
// solicitada) — um caminho de conclusão normal, não um erro.
func (d *Decoder) Feed(payload string, write func(string)) bool {
	if d.stopped {
		return true
	}

	// Blocos do transporte podem cortar um frame ao meio; o resto fica
	// guardado até o delimitador chegar.
	data := d.carry + payload
	frames := strings.Split(data, eventDelimiter)
	if strings.HasSuffix(data, eventDelimiter) {
		d.carry = ""
	} else {
		d.carry = frames[len(frames)-1]
		frames = frames[:len(frames)-1]
	}

	for _, frame := range frames {
		if d.stopped {
			return true
		}

		event := d.decodeFrame(frame)
		if event == nil {
			continue
		}
		if event.Done {
			return true
		}
		if event.Content == "" {
			continue
		}

		if !d.started {
			// Antes do conteúdo real começar, acumula no look-behind e testa o
			// detector de início (primeiro padrão). O buffer é descartado ao
			// encontrar a marca: a emissão começa no próximo fragmento.
			d.lookBehind.WriteString(event.Content)
			if d.patterns[0].matches(d.lookBehind.String()) {
				d.started = true
				d.lookBehind.Reset()
			}
			continue
		}

		cleaned := event.Content
		for _, p := range d.patterns {
			cleaned = p.strip(cleaned)
		}
		if cleaned == "" {
			continue
		}

		d.out.WriteString(cleaned)
		if write != nil {
			write(cleaned)
		}
	}

	// Sentinela pode chegar sem o delimitador final.
	if strings.Contains(d.carry, doneSentinel) {
		d.carry = ""
		return true
	}

	return false
}

// deltaFrame espelha o formato de evento da API de chat completions.
type deltaFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// decodeFrame interpreta um único frame do transporte. Frames sem o marcador
// de dados são ignorados; falha de parse degrada para fragmento vazio com
// diagnóstico em log, nunca aborta o stream.
func (d *Decoder) decodeFrame(frame string) *Event {
	frame = strings.TrimSpace(frame)
	if frame == "" {
		return nil
	}

	if strings.Contains(frame, doneSentinel) {
		return &Event{Raw: frame, Done: true}
	}

	if !strings.HasPrefix(frame, dataMarker) {
		return nil
	}
	data := strings.TrimPrefix(frame, dataMarker)

	var parsed deltaFrame
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		d.logger.Debug("Frame de stream sem JSON válido, fragmento ignorado",
			zap.String("frame", truncateForLog(data, 256)),
			zap.Error(err))
		return &Event{Raw: data}
	}

	var content string
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Delta.Content
	}

	return &Event{Raw: data, Content: content}
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
