/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package stream

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func frameFor(content string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

func TestDecoderAccumulatesContent(t *testing.T) {
	dec := NewDecoder(nil, zap.NewNop())

	var emitted strings.Builder
	write := func(s string) { emitted.WriteString(s) }

	done := dec.Feed(frameFor("ls"), write)
	assert.False(t, done)
	done = dec.Feed(frameFor(" -la"), write)
	assert.False(t, done)
	done = dec.Feed("data: [DONE]\n\n", write)
	assert.True(t, done)

	assert.Equal(t, "ls -la", dec.Result())
	assert.Equal(t, "ls -la", emitted.String())
}

func TestDecoderWaitsForStartPattern(t *testing.T) {
	dec := NewDecoder(CodeFencePatterns(), zap.NewNop())

	var emitted strings.Builder
	write := func(s string) { emitted.WriteString(s) }

	// Prosa antes do fence não é emitida.
	dec.Feed(frameFor("Here is the "), write)
	dec.Feed(frameFor("command:\n"), write)
	assert.Empty(t, emitted.String())

	// O fence de abertura liga a emissão a partir do PRÓXIMO fragmento.
	dec.Feed(frameFor("```bash\n"), write)
	assert.Empty(t, emitted.String())

	dec.Feed(frameFor("ls -la"), write)
	dec.Feed(frameFor("\n```"), write)
	done := dec.Feed("data: [DONE]\n\n", write)

	assert.True(t, done)
	assert.Equal(t, "ls -la\n", dec.Result())
}

func TestDecoderStartPatternSplitAcrossFragments(t *testing.T) {
	dec := NewDecoder(CodeFencePatterns(), zap.NewNop())

	// O fence chega espalhado em fragmentos; o look-behind junta as partes.
	dec.Feed(frameFor("`"), nil)
	dec.Feed(frameFor("`"), nil)
	dec.Feed(frameFor("`sh\n"), nil)
	dec.Feed(frameFor("echo hi"), nil)

	assert.Equal(t, "echo hi", dec.Result())
}

func TestDecoderBareFenceDoesNotStartBeforeNewline(t *testing.T) {
	dec := NewDecoder(CodeFencePatterns(), zap.NewNop())

	// O fence cortado antes da quebra de linha ainda não liga a emissão: a tag
	// de linguagem pertence ao fence, nunca ao comando.
	dec.Feed(frameFor("```"), nil)
	dec.Feed(frameFor("bash\n"), nil)
	dec.Feed(frameFor("ls -la"), nil)
	done := dec.Feed("data: [DONE]\n\n", nil)

	assert.True(t, done)
	assert.Equal(t, "ls -la", dec.Result())
}

func TestDecoderStripsPatternsAfterStart(t *testing.T) {
	dec := NewDecoder(CodeFencePatterns(), zap.NewNop())

	dec.Feed(frameFor("```\n"), nil)
	dec.Feed(frameFor("pwd\n```"), nil)

	assert.Equal(t, "pwd\n", dec.Result())
}

func TestDecoderFrameSplitAcrossPayloads(t *testing.T) {
	dec := NewDecoder(nil, zap.NewNop())

	full := frameFor("whoami")
	half := len(full) / 2

	done := dec.Feed(full[:half], nil)
	require.False(t, done)
	assert.Empty(t, dec.Result())

	done = dec.Feed(full[half:], nil)
	require.False(t, done)
	assert.Equal(t, "whoami", dec.Result())
}

func TestDecoderSentinelWithoutTrailingDelimiter(t *testing.T) {
	dec := NewDecoder(nil, zap.NewNop())

	dec.Feed(frameFor("date"), nil)
	done := dec.Feed("data: [DONE]", nil)

	assert.True(t, done)
	assert.Equal(t, "date", dec.Result())
}

func TestDecoderMalformedFrameIsSkipped(t *testing.T) {
	dec := NewDecoder(nil, zap.NewNop())

	done := dec.Feed("data: {not json}\n\n", nil)
	assert.False(t, done)

	dec.Feed(frameFor("uptime"), nil)
	assert.Equal(t, "uptime", dec.Result())
}

func TestDecoderStopIsCooperative(t *testing.T) {
	dec := NewDecoder(nil, zap.NewNop())

	dec.Feed(frameFor("df"), nil)
	dec.Stop()

	// Depois da parada, payloads são ignorados e Feed resolve imediato.
	done := dec.Feed(frameFor(" -h"), nil)
	assert.True(t, done)
	assert.True(t, dec.Stopped())
	assert.Equal(t, "df", dec.Result())
}

func TestDecoderEmptyDeltaIsIgnored(t *testing.T) {
	dec := NewDecoder(nil, zap.NewNop())

	dec.Feed("data: {\"choices\":[{\"delta\":{}}]}\n\n", nil)
	dec.Feed("data: {\"choices\":[]}\n\n", nil)
	dec.Feed(frameFor("ok"), nil)

	assert.Equal(t, "ok", dec.Result())
}
