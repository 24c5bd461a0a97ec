/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package stream

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReaderReadsUntilDone(t *testing.T) {
	payloads := make(chan Payload, 3)
	payloads <- Payload{Data: frameFor("ls")}
	payloads <- Payload{Data: frameFor(" -la")}
	payloads <- Payload{Data: "data: [DONE]\n\n"}

	var out strings.Builder
	reader := NewReader(&out, zap.NewNop())

	text, err := reader.Read(context.Background(), payloads, Options{})
	require.NoError(t, err)
	assert.Equal(t, "ls -la", text)
	assert.Equal(t, "ls -la", out.String())
	assert.False(t, reader.Cancelled())
}

func TestReaderChannelCloseCompletesNormally(t *testing.T) {
	payloads := make(chan Payload, 1)
	payloads <- Payload{Data: frameFor("pwd")}
	close(payloads)

	reader := NewReader(io.Discard, zap.NewNop())
	text, err := reader.Read(context.Background(), payloads, Options{})
	require.NoError(t, err)
	assert.Equal(t, "pwd", text)
}

func TestReaderPropagatesTerminalError(t *testing.T) {
	boom := errors.New("worker exploded")
	payloads := make(chan Payload, 2)
	payloads <- Payload{Data: frameFor("partial")}
	payloads <- Payload{Err: boom}

	reader := NewReader(io.Discard, zap.NewNop())
	text, err := reader.Read(context.Background(), payloads, Options{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", text)
}

func TestReaderKeypressStopsAtNextPayload(t *testing.T) {
	keyR, keyW := io.Pipe()
	defer keyW.Close()

	keys := &KeyListener{
		Input:   keyR,
		RawMode: func() (func(), error) { return func() {}, nil },
	}

	payloads := make(chan Payload)
	go func() {
		payloads <- Payload{Data: frameFor("sleep 100")}
		time.Sleep(50 * time.Millisecond)

		_, _ = keyW.Write([]byte{'q'})
		time.Sleep(50 * time.Millisecond)

		// Já parado: este payload marca a fronteira, mas não é emitido.
		payloads <- Payload{Data: frameFor(" && echo done")}
	}()

	var out strings.Builder
	reader := NewReader(&out, zap.NewNop())

	text, err := reader.Read(context.Background(), payloads, Options{Keys: keys})
	require.NoError(t, err)
	assert.Equal(t, "sleep 100", text)
	assert.Equal(t, "sleep 100", out.String())
	assert.True(t, reader.Cancelled())
}

func TestReaderContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(io.Discard, zap.NewNop())
	_, err := reader.Read(ctx, make(chan Payload), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderAnalysisInterruptResolvesWithPartialText(t *testing.T) {
	interrupts := NewInterruptController(nil)

	payloads := make(chan Payload)
	go func() {
		payloads <- Payload{Data: frameFor("the disk is full")}
		time.Sleep(50 * time.Millisecond)
		_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)
	}()

	var out strings.Builder
	reader := NewReader(&out, zap.NewNop())

	text, err := reader.Read(context.Background(), payloads, Options{
		AnalysisMode: true,
		Interrupts:   interrupts,
	})
	require.NoError(t, err)
	assert.Equal(t, "the disk is full", text)
	assert.True(t, reader.Cancelled())
	assert.Contains(t, out.String(), "the disk is full")
}

func TestReaderAnalysisWithoutInterruptLeavesNoGoroutine(t *testing.T) {
	interrupts := NewInterruptController(nil)
	reader := NewReader(io.Discard, zap.NewNop())

	before := runtime.NumGoroutine()

	// Várias leituras que terminam sem interrupção alguma: a goroutine de
	// escuta do sinal precisa morrer junto com cada leitura.
	for i := 0; i < 10; i++ {
		payloads := make(chan Payload, 2)
		payloads <- Payload{Data: frameFor("df -h")}
		payloads <- Payload{Done: true}

		_, err := reader.Read(context.Background(), payloads, Options{
			AnalysisMode: true,
			Interrupts:   interrupts,
		})
		require.NoError(t, err)
	}

	// As goroutines recém-liberadas podem demorar um instante para sumir.
	deadline := time.Now().Add(2 * time.Second)
	for {
		after := runtime.NumGoroutine()
		if after <= before {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("goroutines sobrando após as leituras: antes=%d depois=%d", before, after)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestInterruptControllerReleaseIsIdempotent(t *testing.T) {
	interrupts := NewInterruptController(nil)

	_, release := interrupts.Acquire()
	release()
	release() // segunda liberação não pode entrar em pânico nem registrar de novo

	// Uma nova aquisição depois da liberação continua funcionando.
	ch, release2 := interrupts.Acquire()
	assert.NotNil(t, ch)
	release2()
}
