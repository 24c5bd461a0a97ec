/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExecuteCapturesStdoutAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("depende de shell POSIX")
	}

	exec := NewCommandExecutor(zap.NewNop())
	result, err := exec.Execute(context.Background(), "echo hello-world")
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Succeeded())
	assert.Contains(t, result.Stdout, "hello-world")
	assert.False(t, result.FinishedAt.IsZero())
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("depende de shell POSIX")
	}

	exec := NewCommandExecutor(zap.NewNop())
	result, err := exec.Execute(context.Background(), "exit 3")
	require.NoError(t, err)

	assert.Equal(t, 3, result.ExitCode)
	assert.False(t, result.Succeeded())
}

func TestExecuteCapturesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("depende de shell POSIX")
	}

	exec := NewCommandExecutor(zap.NewNop())
	result, err := exec.Execute(context.Background(), "echo oops 1>&2; exit 1")
	require.NoError(t, err)

	assert.Contains(t, result.Stderr, "oops")
	assert.Equal(t, 1, result.ExitCode)
}
