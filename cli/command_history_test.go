/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheney-yan/ai-shell/models"
)

func result(command string, exitCode int) models.CommandResult {
	return models.CommandResult{Command: command, ExitCode: exitCode}
}

func TestHistoryRecordEvictsOldest(t *testing.T) {
	buf := NewCommandHistoryBuffer(3)

	for i := 1; i <= 5; i++ {
		buf.Record(result(fmt.Sprintf("cmd-%d", i), 0))
	}

	require.Equal(t, 3, buf.Len())
	snapshot := buf.Snapshot()
	assert.Equal(t, "cmd-5", snapshot[0].Command)
	assert.Equal(t, "cmd-4", snapshot[1].Command)
	assert.Equal(t, "cmd-3", snapshot[2].Command)
}

func TestHistoryMostRecentFirst(t *testing.T) {
	buf := NewCommandHistoryBuffer(5)
	buf.Record(result("first", 0))
	buf.Record(result("second", 0))

	snapshot := buf.Snapshot()
	assert.Equal(t, "second", snapshot[0].Command)
	assert.Equal(t, "first", snapshot[1].Command)
}

func TestHistoryFormatEmpty(t *testing.T) {
	buf := NewCommandHistoryBuffer(5)
	assert.Empty(t, buf.Format())
}

func TestHistoryFormatLabelsAndIndicators(t *testing.T) {
	buf := NewCommandHistoryBuffer(5)
	buf.Record(models.CommandResult{Command: "ls -la", ExitCode: 0, Stdout: "total 8\n"})
	buf.Record(models.CommandResult{Command: "cat missing.txt", ExitCode: 1, Stderr: "cat: missing.txt: No such file or directory\n"})

	out := buf.Format()

	// Rótulo mais alto = mais recente; falha leva ✗, sucesso leva ✓.
	assert.Contains(t, out, "[2] ✗ cat missing.txt")
	assert.Contains(t, out, "[1] ✓ ls -la")
	assert.Contains(t, out, "Exit code: 1")
	assert.Contains(t, out, "Exit code: 0")
	assert.Contains(t, out, "No such file or directory")

	// A entrada mais recente aparece antes da mais antiga.
	assert.Less(t, strings.Index(out, "cat missing.txt"), strings.Index(out, "ls -la"))
}

func TestHistoryFormatIsIdempotent(t *testing.T) {
	buf := NewCommandHistoryBuffer(5)
	buf.Record(models.CommandResult{Command: "uname -a", ExitCode: 0, Stdout: "Linux\n"})

	first := buf.Format()
	second := buf.Format()
	assert.Equal(t, first, second)
}

func TestHistoryTruncatesLongOutput(t *testing.T) {
	var lines []string
	for i := 1; i <= 40; i++ {
		lines = append(lines, fmt.Sprintf("line-%d", i))
	}

	buf := NewCommandHistoryBuffer(5)
	buf.Record(models.CommandResult{
		Command:  "find /",
		ExitCode: 0,
		Stdout:   strings.Join(lines, "\n") + "\n",
	})

	out := buf.Format()

	assert.Contains(t, out, "line-1\n")
	assert.Contains(t, out, "line-10")
	assert.Contains(t, out, "... (25 lines omitted) ...")
	assert.Contains(t, out, "line-36")
	assert.Contains(t, out, "line-40")
	assert.NotContains(t, out, "line-20\n")
}

func TestHistoryShortOutputIsNotTruncated(t *testing.T) {
	buf := NewCommandHistoryBuffer(5)
	buf.Record(models.CommandResult{Command: "echo hi", ExitCode: 0, Stdout: "hi\n"})

	out := buf.Format()
	assert.NotContains(t, out, "omitted")
	assert.Contains(t, out, "hi")
}

func TestHistoryClear(t *testing.T) {
	buf := NewCommandHistoryBuffer(5)
	buf.Record(result("ls", 0))
	buf.Clear()
	assert.Zero(t, buf.Len())
	assert.Empty(t, buf.Format())
}
