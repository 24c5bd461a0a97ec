//go:build windows

/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package cli

// watchWindowResize é um no-op no Windows; não há SIGWINCH.
func (a *AiShell) watchWindowResize() func() {
	return func() {}
}
