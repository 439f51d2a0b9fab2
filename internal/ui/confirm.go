package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConfirmDanger asks a yes/no question styled for destructive actions.
func ConfirmDanger(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, StyleError.Render("⚠ "+prompt))
}

// ConfirmFrom asks prompt on w and reads the answer from r.
func ConfirmFrom(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// PromptInput asks for a single line of text on stdout.
func PromptInput(prompt string) string {
	return PromptInputFrom(os.Stdin, os.Stdout, prompt)
}

// PromptInputFrom asks prompt on w and returns the trimmed line read from r.
func PromptInputFrom(r io.Reader, w io.Writer, prompt string) string {
	fmt.Fprintf(w, "%s: ", StyleHeader.Render(prompt))
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(line)
}
