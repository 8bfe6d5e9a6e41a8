// Package ui provides the console dialog surface for attended runs and
// terminal-capability detection for the end-of-run summary.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Console reads answers from in and writes prompts to out. On EOF or
// empty input every dialog resolves to its default, so a harness that
// supplies no input can never hang.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	format Format
}

// NewConsole creates a Console on the process stdio.
func NewConsole() *Console {
	return &Console{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		format: DetectFormat(os.Stdout),
	}
}

// NewConsoleWith creates a Console over explicit streams, for tests.
func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		format: FormatText,
	}
}

// Format returns the detected output format.
func (c *Console) Format() Format {
	return c.format
}

// Confirm asks a yes/no question. Empty input and EOF return def.
func (c *Console) Confirm(prompt string, def bool) bool {
	marker := "[y/N]"
	if def {
		marker = "[Y/n]"
	}
	fmt.Fprintf(c.out, "%s %s: ", prompt, marker)

	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		return def
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return def
	}
	return answer == "y" || answer == "yes"
}

// Select presents numbered options and returns the chosen index.
// Empty input, EOF and out-of-range answers return def.
func (c *Console) Select(title string, options []string, def int) int {
	if len(options) == 0 {
		return def
	}
	if def < 0 || def >= len(options) {
		def = 0
	}

	fmt.Fprintln(c.out, title)
	for i, option := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(c.out, " %s %d) %s\n", marker, i+1, option)
	}
	fmt.Fprintf(c.out, "Choice [%d]: ", def+1)

	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		return def
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return def
	}
	return n - 1
}
