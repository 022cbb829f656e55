// Package ui prints the few decorated lines the CLI emits. Colour is only
// used when the destination is a terminal, so captured output stays plain.
package ui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

func styled(w io.Writer, s string, c termenv.Color) string {
	return termenv.NewOutput(w).String(s).Foreground(c).String()
}

// Error prints a single "Error: <msg>" line.
func Error(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", styled(w, "Error:", termenv.ANSIRed), fmt.Sprintf(format, args...))
}

// Pass prints a passing check line.
func Pass(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", styled(w, "✅", termenv.ANSIGreen), fmt.Sprintf(format, args...))
}

// Fail prints a failing check line.
func Fail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", styled(w, "❌", termenv.ANSIRed), fmt.Sprintf(format, args...))
}

// Heading prints a title underlined with '=' (or '-' when minor).
func Heading(w io.Writer, title string, minor bool) {
	rule := '='
	if minor {
		rule = '-'
	}
	fmt.Fprintln(w, title)
	line := make([]rune, len([]rune(title)))
	for i := range line {
		line[i] = rule
	}
	fmt.Fprintln(w, string(line))
}
