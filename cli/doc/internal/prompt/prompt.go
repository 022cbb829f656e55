// Package prompt reads answers for the interactive setup flows.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer was given.
var ErrNoInput = errors.New("no input")

type Prompter struct {
	b *bufio.Reader
	w io.Writer
	// fd is the terminal behind r, or -1.
	fd int
}

// New wraps in/out. When in is a terminal, secrets are read without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{b: bufio.NewReader(in), w: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool { return p.fd >= 0 }

// Line prints question and returns the trimmed answer. An answer terminated
// by EOF instead of a newline still counts; EOF with nothing typed is
// ErrNoInput.
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprint(p.w, question)
	line, err := p.b.ReadString('\n')
	if errors.Is(err, io.EOF) {
		line = strings.TrimSpace(line)
		if line == "" {
			return "", ErrNoInput
		}
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret is Line without echo on a terminal.
func (p *Prompter) Secret(question string) (string, error) {
	if p.fd < 0 {
		return p.Line(question)
	}
	fmt.Fprint(p.w, question)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Confirm asks a yes/no question; only answers starting with y/Y are yes.
// EOF counts as no.
func (p *Prompter) Confirm(question string) (bool, error) {
	ans, err := p.Line(question)
	if errors.Is(err, ErrNoInput) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(ans), "y"), nil
}
