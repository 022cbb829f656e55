package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrLaunch matches any LaunchError via errors.Is.
var ErrLaunch = errors.New("process could not be started")

// Invocation is exactly one external-process call.
type Invocation struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment (KEY=VALUE).
	Env []string
}

// Argv returns the executable followed by its arguments.
func (inv Invocation) Argv() []string {
	return append([]string{inv.Name}, inv.Args...)
}

func (inv Invocation) String() string {
	return strings.Join(inv.Argv(), " ")
}

// Result is the outcome of one invocation. Code is the child's exit status,
// or 1 when the process never started.
type Result struct {
	Code int
	Err  error
}

// Started reports whether the process was launched at all.
func (r Result) Started() bool {
	return !errors.Is(r.Err, ErrLaunch)
}

// OK reports a zero exit status.
func (r Result) OK() bool { return r.Code == 0 && r.Err == nil }

// LaunchError means the executable was missing or could not be started.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// Output holds captured streams.
type Output struct {
	Stdout string
	Stderr string
}

// Executor runs invocations. The system implementation talks to the OS; tests
// substitute a recorder.
type Executor interface {
	// Run executes inv with the standard streams attached and blocks until it exits.
	Run(ctx context.Context, inv Invocation) Result
	// Capture executes inv and returns its output instead of streaming it.
	Capture(ctx context.Context, inv Invocation) (Output, Result)
}

// System executes invocations as real child processes. Nil streams fall back
// to the process's own stdin/stdout/stderr.
type System struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s System) Run(ctx context.Context, inv Invocation) Result {
	cmd := s.command(ctx, inv)
	cmd.Stdin = pick[io.Reader](s.Stdin, os.Stdin)
	cmd.Stdout = pick[io.Writer](s.Stdout, os.Stdout)
	cmd.Stderr = pick[io.Writer](s.Stderr, os.Stderr)
	return wait(ctx, inv, cmd)
}

func (s System) Capture(ctx context.Context, inv Invocation) (Output, Result) {
	cmd := s.command(ctx, inv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	res := wait(ctx, inv, cmd)
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, res
}

func (s System) command(ctx context.Context, inv Invocation) *exec.Cmd {
	log.WithField("dir", inv.Dir).Debugf("+ %s", inv)
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	return cmd
}

func wait(ctx context.Context, inv Invocation, cmd *exec.Cmd) Result {
	if err := cmd.Start(); err != nil {
		return Result{Code: 1, Err: &LaunchError{Name: inv.Name, Err: err}}
	}
	err := cmd.Wait()
	return Result{Code: exitCode(ctx, err), Err: err}
}

func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		return ee.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		return 124
	}
	return 1
}

func pick[T any](v, fallback T) T {
	if any(v) == nil {
		return fallback
	}
	return v
}

func WithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

// LookPath reports whether name resolves on PATH.
func LookPath(name string) (string, bool) {
	p, err := exec.LookPath(name)
	return p, err == nil
}
