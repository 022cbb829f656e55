package cmdregistry

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hallvardnmbu/docker/cli/doc/internal/compose"
	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
	"github.com/hallvardnmbu/docker/cli/doc/internal/launcher"
	"github.com/hallvardnmbu/docker/cli/doc/internal/runner"
)

// Context carries the resolved invocation state and handles that command
// handlers need. It is built once per process.
type Context struct {
	Ctx    context.Context
	DryRun bool
	// Root is the resolved project root.
	Root string
	// Target is the --service override for exec targets.
	Target   string
	Args     []string
	Settings config.Settings
	Exec     execx.Executor
	Runner   *runner.Runner
	Launcher *launcher.Launcher
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

// Service locates name under Root and loads its doc.yaml.
func (c *Context) Service(name string) (compose.Service, error) {
	return compose.Load(c.Root, name, c.Settings.ComposeFile)
}

// Handler executes a command given the shared context.
type Handler func(*Context) error

// Command is one registry entry.
type Command struct {
	Name  string
	Usage string
	Short string
	// MinArgs/MaxArgs bound the positional arguments; MaxArgs < 0 means
	// unbounded.
	MinArgs int
	MaxArgs int
	// Passthrough stops flag parsing at the first positional argument so
	// trailing arguments reach the handler untouched.
	Passthrough bool
	Handler     Handler
}

// Registry maps command names to commands, remembering registration order.
type Registry struct {
	commands map[string]Command
	order    []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c. It panics if the name already exists.
func (r *Registry) Register(c Command) {
	if _, exists := r.commands[c.Name]; exists {
		panic(fmt.Sprintf("command %s already registered", c.Name))
	}
	r.commands[c.Name] = c
	r.order = append(r.order, c.Name)
}

// Lookup returns the command and whether it exists.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Commands returns every command in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.commands[n])
	}
	return out
}

// ExitError carries a child process's non-zero exit status up to main,
// which exits with it without printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return "exit status " + strconv.Itoa(e.Code) }

// Exit converts a child status into a handler result: nil for 0.
func Exit(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// Trailing drops a leading "--" separator from trailing arguments.
func Trailing(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}
