// Package testutil holds a recording executor and a throwaway project root
// for exercising the CLI without docker.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
)

// Reply scripts how the Recorder answers one invocation.
type Reply struct {
	Code   int
	Stdout string
	Stderr string
	// NotFound simulates an executable that cannot be started.
	NotFound bool
}

// Recorder is an execx.Executor that records every invocation and answers
// with scripted replies. Replies are matched by the first rule whose prefix
// matches the invocation's argv (joined by spaces); unmatched calls exit 0.
type Recorder struct {
	mu    sync.Mutex
	calls []execx.Invocation
	rules []rule
}

type rule struct {
	prefix string
	reply  Reply
	once   bool
	used   bool
}

func NewRecorder() *Recorder { return &Recorder{} }

// On answers every invocation starting with prefix.
func (r *Recorder) On(prefix string, reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{prefix: prefix, reply: reply})
	return r
}

// Once answers the next invocation starting with prefix, then retires.
func (r *Recorder) Once(prefix string, reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{prefix: prefix, reply: reply, once: true})
	return r
}

func (r *Recorder) Run(ctx context.Context, inv execx.Invocation) execx.Result {
	_, res := r.Capture(ctx, inv)
	return res
}

func (r *Recorder) Capture(_ context.Context, inv execx.Invocation) (execx.Output, execx.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv)
	line := inv.String()
	for i := range r.rules {
		ru := &r.rules[i]
		if ru.used || !strings.HasPrefix(line, ru.prefix) {
			continue
		}
		if ru.once {
			ru.used = true
		}
		if ru.reply.NotFound {
			return execx.Output{}, execx.Result{Code: 1, Err: &execx.LaunchError{Name: inv.Name, Err: os.ErrNotExist}}
		}
		var err error
		if ru.reply.Code != 0 {
			err = exitErr(ru.reply.Code)
		}
		return execx.Output{Stdout: ru.reply.Stdout, Stderr: ru.reply.Stderr}, execx.Result{Code: ru.reply.Code, Err: err}
	}
	return execx.Output{}, execx.Result{}
}

// Calls returns a copy of the recorded invocations.
func (r *Recorder) Calls() []execx.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]execx.Invocation(nil), r.calls...)
}

// Lines returns the recorded invocations as command lines.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

type exitErr int

func (e exitErr) Error() string { return "exit status " + strconv.Itoa(int(e)) }

// Project is a temporary project root with service directories.
type Project struct {
	t    *testing.T
	Root string
}

// NewProject creates an empty project root and points HOME at a fresh
// directory so the persisted-root file never leaks between tests.
func NewProject(t *testing.T) *Project {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("DOC_CONFIG", filepath.Join(home, "doc-config.yaml"))
	t.Setenv("DOC_COMPOSE", "")
	t.Setenv("DOC_DOCKER", "")
	return &Project{t: t, Root: t.TempDir()}
}

// AddService creates <root>/<name>/docker-compose.yml.
func (p *Project) AddService(name string) string {
	p.t.Helper()
	return p.WriteFile(filepath.Join(name, "docker-compose.yml"), "services: {}\n")
}

// WriteFile writes content at a root-relative path and returns the absolute path.
func (p *Project) WriteFile(rel, content string) string {
	p.t.Helper()
	path := filepath.Join(p.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		p.t.Fatal(err)
	}
	return path
}

// Home returns the HOME directory NewProject installed.
func (p *Project) Home() string { return os.Getenv("HOME") }
