package composecmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hallvardnmbu/docker/cli/doc/internal/cmdregistry"
	"github.com/hallvardnmbu/docker/cli/doc/internal/compose"
	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
	"github.com/hallvardnmbu/docker/cli/doc/internal/runner"
	"github.com/hallvardnmbu/docker/cli/doc/internal/testutil"
)

type harness struct {
	proj   *testutil.Project
	rec    *testutil.Recorder
	reg    *cmdregistry.Registry
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	h := &harness{proj: testutil.NewProject(t), rec: testutil.NewRecorder(), reg: cmdregistry.New()}
	Register(h.reg)
	return h
}

func (h *harness) run(t *testing.T, target, name string, args ...string) error {
	t.Helper()
	c, ok := h.reg.Lookup(name)
	require.True(t, ok, name)
	ctx := &cmdregistry.Context{
		Ctx:      context.Background(),
		Root:     h.proj.Root,
		Target:   target,
		Args:     args,
		Settings: config.DefaultSettings(),
		Exec:     h.rec,
		Runner:   &runner.Runner{Exec: h.rec, Tool: "docker-compose", Out: &h.stderr},
		Stdout:   &h.stdout,
		Stderr:   &h.stderr,
	}
	return c.Handler(ctx)
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *cmdregistry.ExitError
	require.True(t, errors.As(err, &ee), "expected exit status, got %v", err)
	return ee.Code
}

func TestStartInvokesComposeUpDetached(t *testing.T) {
	h := newHarness(t)
	file := h.proj.AddService("demo")

	require.NoError(t, h.run(t, "", "start", "demo"))
	require.Equal(t, []string{"docker-compose -f " + file + " up -d"}, h.rec.Lines())
}

func TestVerbPropagatesToolStatus(t *testing.T) {
	h := newHarness(t)
	file := h.proj.AddService("demo")
	h.rec.On("docker-compose -f "+file+" build", testutil.Reply{Code: 42})

	err := h.run(t, "", "build", "demo", "--no-cache")
	require.Equal(t, 42, exitCode(t, err))
	require.Equal(t, []string{"docker-compose -f " + file + " build --no-cache"}, h.rec.Lines())
}

func TestMissingServiceFailsBeforeInvoking(t *testing.T) {
	h := newHarness(t)
	for _, v := range compose.Verbs() {
		err := h.run(t, "", string(v), "ghost")
		require.ErrorIs(t, err, compose.ErrServiceNotFound, v)
		require.Contains(t, err.Error(), "ghost")
	}
	require.Empty(t, h.rec.Calls())
}

func TestShellUsesTargetOverride(t *testing.T) {
	h := newHarness(t)
	file := h.proj.AddService("python")

	require.NoError(t, h.run(t, "", "shell", "python"))
	require.NoError(t, h.run(t, "app", "shell", "python", "--", "-l"))
	require.Equal(t, []string{
		"docker-compose -f " + file + " exec python /bin/bash",
		"docker-compose -f " + file + " exec app /bin/bash -l",
	}, h.rec.Lines())
}

func TestCleanAppendsExtrasAfterDefaults(t *testing.T) {
	h := newHarness(t)
	file := h.proj.AddService("rust")
	require.NoError(t, h.run(t, "", "clean", "rust", "--remove-orphans"))
	require.Equal(t, []string{"docker-compose -f " + file + " down -v --rmi all --remove-orphans"}, h.rec.Lines())
}

func TestRunStopsAfterExecFailure(t *testing.T) {
	h := newHarness(t)
	file := h.proj.AddService("demo")
	h.rec.On("docker-compose -f "+file+" exec", testutil.Reply{Code: 2})

	err := h.run(t, "", "run", "demo", "pytest", "-q")
	require.Equal(t, 2, exitCode(t, err))
	require.Equal(t, []string{
		"docker-compose -f " + file + " up -d",
		"docker-compose -f " + file + " exec demo pytest -q",
		"docker-compose -f " + file + " down",
	}, h.rec.Lines())
	require.Contains(t, h.stderr.String(), `step "exec" exited with status 2`)
}

func TestRunReportsExecStatusWhenStopAlsoFails(t *testing.T) {
	h := newHarness(t)
	file := h.proj.AddService("demo")
	h.rec.On("docker-compose -f "+file+" exec", testutil.Reply{Code: 2})
	h.rec.On("docker-compose -f "+file+" down", testutil.Reply{Code: 6})

	err := h.run(t, "", "run", "demo", "false")
	require.Equal(t, 2, exitCode(t, err))
}

func TestRunSuccess(t *testing.T) {
	h := newHarness(t)
	h.proj.AddService("demo")
	require.NoError(t, h.run(t, "", "run", "demo", "--", "echo", "hi"))
	require.Len(t, h.rec.Calls(), 3)
}

func TestRunNeedsCommand(t *testing.T) {
	h := newHarness(t)
	h.proj.AddService("demo")
	err := h.run(t, "", "run", "demo", "--")
	require.ErrorIs(t, err, errRunNeedsCommand)
	require.Empty(t, h.rec.Calls())
}

func TestRunStepsShape(t *testing.T) {
	svc := compose.Service{Name: "demo", File: filepath.Join("p", "demo", "docker-compose.yml")}
	steps, err := RunSteps(svc, "", []string{"ls"})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	require.Equal(t, "up", steps[0].Request.SubAction)
	require.Equal(t, "exec", steps[1].Request.SubAction)
	require.Equal(t, "demo", steps[1].Request.Target)
	require.Equal(t, "down", steps[2].Request.SubAction)
	require.True(t, steps[2].Cleanup)
	require.False(t, steps[1].Cleanup)
}

func TestList(t *testing.T) {
	h := newHarness(t)
	h.proj.AddService("rust")
	h.proj.AddService("go")
	h.proj.WriteFile(filepath.Join("docs", "README.md"), "")

	require.NoError(t, h.run(t, "", "list"))
	require.Equal(t, "Available services:\n- go\n- rust\n", h.stdout.String())
}
