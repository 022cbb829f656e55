package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
	"github.com/hallvardnmbu/docker/cli/doc/internal/launcher"
	"github.com/hallvardnmbu/docker/cli/doc/internal/paths"
	"github.com/hallvardnmbu/docker/cli/doc/internal/testutil"
)

type cli struct {
	proj   *testutil.Project
	rec    *testutil.Recorder
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Setenv("DOC_DEBUG", "")
	t.Setenv("DOC_LOG_LEVEL", "")
	return &cli{proj: testutil.NewProject(t), rec: testutil.NewRecorder()}
}

func (c *cli) run(args ...string) int {
	a := &app{
		stdin:  strings.NewReader(""),
		stdout: &c.stdout,
		stderr: &c.stderr,
		exec:   c.rec,
		host:   launcher.Host{GOOS: "linux"},
		sources: paths.Sources{
			Persisted: config.ReadRoot,
			Cwd:       func() (string, error) { return c.proj.Root, nil },
		},
	}
	return a.run(args)
}

func TestStartFromExplicitRoot(t *testing.T) {
	c := newCLI(t)
	file := c.proj.AddService("demo")

	require.Equal(t, 0, c.run("--root", c.proj.Root, "start", "demo"))
	assert.Equal(t, []string{"docker-compose -f " + file + " up -d"}, c.rec.Lines())
}

func TestRootFallsBackToSavedConfig(t *testing.T) {
	c := newCLI(t)
	other := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(other, "saved"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(other, "saved", "docker-compose.yml"), []byte("services: {}\n"), 0o644))
	_, err := config.WriteRoot(other)
	require.NoError(t, err)

	require.Equal(t, 0, c.run("list"))
	assert.Equal(t, "Available services:\n- saved\n", c.stdout.String())
}

func TestRootFallsBackToWorkingDirectory(t *testing.T) {
	c := newCLI(t)
	c.proj.AddService("python")
	c.proj.AddService("go")

	require.Equal(t, 0, c.run("list"))
	assert.Equal(t, "Available services:\n- go\n- python\n", c.stdout.String())
}

func TestMissingServiceIsOneErrorLine(t *testing.T) {
	c := newCLI(t)

	require.Equal(t, 1, c.run("build", "ghost"))
	assert.Equal(t, "Error: docker-compose.yml not found for service: ghost\n", c.stderr.String())
	assert.Empty(t, c.rec.Calls())
}

func TestChildStatusPassesThroughSilently(t *testing.T) {
	c := newCLI(t)
	file := c.proj.AddService("demo")
	c.rec.On("docker-compose -f "+file+" build", testutil.Reply{Code: 42})

	require.Equal(t, 42, c.run("build", "demo", "--no-cache"))
	assert.Equal(t, []string{"docker-compose -f " + file + " build --no-cache"}, c.rec.Lines())
	assert.NotContains(t, c.stderr.String(), "Error:")
}

func TestTrailingFlagsReachCompose(t *testing.T) {
	c := newCLI(t)
	file := c.proj.AddService("demo")

	require.Equal(t, 0, c.run("logs", "demo", "-f", "--tail", "10"))
	require.Equal(t, 0, c.run("--service", "app", "shell", "demo", "--", "-l"))
	assert.Equal(t, []string{
		"docker-compose -f " + file + " logs -f --tail 10",
		"docker-compose -f " + file + " exec app /bin/bash -l",
	}, c.rec.Lines())
}

func TestRunReportsExecStatusAfterStop(t *testing.T) {
	c := newCLI(t)
	file := c.proj.AddService("demo")
	c.rec.On("docker-compose -f "+file+" exec", testutil.Reply{Code: 3})

	require.Equal(t, 3, c.run("run", "demo", "pytest", "-x"))
	assert.Equal(t, []string{
		"docker-compose -f " + file + " up -d",
		"docker-compose -f " + file + " exec demo pytest -x",
		"docker-compose -f " + file + " down",
	}, c.rec.Lines())
	assert.Contains(t, c.stderr.String(), `step "exec" exited with status 3`)
}

func TestDryRunPrintsInsteadOfRunning(t *testing.T) {
	c := newCLI(t)
	file := c.proj.AddService("demo")

	require.Equal(t, 0, c.run("--dry-run", "stop", "demo"))
	assert.Empty(t, c.rec.Calls())
	assert.Contains(t, c.stderr.String(), "+ docker-compose -f "+file+" down")
}

func TestComposeCommandFromSettings(t *testing.T) {
	c := newCLI(t)
	file := c.proj.AddService("demo")
	require.NoError(t, os.WriteFile(os.Getenv("DOC_CONFIG"), []byte("compose_command: docker compose\n"), 0o644))

	require.Equal(t, 0, c.run("start", "demo"))
	assert.Equal(t, []string{"docker compose -f " + file + " up -d"}, c.rec.Lines())
}

func TestMalformedSettingsFail(t *testing.T) {
	c := newCLI(t)
	c.proj.AddService("demo")
	require.NoError(t, os.WriteFile(os.Getenv("DOC_CONFIG"), []byte("compose_command: [\n"), 0o644))

	require.Equal(t, 1, c.run("start", "demo"))
	assert.True(t, strings.HasPrefix(c.stderr.String(), "Error: "))
	assert.Empty(t, c.rec.Calls())
}

func TestLaunchFailureExitsOne(t *testing.T) {
	c := newCLI(t)
	c.proj.AddService("demo")
	c.rec.On("docker-compose", testutil.Reply{NotFound: true})

	require.Equal(t, 1, c.run("start", "demo"))
	assert.Contains(t, c.stderr.String(), "Error: ")
	assert.Contains(t, c.stderr.String(), "docker-compose")
}

func TestUsageErrors(t *testing.T) {
	c := newCLI(t)

	assert.Equal(t, 1, c.run())
	assert.Contains(t, c.stdout.String(), "Available Commands:")

	assert.Equal(t, 1, c.run("frobnicate"))
	assert.Contains(t, c.stderr.String(), `Error: unknown command "frobnicate"`)

	c.stderr.Reset()
	assert.Equal(t, 1, c.run("run", "demo"))
	assert.Contains(t, c.stderr.String(), "Error: requires at least 2 arg(s)")
}

func TestRegistryCoversEveryVerb(t *testing.T) {
	reg := newRegistry()
	for _, name := range []string{
		"list", "build", "start", "shell", "stop", "clean", "logs", "run",
		"init", "setup", "status", "test", "preflight",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
}
