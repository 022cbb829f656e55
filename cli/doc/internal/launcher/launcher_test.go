package launcher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallvardnmbu/docker/cli/doc/internal/testutil"
)

type fakeHost struct {
	env   map[string]string
	path  map[string]string
	files map[string]bool
}

func (f fakeHost) host(goos string) Host {
	return Host{
		GOOS:   goos,
		Getenv: func(k string) string { return f.env[k] },
		LookPath: func(name string) (string, error) {
			if p, ok := f.path[name]; ok {
				return p, nil
			}
			return "", errors.New("not found")
		},
		Exists: func(p string) bool { return f.files[p] },
	}
}

func windowsHost() Host {
	return fakeHost{
		env: map[string]string{
			"ProgramFiles": `C:\Program Files`,
			"SystemRoot":   `C:\Windows`,
		},
		path: map[string]string{
			"wsl.exe":        `C:\Windows\System32\wsl.exe`,
			"powershell.exe": `C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`,
		},
		files: map[string]bool{
			`C:\Program Files\Git\bin\bash.exe`: true,
		},
	}.host("windows")
}

var winReq = Request{
	Script: `C:\proj\torrenting\setup.sh`,
	Args:   []string{"--out", `D:\data\vpn`, "plain"},
	Dir:    `C:\proj\torrenting`,
}

func TestPathTranslation(t *testing.T) {
	assert.Equal(t, "/c/proj/x/setup.sh", ToMSYSPath(`C:\proj\x\setup.sh`))
	assert.Equal(t, "/d/a/b", ToMSYSPath("D:/a/b"))
	assert.Equal(t, "/mnt/c/proj/x/setup.sh", ToWSLPath(`C:\proj\x\setup.sh`))
	assert.Equal(t, "scripts/setup.sh", ToWSLPath(`scripts\setup.sh`))
	assert.Equal(t, "/already/posix", ToMSYSPath("/already/posix"))
	assert.False(t, IsWindowsAbs("C:relative"))
	assert.True(t, IsWindowsAbs(`z:\`))
}

func TestPosixStrategyRunsScriptDirectly(t *testing.T) {
	rec := testutil.NewRecorder().On("bash", testutil.Reply{Code: 0})
	host := fakeHost{path: map[string]string{"bash": "/bin/bash"}}.host("linux")
	l := New(rec, host)

	code, err := l.Run(context.Background(), Request{Script: "/proj/svc/setup.sh", Args: []string{"a b"}, Dir: "/proj/svc"})
	require.NoError(t, err)
	require.Equal(t, 0, code)
	calls := rec.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, []string{"bash", "/proj/svc/setup.sh", "a b"}, calls[0].Argv())
	require.Equal(t, "/proj/svc", calls[0].Dir)
}

func TestPosixStrategyFallsBackToSh(t *testing.T) {
	rec := testutil.NewRecorder()
	l := New(rec, fakeHost{}.host("darwin"))
	_, err := l.Run(context.Background(), Request{Script: "/s.sh"})
	require.NoError(t, err)
	require.Equal(t, "sh /s.sh", rec.Lines()[0])
}

func TestScriptExitStatusPropagates(t *testing.T) {
	rec := testutil.NewRecorder().On("sh", testutil.Reply{Code: 7})
	l := New(rec, fakeHost{}.host("linux"))
	code, err := l.Run(context.Background(), Request{Script: "/s.sh"})
	require.NoError(t, err)
	require.Equal(t, 7, code)
}

func TestWindowsPrefersGitBash(t *testing.T) {
	rec := testutil.NewRecorder()
	l := New(rec, windowsHost())
	_, err := l.Run(context.Background(), winReq)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, []string{
		`C:\Program Files\Git\bin\bash.exe`,
		"/c/proj/torrenting/setup.sh", "--out", "/d/data/vpn", "plain",
	}, calls[0].Argv())
	require.Equal(t, `C:\proj\torrenting`, calls[0].Dir)
}

func TestWindowsFallsBackToWSLWhenGitBashFailsToStart(t *testing.T) {
	rec := testutil.NewRecorder().
		On(`C:\Program Files\Git\bin\bash.exe`, testutil.Reply{NotFound: true}).
		On(`C:\Windows\System32\wsl.exe`, testutil.Reply{Code: 3})
	l := New(rec, windowsHost())

	code, err := l.Run(context.Background(), winReq)
	require.NoError(t, err)
	require.Equal(t, 3, code, "a provider that started owns the result")

	calls := rec.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, []string{
		`C:\Windows\System32\wsl.exe`,
		"-e", "bash", "/mnt/c/proj/torrenting/setup.sh", "--out", "/mnt/d/data/vpn", "plain",
	}, calls[1].Argv())
}

func TestWindowsPowerShellWrapsWSL(t *testing.T) {
	rec := testutil.NewRecorder().
		On(`C:\Program Files\Git`, testutil.Reply{NotFound: true}).
		On(`C:\Windows\System32\wsl.exe`, testutil.Reply{NotFound: true})
	l := New(rec, windowsHost())

	_, err := l.Run(context.Background(), Request{Script: `C:\p\it's.sh`, Args: []string{"x"}})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 3)
	last := calls[2]
	require.True(t, strings.HasSuffix(last.Name, "powershell.exe"))
	require.Equal(t, []string{"-NoProfile", "-NonInteractive", "-Command", `& wsl -e bash '/mnt/c/p/it''s.sh' 'x'`}, last.Args)
}

func TestWindowsSkipsUninstalledProviders(t *testing.T) {
	rec := testutil.NewRecorder()
	host := fakeHost{path: map[string]string{"wsl.exe": `C:\Windows\System32\wsl.exe`}}.host("windows")
	l := New(rec, host)

	_, err := l.Run(context.Background(), winReq)
	require.NoError(t, err)
	require.Len(t, rec.Calls(), 1)
	require.Equal(t, `C:\Windows\System32\wsl.exe`, rec.Calls()[0].Name)
}

func TestGitBashIgnoresSystem32Shim(t *testing.T) {
	host := fakeHost{path: map[string]string{"bash.exe": `C:\Windows\System32\bash.exe`}}.host("windows")
	require.Equal(t, "", findGitBash(host))

	host = fakeHost{path: map[string]string{"bash.exe": `C:\tools\msys\bash.exe`}}.host("windows")
	require.Equal(t, `C:\tools\msys\bash.exe`, findGitBash(host))
}

func TestAllProvidersFail(t *testing.T) {
	rec := testutil.NewRecorder().On("", testutil.Reply{NotFound: true})
	l := New(rec, windowsHost())

	code, err := l.Run(context.Background(), winReq)
	require.Equal(t, 1, code)
	require.ErrorIs(t, err, ErrNoProvider)

	var npe *NoProviderError
	require.ErrorAs(t, err, &npe)
	require.Equal(t, []string{"Git Bash", "WSL", "PowerShell (WSL)"}, npe.Tried)
	require.Equal(t, "cd /c/proj/torrenting && bash /c/proj/torrenting/setup.sh --out /d/data/vpn plain", npe.Manual)
	for _, p := range npe.Tried {
		require.Contains(t, err.Error(), p)
	}
}

func TestNoProvidersInstalled(t *testing.T) {
	rec := testutil.NewRecorder()
	l := New(rec, fakeHost{}.host("windows"))
	_, err := l.Run(context.Background(), winReq)
	require.ErrorIs(t, err, ErrNoProvider)
	require.Empty(t, rec.Calls())
}

func TestDryRunPrintsFirstAvailable(t *testing.T) {
	rec := testutil.NewRecorder()
	var out bytes.Buffer
	l := New(rec, windowsHost())
	l.DryRun = true
	l.Out = &out

	code, err := l.Run(context.Background(), winReq)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Empty(t, rec.Calls())
	require.Contains(t, out.String(), "/c/proj/torrenting/setup.sh")
}

func TestManualCommandQuotes(t *testing.T) {
	got := ManualCommand("linux", Request{Script: "/p/setup.sh", Args: []string{"two words", "it's"}})
	require.Equal(t, `bash /p/setup.sh 'two words' 'it'"'"'s'`, got)
}
