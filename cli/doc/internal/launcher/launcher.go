package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
)

// ErrNoProvider matches any NoProviderError via errors.Is.
var ErrNoProvider = errors.New("no shell provider available")

// Request is one script to run.
type Request struct {
	Script string
	Args   []string
	Dir    string
}

// Strategy proposes how one shell provider would run a request. Build
// reports false when the provider is not installed at all.
type Strategy struct {
	Provider string
	Build    func(Request) (execx.Invocation, bool)
}

// Host describes the platform the strategies are chosen for. Tests inject a
// fake one to exercise the Windows chain anywhere.
type Host struct {
	GOOS     string
	Getenv   func(string) string
	LookPath func(string) (string, error)
	Exists   func(string) bool
}

// SystemHost returns the running platform.
func SystemHost() Host {
	return Host{
		GOOS:     runtime.GOOS,
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		Exists: func(p string) bool {
			st, err := os.Stat(p)
			return err == nil && !st.IsDir()
		},
	}
}

// NoProviderError means every strategy failed to start.
type NoProviderError struct {
	Script string
	Tried  []string
	Manual string
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("could not run %s: none of %s could be started; install one of them, or run manually: %s",
		e.Script, strings.Join(e.Tried, ", "), e.Manual)
}

func (e *NoProviderError) Is(target error) bool { return target == ErrNoProvider }

// Launcher runs scripts through the first strategy that starts.
type Launcher struct {
	Exec       execx.Executor
	Host       Host
	Strategies []Strategy
	DryRun     bool
	Out        io.Writer
}

// New returns a launcher with the strategies appropriate for host.
func New(ex execx.Executor, host Host) *Launcher {
	return &Launcher{Exec: ex, Host: host, Strategies: Strategies(host)}
}

// Strategies returns the ordered strategies for host.
func Strategies(h Host) []Strategy {
	if h.GOOS != "windows" {
		return []Strategy{posixShell(h)}
	}
	return []Strategy{gitBash(h), wsl(h), powershellWSL(h)}
}

// Run executes req and returns the script's exit status.
func (l *Launcher) Run(ctx context.Context, req Request) (int, error) {
	var tried []string
	for _, st := range l.Strategies {
		tried = append(tried, st.Provider)
		inv, ok := st.Build(req)
		if !ok {
			log.WithField("provider", st.Provider).Debug("shell provider not installed")
			continue
		}
		if l.DryRun {
			fmt.Fprintln(l.out(), "+ "+inv.String())
			return 0, nil
		}
		res := l.Exec.Run(ctx, inv)
		if !res.Started() {
			log.WithFields(log.Fields{"provider": st.Provider, "error": res.Err}).Debug("shell provider failed to start")
			continue
		}
		return res.Code, nil
	}
	return 1, &NoProviderError{Script: req.Script, Tried: tried, Manual: ManualCommand(l.Host.GOOS, req)}
}

func (l *Launcher) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stderr
}

// ManualCommand is the command line a user can run themselves.
func ManualCommand(goos string, req Request) string {
	script := req.Script
	args := req.Args
	if goos == "windows" {
		script = ToMSYSPath(script)
		args = translateArgs(args, ToMSYSPath)
	}
	parts := []string{"bash", shQuote(script)}
	for _, a := range args {
		parts = append(parts, shQuote(a))
	}
	cmd := strings.Join(parts, " ")
	if req.Dir != "" {
		dir := req.Dir
		if goos == "windows" {
			dir = ToMSYSPath(dir)
		}
		cmd = "cd " + shQuote(dir) + " && " + cmd
	}
	return cmd
}

func posixShell(h Host) Strategy {
	return Strategy{
		Provider: "sh",
		Build: func(req Request) (execx.Invocation, bool) {
			shell := "sh"
			if h.LookPath != nil {
				if _, err := h.LookPath("bash"); err == nil {
					shell = "bash"
				}
			}
			return execx.Invocation{
				Name: shell,
				Args: append([]string{req.Script}, req.Args...),
				Dir:  req.Dir,
			}, true
		},
	}
}

func gitBash(h Host) Strategy {
	return Strategy{
		Provider: "Git Bash",
		Build: func(req Request) (execx.Invocation, bool) {
			bash := findGitBash(h)
			if bash == "" {
				return execx.Invocation{}, false
			}
			args := append([]string{ToMSYSPath(req.Script)}, translateArgs(req.Args, ToMSYSPath)...)
			return execx.Invocation{Name: bash, Args: args, Dir: req.Dir}, true
		},
	}
}

func wsl(h Host) Strategy {
	return Strategy{
		Provider: "WSL",
		Build: func(req Request) (execx.Invocation, bool) {
			name := findWindowsTool(h, "wsl.exe")
			if name == "" {
				return execx.Invocation{}, false
			}
			args := append([]string{"-e", "bash", ToWSLPath(req.Script)}, translateArgs(req.Args, ToWSLPath)...)
			return execx.Invocation{Name: name, Args: args, Dir: req.Dir}, true
		},
	}
}

func powershellWSL(h Host) Strategy {
	return Strategy{
		Provider: "PowerShell (WSL)",
		Build: func(req Request) (execx.Invocation, bool) {
			name := findWindowsTool(h, "powershell.exe")
			if name == "" {
				name = findWindowsTool(h, "pwsh.exe")
			}
			if name == "" {
				return execx.Invocation{}, false
			}
			parts := []string{"&", "wsl", "-e", "bash", psQuote(ToWSLPath(req.Script))}
			for _, a := range translateArgs(req.Args, ToWSLPath) {
				parts = append(parts, psQuote(a))
			}
			args := []string{"-NoProfile", "-NonInteractive", "-Command", strings.Join(parts, " ")}
			return execx.Invocation{Name: name, Args: args, Dir: req.Dir}, true
		},
	}
}

// findGitBash prefers the standard Git for Windows install locations, then a
// bash.exe on PATH that is not the System32 WSL shim.
func findGitBash(h Host) string {
	var candidates []string
	for _, env := range []string{"ProgramFiles", "ProgramW6432", "ProgramFiles(x86)"} {
		if base := getenv(h, env); base != "" {
			candidates = append(candidates, winJoin(base, `Git\bin\bash.exe`))
		}
	}
	if local := getenv(h, "LOCALAPPDATA"); local != "" {
		candidates = append(candidates, winJoin(local, `Programs\Git\bin\bash.exe`))
	}
	for _, c := range candidates {
		if h.Exists != nil && h.Exists(c) {
			return c
		}
	}
	if h.LookPath != nil {
		if p, err := h.LookPath("bash.exe"); err == nil && !strings.Contains(strings.ToLower(p), `\system32\`) {
			return p
		}
	}
	return ""
}

func findWindowsTool(h Host, exe string) string {
	if h.LookPath != nil {
		if p, err := h.LookPath(exe); err == nil {
			return p
		}
	}
	if root := getenv(h, "SystemRoot"); root != "" {
		p := winJoin(root, `System32\`+exe)
		if h.Exists != nil && h.Exists(p) {
			return p
		}
	}
	return ""
}

func getenv(h Host, key string) string {
	if h.Getenv == nil {
		return ""
	}
	return strings.TrimSpace(h.Getenv(key))
}

func winJoin(base, rel string) string {
	return strings.TrimRight(base, `\/`) + `\` + rel
}

// IsWindowsAbs reports whether p looks like C:\... or C:/...
func IsWindowsAbs(p string) bool {
	return len(p) >= 3 && isLetter(p[0]) && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

// ToMSYSPath rewrites C:\a\b to /c/a/b. Relative paths only get their
// separators flipped.
func ToMSYSPath(p string) string {
	if IsWindowsAbs(p) {
		return "/" + strings.ToLower(p[:1]) + strings.ReplaceAll(p[2:], `\`, "/")
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// ToWSLPath rewrites C:\a\b to /mnt/c/a/b.
func ToWSLPath(p string) string {
	if IsWindowsAbs(p) {
		return "/mnt" + ToMSYSPath(p)
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// translateArgs rewrites only arguments that are absolute Windows paths;
// everything else is passed through untouched.
func translateArgs(args []string, conv func(string) string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if IsWindowsAbs(a) {
			out[i] = conv(a)
		} else {
			out[i] = a
		}
	}
	return out
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// shQuote wraps s in single quotes and escapes embedded single quotes for
// POSIX shells. Plain words are left bare.
func shQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

// psQuote single-quotes s for PowerShell, doubling embedded quotes.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
