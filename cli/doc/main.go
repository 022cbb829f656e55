package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hallvardnmbu/docker/cli/doc/internal/cmdregistry"
	"github.com/hallvardnmbu/docker/cli/doc/internal/commands/composecmd"
	"github.com/hallvardnmbu/docker/cli/doc/internal/commands/diagcmd"
	"github.com/hallvardnmbu/docker/cli/doc/internal/commands/preflight"
	"github.com/hallvardnmbu/docker/cli/doc/internal/commands/setupcmd"
	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
	"github.com/hallvardnmbu/docker/cli/doc/internal/launcher"
	"github.com/hallvardnmbu/docker/cli/doc/internal/logging"
	"github.com/hallvardnmbu/docker/cli/doc/internal/paths"
	"github.com/hallvardnmbu/docker/cli/doc/internal/runner"
	"github.com/hallvardnmbu/docker/cli/doc/internal/ui"
)

// app holds the process boundaries so tests can run the whole command tree
// against a recorder.
type app struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	exec    execx.Executor
	host    launcher.Host
	sources paths.Sources
}

type globalFlags struct {
	root     string
	service  string
	dryRun   bool
	logLevel string
}

func systemApp() *app {
	return &app{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		exec:    execx.System{},
		host:    launcher.SystemHost(),
		sources: paths.DefaultSources(),
	}
}

func newRegistry() *cmdregistry.Registry {
	r := cmdregistry.New()
	composecmd.Register(r)
	setupcmd.Register(r)
	diagcmd.Register(r)
	preflight.Register(r)
	return r
}

func (a *app) rootCommand(reg *cmdregistry.Registry) *cobra.Command {
	var flags globalFlags
	var settings config.Settings

	root := &cobra.Command{
		Use:   "doc",
		Short: "Run docker-compose for per-service directories",
		Long: `doc drives docker-compose for a project whose services each live in
<root>/<service>/docker-compose.yml.

The root is --root, else the path saved by "doc init" in ~/.docconfig,
else the current directory. Global flags go before the service name;
everything after it is passed to docker-compose.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, path, err := config.ReadSettings()
			if err != nil {
				return err
			}
			settings = s
			logging.Setup(a.stderr, logging.Level(flags.logLevel, s.LogLevel))
			log.WithField("settings", path).Debug("settings loaded")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return cmdregistry.Exit(1)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.root, "root", "", "project root containing service directories")
	pf.StringVar(&flags.service, "service", "", "compose service targeted by exec/run (default: doc.yaml service, else the directory name)")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "print commands instead of running them")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	for _, c := range reg.Commands() {
		sub := &cobra.Command{
			Use:   strings.TrimSpace(c.Name + " " + c.Usage),
			Short: c.Short,
			Args:  argsFor(c),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.Handler(a.context(cmd.Context(), flags, settings, args))
			},
		}
		if c.Passthrough {
			sub.Flags().SetInterspersed(false)
		}
		root.AddCommand(sub)
	}
	return root
}

func argsFor(c cmdregistry.Command) cobra.PositionalArgs {
	if c.MaxArgs < 0 {
		return cobra.MinimumNArgs(c.MinArgs)
	}
	return cobra.RangeArgs(c.MinArgs, c.MaxArgs)
}

// context builds the per-invocation state handed to a command handler.
func (a *app) context(ctx context.Context, flags globalFlags, settings config.Settings, args []string) *cmdregistry.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	root := paths.Resolve(flags.root, a.sources)
	log.WithField("root", root).Debug("project root resolved")

	tool, toolArgs := settings.ComposeArgv()
	l := launcher.New(a.exec, a.host)
	l.DryRun = flags.dryRun
	l.Out = a.stderr

	return &cmdregistry.Context{
		Ctx:      ctx,
		DryRun:   flags.dryRun,
		Root:     root,
		Target:   flags.service,
		Args:     args,
		Settings: settings,
		Exec:     a.exec,
		Runner: &runner.Runner{
			Exec:     a.exec,
			Tool:     tool,
			ToolArgs: toolArgs,
			DryRun:   flags.dryRun,
			Out:      a.stderr,
		},
		Launcher: l,
		Stdin:    a.stdin,
		Stdout:   a.stdout,
		Stderr:   a.stderr,
	}
}

// run executes args and returns the process exit status. A child's non-zero
// status passes through silently; any other error is one "Error:" line and 1.
func (a *app) run(args []string) int {
	cmd := a.rootCommand(newRegistry())
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ee *cmdregistry.ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	ui.Error(a.stderr, "%s", err)
	return 1
}

func main() {
	os.Exit(systemApp().run(os.Args[1:]))
}
