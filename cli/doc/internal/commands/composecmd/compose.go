package composecmd

import (
	"errors"
	"fmt"

	"github.com/hallvardnmbu/docker/cli/doc/internal/cmdregistry"
	"github.com/hallvardnmbu/docker/cli/doc/internal/compose"
	"github.com/hallvardnmbu/docker/cli/doc/internal/runner"
)

var errRunNeedsCommand = errors.New("run requires a command to execute")

// Register adds the compose commands to the registry.
func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Command{
		Name:    "list",
		Short:   "List services that have a compose file",
		MaxArgs: 0,
		Handler: handleList,
	})
	for _, v := range compose.Verbs() {
		spec, _ := compose.Spec(v)
		r.Register(cmdregistry.Command{
			Name:        string(v),
			Usage:       "<service> [-- args...]",
			Short:       spec.Summary,
			MinArgs:     1,
			MaxArgs:     -1,
			Passthrough: true,
			Handler:     handleVerb(v),
		})
	}
	r.Register(cmdregistry.Command{
		Name:        "run",
		Usage:       "<service> <command...>",
		Short:       "Start a service, run a command in it, then stop it",
		MinArgs:     2,
		MaxArgs:     -1,
		Passthrough: true,
		Handler:     handleRun,
	})
}

func handleList(ctx *cmdregistry.Context) error {
	names, err := compose.List(ctx.Root, ctx.Settings.ComposeFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Stdout, "Available services:")
	for _, n := range names {
		fmt.Fprintf(ctx.Stdout, "- %s\n", n)
	}
	return nil
}

func handleVerb(v compose.Verb) cmdregistry.Handler {
	return func(ctx *cmdregistry.Context) error {
		svc, err := ctx.Service(ctx.Args[0])
		if err != nil {
			return err
		}
		req, err := runner.Plan(svc, v, ctx.Target, cmdregistry.Trailing(ctx.Args[1:]))
		if err != nil {
			return err
		}
		code, err := ctx.Runner.Invoke(ctx.Ctx, req)
		if err != nil {
			return err
		}
		return cmdregistry.Exit(code)
	}
}

// RunSteps is the start, exec, stop chain behind `run`. Stop is a cleanup
// step so the service is brought down however exec ends.
func RunSteps(svc compose.Service, target string, command []string) ([]runner.Step, error) {
	if len(command) == 0 {
		return nil, errRunNeedsCommand
	}
	start, err := runner.Plan(svc, compose.Start, target, nil)
	if err != nil {
		return nil, err
	}
	exec, err := runner.Plan(svc, compose.Exec, target, command)
	if err != nil {
		return nil, err
	}
	stop, err := runner.Plan(svc, compose.Stop, target, nil)
	if err != nil {
		return nil, err
	}
	return []runner.Step{
		{Name: "start", Request: start},
		{Name: "exec", Request: exec},
		{Name: "stop", Request: stop, Cleanup: true},
	}, nil
}

func handleRun(ctx *cmdregistry.Context) error {
	svc, err := ctx.Service(ctx.Args[0])
	if err != nil {
		return err
	}
	steps, err := RunSteps(svc, ctx.Target, cmdregistry.Trailing(ctx.Args[1:]))
	if err != nil {
		return err
	}
	res, err := ctx.Runner.Chain(ctx.Ctx, steps)
	if err != nil {
		return err
	}
	return cmdregistry.Exit(res.Status)
}
