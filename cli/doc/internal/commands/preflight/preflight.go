package preflight

import (
	"errors"
	"fmt"

	"github.com/hallvardnmbu/docker/cli/doc/internal/cmdregistry"
	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
	"github.com/hallvardnmbu/docker/cli/doc/internal/fsutil"
)

// lookPath resolves executables; tests replace it.
var lookPath = execx.LookPath

// Register adds the preflight command to the registry.
func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Command{
		Name:    "preflight",
		Short:   "Check that docker and the compose tool are available",
		MaxArgs: 0,
		Handler: handle,
	})
}

func handle(ctx *cmdregistry.Context) error {
	out, errw := ctx.Stdout, ctx.Stderr
	ok := true

	tool, _ := ctx.Settings.ComposeArgv()
	if p, found := lookPath(tool); found {
		fmt.Fprintf(out, "[preflight] %s: OK (%s)\n", tool, p)
	} else {
		fmt.Fprintf(errw, "[preflight] %s not found on PATH\n", tool)
		ok = false
	}

	docker := ctx.Settings.DockerCommand
	if p, found := lookPath(docker); !found {
		fmt.Fprintf(errw, "[preflight] %s not found on PATH (status/test need it)\n", docker)
	} else {
		_, res := ctx.Exec.Capture(ctx.Ctx, execx.Invocation{Name: docker, Args: []string{"version"}})
		if res.OK() {
			fmt.Fprintf(out, "[preflight] %s: OK (%s)\n", docker, p)
		} else {
			fmt.Fprintf(errw, "[preflight] %s found but daemon unreachable\n", docker)
		}
	}

	if fsutil.IsDir(ctx.Root) {
		fmt.Fprintf(out, "[preflight] project root: OK (%s)\n", ctx.Root)
	} else {
		fmt.Fprintf(errw, "[preflight] project root is not a directory: %s (run: doc init)\n", ctx.Root)
	}

	if !ok {
		return errors.New("preflight checks failed")
	}
	return nil
}
