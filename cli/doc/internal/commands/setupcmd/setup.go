package setupcmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hallvardnmbu/docker/cli/doc/internal/cmdregistry"
	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
	"github.com/hallvardnmbu/docker/cli/doc/internal/fsutil"
	"github.com/hallvardnmbu/docker/cli/doc/internal/launcher"
	"github.com/hallvardnmbu/docker/cli/doc/internal/prompt"
)

// Register adds init and setup to the registry.
func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Command{
		Name:    "init",
		Short:   "Save the project root path",
		MaxArgs: 0,
		Handler: handleInit,
	})
	r.Register(cmdregistry.Command{
		Name:        "setup",
		Usage:       "[service] [-- script args...]",
		Short:       "Configure the project root and, optionally, a service",
		MaxArgs:     -1,
		Passthrough: true,
		Handler:     handleSetup,
	})
}

func handleInit(ctx *cmdregistry.Context) error {
	p := prompt.New(ctx.Stdin, ctx.Stdout)
	fmt.Fprintln(ctx.Stdout, "Enter the absolute path to your project root (where service subdirs are):")
	answer, err := p.Line("> ")
	if err != nil && !errors.Is(err, prompt.ErrNoInput) {
		return err
	}
	_, err = saveRoot(ctx, answer)
	return err
}

func handleSetup(ctx *cmdregistry.Context) error {
	p := prompt.New(ctx.Stdin, ctx.Stdout)
	answer, err := p.Line(fmt.Sprintf("Project root [%s]: ", ctx.Root))
	if err != nil && !errors.Is(err, prompt.ErrNoInput) {
		return err
	}
	if answer == "" {
		answer = ctx.Root
	}
	root, err := saveRoot(ctx, answer)
	if err != nil {
		return err
	}
	ctx.Root = root

	if len(ctx.Args) == 0 || ctx.Args[0] == "--" {
		return nil
	}
	service := ctx.Args[0]
	svc, err := ctx.Service(service)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Stdout)

	did := false
	if ctx.Settings.DiagnosticsAllowed(service) {
		if err := vpnWizard(p, ctx.Stdout, root, service); err != nil {
			return err
		}
		did = true
	}
	script := svc.Config.SetupScriptPath(svc.Dir)
	if fsutil.Exists(script) {
		log.WithFields(log.Fields{"service": service, "script": script}).Debug("running setup script")
		code, err := ctx.Launcher.Run(ctx.Ctx, launcher.Request{
			Script: script,
			Args:   cmdregistry.Trailing(ctx.Args[1:]),
			Dir:    svc.Dir,
		})
		if err != nil {
			return err
		}
		return cmdregistry.Exit(code)
	}
	if !did {
		fmt.Fprintf(ctx.Stdout, "Nothing to set up for %s (no %s and no VPN configuration).\n", service, filepath.Base(script))
	}
	return nil
}

// saveRoot validates answer as a directory, makes it absolute and persists
// it unless this is a dry run. It returns the absolute root.
func saveRoot(ctx *cmdregistry.Context, answer string) (string, error) {
	w := ctx.Stdout
	answer = strings.TrimSpace(answer)
	if !fsutil.IsDir(answer) {
		return "", fmt.Errorf("not a valid directory: %s", answer)
	}
	abs, err := filepath.Abs(answer)
	if err != nil {
		return "", err
	}
	if ctx.DryRun {
		fmt.Fprintf(w, "Would save project root %s (dry run)\n", abs)
		return abs, nil
	}
	path, err := config.WriteRoot(abs)
	if err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(w, "Saved project root to %s\n", path)
	return abs, nil
}
