package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hallvardnmbu/docker/cli/doc/internal/compose"
	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
	"github.com/hallvardnmbu/docker/cli/doc/internal/ui"
)

// Runner executes compose invocations.
type Runner struct {
	Exec execx.Executor
	// Tool is the compose executable; ToolArgs are its leading arguments
	// (e.g. "compose" when Tool is "docker").
	Tool     string
	ToolArgs []string
	DryRun   bool
	// Out receives dry-run lines and chain failure messages. Nil means stderr.
	Out io.Writer
}

// Request describes one compose call before it is shaped into argv.
type Request struct {
	File      string
	SubAction string
	// Target is inserted right after SubAction; only set for exec.
	Target string
	Args   []string
	Dir    string
	Env    []string
}

// Plan translates verb for svc into a Request. targetOverride is the
// invocation-wide --service value and only matters for exec sub-actions.
func Plan(svc compose.Service, verb compose.Verb, targetOverride string, extra []string) (Request, error) {
	spec, ok := compose.Spec(verb)
	if !ok {
		return Request{}, fmt.Errorf("unknown action %q", verb)
	}
	sub, args, err := compose.Translate(verb, extra)
	if err != nil {
		return Request{}, err
	}
	req := Request{
		File:      svc.File,
		SubAction: sub,
		Args:      args,
		Dir:       svc.Dir,
		Env:       svc.Config.EnvList(),
	}
	if spec.NeedsTarget {
		req.Target = svc.Target(targetOverride)
	}
	return req, nil
}

// Invocation shapes req into the exact process call.
func (r *Runner) Invocation(req Request) execx.Invocation {
	args := append([]string{}, r.ToolArgs...)
	args = append(args, "-f", req.File, req.SubAction)
	if req.SubAction == "exec" && strings.TrimSpace(req.Target) != "" {
		args = append(args, req.Target)
	}
	args = append(args, req.Args...)
	return execx.Invocation{Name: r.Tool, Args: args, Dir: req.Dir, Env: req.Env}
}

// Invoke runs req to completion with inherited stdio. The returned status is
// the child's exit status. A non-nil error means the tool could not be
// started at all (execx.ErrLaunch) and the status is 1.
func (r *Runner) Invoke(ctx context.Context, req Request) (int, error) {
	inv := r.Invocation(req)
	if r.DryRun {
		fmt.Fprintln(r.out(), "+ "+inv.String())
		return 0, nil
	}
	res := r.Exec.Run(ctx, inv)
	if !res.Started() {
		return 1, res.Err
	}
	if res.Code != 0 {
		log.WithFields(log.Fields{"sub_action": req.SubAction, "status": res.Code}).Debug("compose exited non-zero")
	}
	return res.Code, nil
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stderr
}

// Step is one element of a chained operation.
type Step struct {
	Name    string
	Request Request
	// Cleanup steps run even after an earlier step failed.
	Cleanup bool
}

type StepResult struct {
	Name    string
	Status  int
	Skipped bool
}

// ChainResult is the accumulated outcome of a chain.
type ChainResult struct {
	// Status is the first non-zero step status, or 0.
	Status  int
	Steps   []StepResult
	Aborted bool
}

// Chain runs steps in order. After a non-final step exits non-zero the
// failure is reported on Out, later non-cleanup steps are skipped and
// cleanup steps still run. The chain's status is the first non-zero status
// encountered. A launch failure ends the chain immediately with its error.
func (r *Runner) Chain(ctx context.Context, steps []Step) (ChainResult, error) {
	var res ChainResult
	for i, st := range steps {
		if res.Aborted && !st.Cleanup {
			res.Steps = append(res.Steps, StepResult{Name: st.Name, Skipped: true})
			continue
		}
		log.WithField("step", st.Name).Debug("chain step")
		code, err := r.Invoke(ctx, st.Request)
		if err != nil {
			res.Status = 1
			res.Steps = append(res.Steps, StepResult{Name: st.Name, Status: code})
			return res, err
		}
		res.Steps = append(res.Steps, StepResult{Name: st.Name, Status: code})
		if code == 0 {
			continue
		}
		if res.Status == 0 {
			res.Status = code
		}
		if i < len(steps)-1 && !res.Aborted {
			ui.Error(r.out(), "step %q exited with status %d", st.Name, code)
			res.Aborted = true
		}
	}
	return res, nil
}
