package compose

import "fmt"

// Verb is a user-facing action name.
type Verb string

const (
	Build Verb = "build"
	Start Verb = "start"
	Shell Verb = "shell"
	Stop  Verb = "stop"
	Clean Verb = "clean"
	Logs  Verb = "logs"
	// Exec runs an arbitrary command in the running service; used by `run`.
	Exec Verb = "exec"
)

// ActionSpec maps a verb onto the compose tool's own sub-action.
type ActionSpec struct {
	SubAction string
	// Defaults always precede user-supplied arguments.
	Defaults []string
	// AppendExtra reports whether user-supplied arguments are appended.
	AppendExtra bool
	// NeedsTarget is set for sub-actions that take a service token right
	// after the sub-action name.
	NeedsTarget bool
	Summary     string
}

var actions = map[Verb]ActionSpec{
	Build: {SubAction: "build", AppendExtra: true, Summary: "Build the image for a service"},
	Start: {SubAction: "up", Defaults: []string{"-d"}, AppendExtra: true, Summary: "Start the service's containers detached"},
	Shell: {SubAction: "exec", Defaults: []string{"/bin/bash"}, AppendExtra: true, NeedsTarget: true, Summary: "Open a shell in the running service"},
	Stop:  {SubAction: "down", AppendExtra: true, Summary: "Stop the service's containers"},
	Clean: {SubAction: "down", Defaults: []string{"-v", "--rmi", "all"}, AppendExtra: true, Summary: "Remove containers, volumes and all images of a service"},
	Logs:  {SubAction: "logs", AppendExtra: true, Summary: "Show logs for a service"},
	Exec:  {SubAction: "exec", AppendExtra: true, NeedsTarget: true, Summary: "Run a command in the running service"},
}

// Verbs lists the directly dispatchable verbs in help order.
func Verbs() []Verb {
	return []Verb{Build, Start, Shell, Stop, Clean, Logs}
}

// Spec returns a fresh copy of the verb's action spec.
func Spec(v Verb) (ActionSpec, bool) {
	s, ok := actions[v]
	if !ok {
		return ActionSpec{}, false
	}
	s.Defaults = append([]string(nil), s.Defaults...)
	return s, true
}

// Translate returns the sub-action and full argument list for verb.
func Translate(v Verb, extra []string) (string, []string, error) {
	s, ok := Spec(v)
	if !ok {
		return "", nil, fmt.Errorf("unknown action %q", v)
	}
	args := append(make([]string, 0, len(s.Defaults)+len(extra)), s.Defaults...)
	if s.AppendExtra {
		args = append(args, extra...)
	}
	return s.SubAction, args, nil
}
