// Package cmdregistry defines the command registry used by the CLI
// entrypoint. Each entry names a command, declares its arguments and carries
// a handler that receives a shared Context. Command packages register
// themselves here and main.go turns the registry into the cobra command tree,
// so adding a command never touches argument parsing.
package cmdregistry
