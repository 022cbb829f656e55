// Package composecmd covers the docker-compose lifecycle commands:
// build/start/shell/stop/clean/logs, the composite run, and list.
//
// Handlers are registered with the CLI command registry so `main.go` stays
// focused on argument parsing.
package composecmd
