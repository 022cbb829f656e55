// Package setupcmd holds the interactive commands: init saves the project
// root; setup also prepares a service, either by collecting VPN credentials
// for VPN-backed services or by running the service's setup script through
// the cross-platform launcher.
package setupcmd
