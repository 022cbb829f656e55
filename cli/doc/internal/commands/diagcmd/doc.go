// Package diagcmd implements the read-only status and test commands for the
// VPN-backed services named in the settings allow-list.
package diagcmd
