package setupcmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hallvardnmbu/docker/cli/doc/internal/fsutil"
	"github.com/hallvardnmbu/docker/cli/doc/internal/paths"
	"github.com/hallvardnmbu/docker/cli/doc/internal/prompt"
	"github.com/hallvardnmbu/docker/cli/doc/internal/ui"
)

// DefaultWebUIPassword is used when the user just presses Enter.
const DefaultWebUIPassword = "SecureTorrent2024!"

const (
	ovpnURL  = "https://my.nordaccount.com/dashboard/nordvpn/manual-configuration/openvpn/"
	credsURL = "https://my.nordaccount.com/dashboard/nordvpn/manual-configuration/service-credentials/"
)

var (
	errEmptyUsername = errors.New("username cannot be empty")
	errEmptyPassword = errors.New("password cannot be empty")
)

// vpnWizard prepares the data directories of a VPN-backed service and
// collects its credentials.
func vpnWizard(p *prompt.Prompter, w io.Writer, root, service string) error {
	l := paths.VPN(root, service)
	for _, dir := range l.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	ui.Heading(w, "VPN Container Setup", false)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This will set up:")
	fmt.Fprintln(w, "1. NordVPN OpenVPN configuration file (.ovpn)")
	fmt.Fprintln(w, "2. NordVPN service credentials")
	fmt.Fprintln(w, "3. qBittorrent Web UI password")
	fmt.Fprintln(w)

	if fsutil.Exists(l.OVPN) {
		fmt.Fprintf(w, "Step 1: OpenVPN configuration found: %s\n\n", l.OVPN)
	} else {
		ui.Heading(w, "Step 1: NordVPN OpenVPN Configuration", true)
		fmt.Fprintln(w, "OpenVPN configuration not found.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Download your .ovpn file from:")
		fmt.Fprintln(w, ovpnURL)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Place it at: %s\n\n", l.OVPN)
	}

	if fsutil.Exists(l.Auth) {
		fmt.Fprintf(w, "Step 2: VPN credentials already configured: %s\n\n", l.Auth)
	} else if err := collectCredentials(p, w, l.Auth); err != nil {
		return err
	}

	ui.Heading(w, "Step 3: qBittorrent Web UI Password", true)
	if fsutil.Exists(l.Password) {
		existing, _ := os.ReadFile(l.Password)
		fmt.Fprintf(w, "Current password file exists: %s\n", l.Password)
		change, err := p.Confirm("Do you want to change the password? (y/N): ")
		if err != nil {
			return err
		}
		if change {
			if err := collectWebUIPassword(p, w, l.Password); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(w, "Keeping existing password.")
			fmt.Fprintf(w, "Current password: %s\n\n", strings.TrimSpace(string(existing)))
		}
	} else if err := collectWebUIPassword(p, w, l.Password); err != nil {
		return err
	}

	summary(w, l, service)
	return nil
}

func collectCredentials(p *prompt.Prompter, w io.Writer, authFile string) error {
	ui.Heading(w, "Step 2: NordVPN Service Credentials", true)
	fmt.Fprintln(w, "Get your service credentials from:")
	fmt.Fprintln(w, credsURL)
	fmt.Fprintln(w)

	user, err := p.Line("Service Username: ")
	if err != nil && !errors.Is(err, prompt.ErrNoInput) {
		return err
	}
	if user == "" {
		return errEmptyUsername
	}
	pass, err := p.Secret("Service Password: ")
	if err != nil && !errors.Is(err, prompt.ErrNoInput) {
		return err
	}
	if pass == "" {
		return errEmptyPassword
	}
	if err := fsutil.WriteSecure(authFile, []byte(user+"\n"+pass+"\n")); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	fmt.Fprintf(w, "VPN credentials saved to: %s\n\n", authFile)
	return nil
}

func collectWebUIPassword(p *prompt.Prompter, w io.Writer, file string) error {
	pass, err := p.Secret(fmt.Sprintf("Enter qBittorrent Web UI password (or press Enter for default '%s'): ", DefaultWebUIPassword))
	if err != nil && !errors.Is(err, prompt.ErrNoInput) {
		return err
	}
	if pass == "" {
		pass = DefaultWebUIPassword
	}
	if err := fsutil.WriteSecure(file, []byte(pass)); err != nil {
		return fmt.Errorf("failed to write password file: %w", err)
	}
	fmt.Fprintf(w, "qBittorrent password saved: %s\n", pass)
	fmt.Fprintf(w, "Password file: %s\n\n", file)
	return nil
}

func summary(w io.Writer, l paths.VPNLayout, service string) {
	ui.Heading(w, "Setup Summary", false)
	if fsutil.Exists(l.OVPN) && fsutil.Exists(l.Auth) {
		fmt.Fprintln(w, "All files are ready:")
		fmt.Fprintf(w, "  OpenVPN config: %s\n", l.OVPN)
		fmt.Fprintf(w, "  VPN credentials: %s\n", l.Auth)
		fmt.Fprintf(w, "  qBittorrent password: %s\n", l.Password)
		fmt.Fprintf(w, "  Downloads directory: %s\n", l.Downloads)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Commands:")
		fmt.Fprintf(w, "  Start container: doc start %s\n", service)
		fmt.Fprintf(w, "  Check status: doc status %s\n", service)
		fmt.Fprintf(w, "  Run tests: doc test %s\n", service)
		fmt.Fprintf(w, "  View logs: doc logs %s\n", service)
		return
	}
	fmt.Fprintln(w, "Setup incomplete. You still need to:")
	if !fsutil.Exists(l.OVPN) {
		fmt.Fprintln(w, "  1. Download your NordVPN .ovpn file")
		fmt.Fprintf(w, "     Place it at: %s\n", l.OVPN)
	}
	if !fsutil.Exists(l.Auth) {
		fmt.Fprintln(w, "  2. Run this setup command again to configure VPN credentials")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Then run: doc start %s\n", service)
}
