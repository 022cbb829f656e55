package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
)

// Sources are the lookups Resolve consults after the explicit override.
type Sources struct {
	// Persisted returns the saved root, or "" when none is saved.
	Persisted func() string
	Cwd       func() (string, error)
}

// DefaultSources reads ~/.docconfig and the process working directory.
func DefaultSources() Sources {
	return Sources{Persisted: config.ReadRoot, Cwd: os.Getwd}
}

// Resolve returns the project root under which service directories live.
// Priority: a non-empty override (returned verbatim, existence is checked
// later by the service locator), then the persisted root, then the current
// directory. It never fails; if even the working directory is unavailable it
// returns ".".
func Resolve(override string, src Sources) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if src.Persisted != nil {
		if v := strings.TrimSpace(src.Persisted()); v != "" {
			return v
		}
	}
	if src.Cwd != nil {
		if wd, err := src.Cwd(); err == nil && wd != "" {
			return wd
		}
	}
	return "."
}

// ServiceDir is <root>/<service>.
func ServiceDir(root, service string) string {
	return filepath.Join(root, service)
}

// VPNLayout is the on-disk layout of a VPN-backed service's data directory.
type VPNLayout struct {
	VPN       string // <root>/<service>/data/vpn
	Config    string // <root>/<service>/data/config
	Downloads string // <root>/<service>/data/downloads

	Auth     string // vpn/auth.txt: username and password lines
	OVPN     string // vpn/nordvpn.ovpn
	Password string // config/qbt_password.txt
}

func VPN(root, service string) VPNLayout {
	data := filepath.Join(ServiceDir(root, service), "data")
	l := VPNLayout{
		VPN:       filepath.Join(data, "vpn"),
		Config:    filepath.Join(data, "config"),
		Downloads: filepath.Join(data, "downloads"),
	}
	l.Auth = filepath.Join(l.VPN, "auth.txt")
	l.OVPN = filepath.Join(l.VPN, "nordvpn.ovpn")
	l.Password = filepath.Join(l.Config, "qbt_password.txt")
	return l
}

// Dirs lists the directories setup creates, in creation order.
func (l VPNLayout) Dirs() []string {
	return []string{l.VPN, l.Config, l.Downloads}
}
