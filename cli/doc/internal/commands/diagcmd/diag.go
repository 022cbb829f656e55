package diagcmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hallvardnmbu/docker/cli/doc/internal/cmdregistry"
	"github.com/hallvardnmbu/docker/cli/doc/internal/execx"
	"github.com/hallvardnmbu/docker/cli/doc/internal/fsutil"
	"github.com/hallvardnmbu/docker/cli/doc/internal/paths"
	"github.com/hallvardnmbu/docker/cli/doc/internal/ui"
)

// ErrUnsupportedService is returned for services outside the allow-list.
var ErrUnsupportedService = errors.New("diagnostics not available for service")

const (
	healthScript = "/usr/local/bin/health-check.sh"
	ipEndpoint   = "https://httpbin.org/ip"
	webUITimeout = 5 * time.Second
)

// httpClient probes the Web UI.
var httpClient = &http.Client{Timeout: webUITimeout}

// Register adds status and test to the registry.
func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Command{
		Name:    "status",
		Usage:   "<service>",
		Short:   "Show container status and run its health check",
		MinArgs: 1,
		MaxArgs: 1,
		Handler: handleStatus,
	})
	r.Register(cmdregistry.Command{
		Name:    "test",
		Usage:   "<service>",
		Short:   "Check container, VPN tunnel, Web UI and downloads directory",
		MinArgs: 1,
		MaxArgs: 1,
		Handler: handleTest,
	})
}

// checkService gates a diagnostics command and returns the container name.
func checkService(ctx *cmdregistry.Context, service string) (string, error) {
	if !ctx.Settings.DiagnosticsAllowed(service) {
		return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedService, service,
			strings.Join(ctx.Settings.Diagnostics.Services, ", "))
	}
	if _, err := ctx.Service(service); err != nil {
		return "", err
	}
	return ctx.Settings.Diagnostics.Container, nil
}

func docker(ctx *cmdregistry.Context, args ...string) execx.Invocation {
	fields := strings.Fields(ctx.Settings.DockerCommand)
	if len(fields) == 0 {
		fields = []string{"docker"}
	}
	return execx.Invocation{Name: fields[0], Args: append(append([]string(nil), fields[1:]...), args...)}
}

// capture runs inv and treats a launch failure as fatal.
func capture(ctx *cmdregistry.Context, inv execx.Invocation) (execx.Output, execx.Result, error) {
	out, res := ctx.Exec.Capture(ctx.Ctx, inv)
	if !res.Started() {
		return out, res, res.Err
	}
	return out, res, nil
}

func handleStatus(ctx *cmdregistry.Context) error {
	service := ctx.Args[0]
	container, err := checkService(ctx, service)
	if err != nil {
		return err
	}
	w := ctx.Stdout
	fmt.Fprintf(w, "Checking %s container status...\n", service)

	out, _, err := capture(ctx, docker(ctx, "ps", "--filter", "name="+container,
		"--format", "table {{.Names}}\t{{.Status}}\t{{.Ports}}"))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Container Status:")
	fmt.Fprintln(w, out.Stdout)

	if !strings.Contains(out.Stdout, container) {
		fmt.Fprintf(w, "Container is not running. Start it with: doc start %s\n", service)
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Running health check...")
	health, res := ctx.Exec.Capture(ctx.Ctx, docker(ctx, "exec", container, healthScript))
	if !res.Started() {
		fmt.Fprintf(w, "Failed to run health check: %v\n", res.Err)
		return nil
	}
	fmt.Fprintln(w, health.Stdout)
	if !res.OK() {
		fmt.Fprintf(w, "Health check errors: %s\n", health.Stderr)
		return cmdregistry.Exit(res.Code)
	}
	return nil
}

func handleTest(ctx *cmdregistry.Context) error {
	service := ctx.Args[0]
	container, err := checkService(ctx, service)
	if err != nil {
		return err
	}
	w := ctx.Stdout
	failed := 0
	pass := func(format string, args ...any) { ui.Pass(w, format, args...) }
	fail := func(format string, args ...any) {
		failed++
		ui.Fail(w, format, args...)
	}

	fmt.Fprintf(w, "Testing %s functionality...\n", service)

	fmt.Fprintln(w, "\n1. Checking if container is running...")
	out, _, err := capture(ctx, docker(ctx, "ps", "-q", "--filter", "name="+container))
	if err != nil {
		return err
	}
	if strings.TrimSpace(out.Stdout) == "" {
		fail("Container is not running. Start it with: doc start %s", service)
		return cmdregistry.Exit(1)
	}
	pass("Container is running")

	fmt.Fprintln(w, "\n2. Testing VPN connection...")
	routes, res := ctx.Exec.Capture(ctx.Ctx, docker(ctx, "exec", container, "ip", "route", "show", "table", "main"))
	switch {
	case !res.Started():
		fail("Failed to check VPN: %v", res.Err)
	case strings.Contains(routes.Stdout, "tun0"):
		pass("VPN interface (tun0) is active")
	default:
		fail("VPN interface not found")
		fmt.Fprintf(w, "Routes: %s\n", routes.Stdout)
	}

	fmt.Fprintln(w, "\n3. Testing external IP through VPN...")
	ip, res := ctx.Exec.Capture(ctx.Ctx, docker(ctx, "exec", container,
		"curl", "-s", "--max-time", "10", "--interface", "tun0", ipEndpoint))
	switch {
	case !res.Started():
		fail("Failed to test external IP: %v", res.Err)
	case res.OK():
		pass("External IP via VPN: %s", strings.TrimSpace(ip.Stdout))
	default:
		fail("Failed to get external IP through VPN")
	}

	webUI := ctx.Settings.Diagnostics.WebUI
	fmt.Fprintln(w, "\n4. Testing qBittorrent Web UI...")
	if err := probe(ctx.Ctx, webUI); err != nil {
		log.WithError(err).Debug("web ui probe failed")
		fail("qBittorrent Web UI is not accessible at %s", webUI)
	} else {
		pass("qBittorrent Web UI is accessible at %s", webUI)
	}

	fmt.Fprintln(w, "\n5. Checking download directory...")
	downloads := paths.VPN(ctx.Root, service).Downloads
	switch {
	case fsutil.IsDir(downloads):
		pass("Downloads directory exists: %s", downloads)
	case fsutil.Exists(downloads):
		fail("Downloads path is not a directory: %s", downloads)
	default:
		fail("Downloads directory not found: %s", downloads)
	}

	fmt.Fprintln(w)
	if failed > 0 {
		fmt.Fprintf(w, "%d of 5 checks failed.\n", failed)
		return cmdregistry.Exit(1)
	}
	fmt.Fprintf(w, "Test complete! Your %s setup should be working correctly.\n", service)
	return nil
}

// probe GETs url and accepts any response below 500.
func probe(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, webUITimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s: %s", url, resp.Status)
	}
	return nil
}
