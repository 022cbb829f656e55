package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ServiceFileName is the optional per-service file next to the compose file.
const ServiceFileName = "doc.yaml"

// DefaultSetupScript is run by `setup <service>` when present.
const DefaultSetupScript = "setup.sh"

type ServiceConfig struct {
	// Default exec target for this service (e.g. the compose service name
	// when it differs from the directory name).
	Service string `yaml:"service"`
	// Extra environment for every compose invocation; never overrides the
	// caller's environment.
	Env map[string]string `yaml:"env"`
	// Setup script, relative to the service directory.
	SetupScript string `yaml:"setup_script"`
}

// ReadService parses <serviceDir>/doc.yaml. A missing file yields the zero
// config with defaults applied.
func ReadService(serviceDir string) (ServiceConfig, error) {
	var out ServiceConfig
	data, err := os.ReadFile(filepath.Join(serviceDir, ServiceFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return out, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &out); err != nil {
			return out, err
		}
	}
	if out.Env == nil {
		out.Env = map[string]string{}
	}
	if out.SetupScript == "" {
		out.SetupScript = DefaultSetupScript
	}
	return out, nil
}

// EnvList returns Env as sorted KEY=VALUE pairs, skipping keys already set in
// the process environment.
func (c ServiceConfig) EnvList() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Env[k])
	}
	return out
}

// SetupScriptPath returns the absolute setup script path for serviceDir.
func (c ServiceConfig) SetupScriptPath(serviceDir string) string {
	if filepath.IsAbs(c.SetupScript) {
		return c.SetupScript
	}
	return filepath.Join(serviceDir, c.SetupScript)
}
