package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultComposeCommand = "docker-compose"
	DefaultDockerCommand  = "docker"
	DefaultComposeFile    = "docker-compose.yml"
	DefaultContainer      = "playground-torrenting"
	DefaultWebUI          = "http://localhost:8081"
)

type Diagnostics struct {
	// Services allowed for status/test.
	Services  []string `yaml:"services"`
	Container string   `yaml:"container"`
	WebUI     string   `yaml:"web_ui"`
}

// Settings are tool-wide knobs read from the optional settings file.
type Settings struct {
	// ComposeCommand may be multi-word, e.g. "docker compose".
	ComposeCommand string      `yaml:"compose_command"`
	DockerCommand  string      `yaml:"docker_command"`
	ComposeFile    string      `yaml:"compose_file"`
	LogLevel       string      `yaml:"log_level"`
	Diagnostics    Diagnostics `yaml:"diagnostics"`
}

// DefaultSettings returns the values used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		ComposeCommand: DefaultComposeCommand,
		DockerCommand:  DefaultDockerCommand,
		ComposeFile:    DefaultComposeFile,
		Diagnostics: Diagnostics{
			Services:  []string{"torrenting"},
			Container: DefaultContainer,
			WebUI:     DefaultWebUI,
		},
	}
}

// SettingsPath returns where settings are read from: DOC_CONFIG, else
// <user config dir>/doc/config.yaml, else ~/.config/doc/config.yaml.
func SettingsPath() string {
	if p := strings.TrimSpace(os.Getenv("DOC_CONFIG")); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "doc", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "doc", "config.yaml")
	}
	return ""
}

// ReadSettings loads the settings file on top of DefaultSettings and applies
// the DOC_COMPOSE / DOC_DOCKER environment overrides. A missing file is not
// an error; a malformed one is.
func ReadSettings() (Settings, string, error) {
	cfg := DefaultSettings()
	path := SettingsPath()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, path, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, path, err
		}
	}
	if v := strings.TrimSpace(os.Getenv("DOC_COMPOSE")); v != "" {
		cfg.ComposeCommand = v
	}
	if v := strings.TrimSpace(os.Getenv("DOC_DOCKER")); v != "" {
		cfg.DockerCommand = v
	}
	cfg.fillDefaults()
	return cfg, path, nil
}

func (s *Settings) fillDefaults() {
	def := DefaultSettings()
	if strings.TrimSpace(s.ComposeCommand) == "" {
		s.ComposeCommand = def.ComposeCommand
	}
	if strings.TrimSpace(s.DockerCommand) == "" {
		s.DockerCommand = def.DockerCommand
	}
	if strings.TrimSpace(s.ComposeFile) == "" {
		s.ComposeFile = def.ComposeFile
	}
	if len(s.Diagnostics.Services) == 0 {
		s.Diagnostics.Services = def.Diagnostics.Services
	}
	if strings.TrimSpace(s.Diagnostics.Container) == "" {
		s.Diagnostics.Container = def.Diagnostics.Container
	}
	if strings.TrimSpace(s.Diagnostics.WebUI) == "" {
		s.Diagnostics.WebUI = def.Diagnostics.WebUI
	}
}

// ComposeArgv splits ComposeCommand into executable and leading arguments.
func (s Settings) ComposeArgv() (string, []string) {
	fields := strings.Fields(s.ComposeCommand)
	if len(fields) == 0 {
		return DefaultComposeCommand, nil
	}
	return fields[0], fields[1:]
}

// DiagnosticsAllowed reports whether status/test may target service.
func (s Settings) DiagnosticsAllowed(service string) bool {
	for _, allowed := range s.Diagnostics.Services {
		if allowed == service {
			return true
		}
	}
	return false
}
