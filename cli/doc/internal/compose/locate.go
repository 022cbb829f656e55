package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hallvardnmbu/docker/cli/doc/internal/config"
)

// ErrServiceNotFound matches any ServiceNotFoundError via errors.Is.
var ErrServiceNotFound = errors.New("service not found")

// ServiceNotFoundError is returned when <root>/<service>/<compose file> is
// missing. It is terminal for the invocation.
type ServiceNotFoundError struct {
	Service string
	File    string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found for service: %s", filepath.Base(e.File), e.Service)
}

func (e *ServiceNotFoundError) Is(target error) bool { return target == ErrServiceNotFound }

// Service describes one manageable compose environment under the root.
type Service struct {
	Name   string
	Dir    string
	File   string
	Config config.ServiceConfig
}

// Locate returns the compose file path for service, or a ServiceNotFoundError.
func Locate(root, service, composeFile string) (string, error) {
	if strings.TrimSpace(service) == "" || strings.ContainsAny(service, `/\`) || service == "." || service == ".." {
		return "", &ServiceNotFoundError{Service: service, File: composeFile}
	}
	path := filepath.Join(root, service, composeFile)
	if !fileExists(path) {
		return "", &ServiceNotFoundError{Service: service, File: path}
	}
	return path, nil
}

// Load locates service and reads its optional doc.yaml.
func Load(root, service, composeFile string) (Service, error) {
	file, err := Locate(root, service, composeFile)
	if err != nil {
		return Service{}, err
	}
	dir := filepath.Dir(file)
	cfg, err := config.ReadService(dir)
	if err != nil {
		return Service{}, fmt.Errorf("read %s: %w", filepath.Join(dir, config.ServiceFileName), err)
	}
	return Service{Name: service, Dir: dir, File: file, Config: cfg}, nil
}

// Target returns the exec target token: the explicit override, else the
// doc.yaml service name, else the directory name.
func (s Service) Target(override string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if v := strings.TrimSpace(s.Config.Service); v != "" {
		return v
	}
	return s.Name
}

// List returns the sorted names of root's subdirectories that contain a
// compose file.
func List(root, composeFile string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("project root %s not accessible: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if fileExists(filepath.Join(root, e.Name(), composeFile)) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
