package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hallvardnmbu/docker/cli/doc/internal/fsutil"
)

// RootFileName is the persisted project-root file, kept directly under $HOME.
const RootFileName = ".docconfig"

// RootFilePath returns ~/.docconfig.
func RootFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(home) == "" {
		return "", errors.New("could not determine home directory")
	}
	return filepath.Join(home, RootFileName), nil
}

// ReadRoot returns the trimmed persisted project root. Any failure (no home,
// no file, unreadable file) yields "".
func ReadRoot() string {
	path, err := RootFilePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// WriteRoot persists root as the single line of ~/.docconfig and returns the
// file it wrote.
func WriteRoot(root string) (string, error) {
	path, err := RootFilePath()
	if err != nil {
		return "", err
	}
	if err := fsutil.WriteSecure(path, []byte(strings.TrimSpace(root)+"\n")); err != nil {
		return "", err
	}
	return path, nil
}
