// Package fsutil writes small secret-bearing files (credentials, passwords,
// the persisted project root) so that readers never observe a partial write
// and nobody but the owner can read the result.
package fsutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SecureMode is the permission every file written here ends up with.
const SecureMode os.FileMode = 0o600

// WriteSecure writes data to path atomically:
//  1. write to .<basename>.tmp.<pid>.<rand> in the same directory
//  2. fsync(tmp)
//  3. rename(tmp, path)
//  4. fsync(dir), best effort
//
// The parent directory is created (0700) if missing. An existing file at path
// is replaced and ends up 0600 regardless of its previous mode.
func WriteSecure(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath, err := tempPath(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, SecureMode)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	success := false
	defer func() {
		f.Close()
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// umask may have narrowed the create mode; pin it explicitly.
	if err := os.Chmod(tmpPath, SecureMode); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true

	if runtime.GOOS != "windows" {
		syncDir(dir)
	}
	return nil
}

// Exists reports whether path exists (file or directory).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func tempPath(path string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}
	name := fmt.Sprintf(".%s.tmp.%d.%s", filepath.Base(path), os.Getpid(), hex.EncodeToString(b))
	return filepath.Join(filepath.Dir(path), name), nil
}

func syncDir(path string) {
	d, err := os.Open(path)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
