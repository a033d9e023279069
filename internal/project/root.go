package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestNames are tried in order in every directory.
var ManifestNames = []string{"srcdef.toml", "srcdef.yaml", "srcdef.yml"}

// ErrNoManifest is returned when no manifest exists up to the filesystem root.
var ErrNoManifest = errors.New("no srcdef manifest found")

// FindManifest walks up from startDir to locate a manifest.
func FindManifest(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s: %w", startDir, ErrNoManifest)
}

// FindProjectRoot returns the directory containing the manifest.
func FindProjectRoot(startDir string) (string, error) {
	path, err := FindManifest(startDir)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}
