package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// resolveClientDir locates the static client directory. Absolute paths are
// used as given; relative ones are searched from the working directory, the
// executable's directory, and each of their parents.
func resolveClientDir(name string) (string, error) {
	if filepath.IsAbs(name) {
		if isDir(name) {
			return name, nil
		}
		return "", fmt.Errorf("client directory %s not found", name)
	}
	if cwd, err := os.Getwd(); err == nil {
		if dir, ok := resolveClientDirFrom(cwd, name); ok {
			return dir, nil
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if dir, ok := resolveClientDirFrom(filepath.Dir(exePath), name); ok {
			return dir, nil
		}
	}
	return "", fmt.Errorf("client directory %s not found", name)
}

func resolveClientDirFrom(base, name string) (string, bool) {
	candidates := []string{
		filepath.Join(base, name),
		filepath.Join(base, "..", name),
	}
	for _, candidate := range candidates {
		if !isDir(candidate) {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		return abs, true
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
