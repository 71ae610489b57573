package config

import (
	"os"
	"path/filepath"
)

// FindConfigPath returns the first existing config file path, or ""
// if none exist. Search order matches the package documentation.
func FindConfigPath() string {
	if env := os.Getenv("NETWARDEN_CONFIG"); env != "" {
		return env
	}

	candidates := []string{"./netwarden.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "netwarden", "config.yaml"))
	}

	candidates = append(candidates, "/etc/netwarden/config.yaml")

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// EnsureConfigDir creates the parent directory of path if needed.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "/" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
