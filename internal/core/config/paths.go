package config

import (
	"path/filepath"
	"strings"
)

// ResolveRelative joins path onto base unless path is already absolute.
func ResolveRelative(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}

// ResolvePaths rewrites every file-system path in cfg relative to base, typically the
// directory holding the config file. The stdout and stderr decision outputs are kept as is.
func ResolvePaths(cfg *Config, base string) {
	for i, p := range cfg.Paths {
		cfg.Paths[i] = ResolveRelative(base, p)
	}
	cfg.History.Path = ResolveRelative(base, cfg.History.Path)
	switch cfg.DecisionLog.Output {
	case "stdout", "stderr", "-":
	default:
		cfg.DecisionLog.Output = ResolveRelative(base, cfg.DecisionLog.Output)
	}
}
