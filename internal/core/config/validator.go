package config

import (
	"fmt"
	"net"

	"github.com/gobwas/glob"
)

var knownExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
}

func validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateSources(cfg); err != nil {
		return err
	}
	if err := validateGlobs(cfg); err != nil {
		return err
	}
	if err := validateOutputs(cfg); err != nil {
		return err
	}
	return validateWatch(cfg)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateSources(cfg *Config) error {
	if len(cfg.Paths) == 0 {
		return fmt.Errorf("paths must not be empty")
	}
	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range cfg.Extensions {
		if !knownExtensions[ext] {
			return fmt.Errorf("extensions: %q is not a TypeScript or JavaScript extension", ext)
		}
	}
	return nil
}

func validateGlobs(cfg *Config) error {
	groups := map[string][]string{
		"exclude.dirs":     cfg.Exclude.Dirs,
		"exclude.files":    cfg.Exclude.Files,
		"exclude.readonly": cfg.Exclude.Readonly,
	}
	for _, field := range []string{"exclude.dirs", "exclude.files", "exclude.readonly"} {
		for i, pattern := range groups[field] {
			if _, err := glob.Compile(pattern, '/'); err != nil {
				return fmt.Errorf("%s[%d]: invalid glob %q: %w", field, i, pattern, err)
			}
		}
	}
	return nil
}

func validateOutputs(cfg *Config) error {
	if cfg.DecisionLog.Output == "" {
		return fmt.Errorf("decision_log.output must not be empty")
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("observability.metrics_addr: %w", err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRunsPerMinute < 0 {
		return fmt.Errorf("watch.max_runs_per_minute must not be negative")
	}
	return nil
}
