// # internal/core/config/loader.go
package config

import (
	"os"
	"strings"
	"time"

	"camelize/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// Load reads, defaults and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "config file not found"), errors.CtxPath, path)
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode config"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid config"), errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when given. With an empty path it loads DefaultPath if present and
// falls back to defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return Load(DefaultPath)
	}
	cfg := Default()
	ApplyEnvOverrides(cfg)
	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid config")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".ts", ".tsx"}
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"node_modules", "dist", "build", "out", ".git"}
	}
	if cfg.Exclude.Files == nil {
		cfg.Exclude.Files = []string{"*.d.ts"}
	}

	if cfg.DecisionLog.Prefix == "" {
		cfg.DecisionLog.Prefix = "SNAKE_TO_CAMEL_CSV:"
	}
	if strings.TrimSpace(cfg.DecisionLog.Output) == "" {
		cfg.DecisionLog.Output = "stdout"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = ".camelize/history.db"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRunsPerMinute == 0 {
		cfg.Watch.MaxRunsPerMinute = 30
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "camelize"
	}
	if cfg.Observability.OTLPInsecure == nil {
		insecure := true
		cfg.Observability.OTLPInsecure = &insecure
	}
}

func normalize(cfg *Config) {
	cfg.Paths = trimAll(cfg.Paths)
	cfg.Extensions = trimAll(cfg.Extensions)
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	cfg.Exclude.Dirs = trimAll(cfg.Exclude.Dirs)
	cfg.Exclude.Files = trimAll(cfg.Exclude.Files)
	cfg.Exclude.Readonly = trimAll(cfg.Exclude.Readonly)
	cfg.DecisionLog.Output = strings.TrimSpace(cfg.DecisionLog.Output)
	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
