package config

import "time"

// DefaultPath is the config file looked up in the working directory when none is given.
const DefaultPath = "camelize.toml"

type Config struct {
	Version       int           `toml:"version"`
	Paths         []string      `toml:"paths"`
	Extensions    []string      `toml:"extensions"`
	Exclude       Exclude       `toml:"exclude"`
	DecisionLog   DecisionLog   `toml:"decision_log"`
	Write         Write         `toml:"write"`
	History       History       `toml:"history"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

// Exclude holds glob patterns. Dirs match directory base names, Files match base names or
// slash-separated relative paths, Readonly files are loaded for resolution but never written.
type Exclude struct {
	Dirs     []string `toml:"dirs"`
	Files    []string `toml:"files"`
	Readonly []string `toml:"readonly"`
}

type DecisionLog struct {
	Prefix string `toml:"prefix"`
	// Output is stdout, stderr or a file path.
	Output string `toml:"output"`
}

type Write struct {
	DryRun bool `toml:"dry_run"`
	Diff   bool `toml:"diff"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	MaxRunsPerMinute int           `toml:"max_runs_per_minute"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure *bool  `toml:"otlp_insecure"`
	ServiceName  string `toml:"service_name"`
}

// Insecure reports whether the OTLP exporter skips TLS.
func (o Observability) Insecure() bool {
	return o.OTLPInsecure == nil || *o.OTLPInsecure
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
