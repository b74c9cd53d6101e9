package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CAMELIZE_[SECTION]_[KEY] (e.g., CAMELIZE_WRITE_DRY_RUN).
func ApplyEnvOverrides(cfg *Config) {
	setEnvList(&cfg.Paths, "CAMELIZE_PATHS")
	setEnvList(&cfg.Extensions, "CAMELIZE_EXTENSIONS")
	setEnvList(&cfg.Exclude.Readonly, "CAMELIZE_EXCLUDE_READONLY")

	setEnvString(&cfg.DecisionLog.Prefix, "CAMELIZE_DECISION_LOG_PREFIX")
	setEnvString(&cfg.DecisionLog.Output, "CAMELIZE_DECISION_LOG_OUTPUT")

	setEnvBool(&cfg.Write.DryRun, "CAMELIZE_WRITE_DRY_RUN")
	setEnvBool(&cfg.Write.Diff, "CAMELIZE_WRITE_DIFF")

	setEnvBool(&cfg.History.Enabled, "CAMELIZE_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "CAMELIZE_HISTORY_PATH")

	setEnvDuration(&cfg.Watch.Debounce, "CAMELIZE_WATCH_DEBOUNCE")
	setEnvInt(&cfg.Watch.MaxRunsPerMinute, "CAMELIZE_WATCH_MAX_RUNS_PER_MINUTE")

	setEnvString(&cfg.Observability.MetricsAddr, "CAMELIZE_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CAMELIZE_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits a comma-separated value.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, ",")
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
