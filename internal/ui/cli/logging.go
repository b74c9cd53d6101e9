package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// configureLogging installs the default slog logger. Logs go to stderr so stdout stays free for
// the decision log, or to logFile when one is given.
func configureLogging(stderr io.Writer, verbose bool, logFile string) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := stderr
	closeFn := func() {}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logFile, err)
		} else if fi, err := os.Lstat(logFile); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logFile)
		} else {
			f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logFile, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

// resolveLogPath is the watch-mode log file location.
func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "camelize", "camelize.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "camelize", "camelize.log")
	}

	return "camelize.log"
}
