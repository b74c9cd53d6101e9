package cli

import (
	"io"
	"os"
	"path/filepath"

	"camelize/internal/core/decision"
)

// openDecisionSink maps decision_log.output to a CSV sink. The returned close function is a
// no-op for the standard streams.
func openDecisionSink(output, prefix string, stdout, stderr io.Writer) (decision.Sink, func() error, error) {
	switch output {
	case "", "stdout", "-":
		return decision.NewCSVSink(stdout, prefix), func() error { return nil }, nil
	case "stderr":
		return decision.NewCSVSink(stderr, prefix), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return decision.NewCSVSink(f, prefix), f.Close, nil
}
