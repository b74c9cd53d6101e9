package decision

import (
	"io"
	"strings"
	"sync"
)

const (
	DefaultPrefix = "SNAKE_TO_CAMEL_CSV:"
	TimeLayout    = "2006-01-02T15:04:05.000Z"
)

var csvHeader = []string{"timestamp", "filename", "identifier", "status", "reason", "shorthandHandled"}

// CSVSink writes prefixed CSV lines. The header is written once per sink, before its first
// record.
type CSVSink struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
	header bool
}

func NewCSVSink(w io.Writer, prefix string) *CSVSink {
	return &CSVSink{w: w, prefix: prefix}
}

func (s *CSVSink) Emit(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if !s.header {
		b.WriteString(s.prefix)
		b.WriteString(strings.Join(csvHeader, ","))
		b.WriteByte('\n')
	}
	b.WriteString(s.prefix)
	b.WriteString(FormatCSV(r))
	b.WriteByte('\n')

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return err
	}
	s.header = true
	return nil
}

// FormatCSV renders r as one CSV row without the prefix. Every field is quoted.
func FormatCSV(r Record) string {
	shorthand := ""
	if r.Status == StatusSuccess {
		shorthand = "false"
		if r.ShorthandHandled {
			shorthand = "true"
		}
	}
	fields := []string{
		r.Time.UTC().Format(TimeLayout),
		r.File,
		r.Identifier,
		string(r.Status),
		string(r.Reason),
		shorthand,
	}
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, ",")
}
