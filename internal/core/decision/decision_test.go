package decision

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

var at = time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.FixedZone("CET", 3600))

func TestCSVSink_HeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCSVSink(&buf, DefaultPrefix)

	if err := sink.Emit(Success(at, "src/user.ts", "user_name", true)); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := sink.Emit(Skip(at, "src/user.ts", "first_name", ReasonWouldShadow)); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	want := strings.Join([]string{
		`SNAKE_TO_CAMEL_CSV:timestamp,filename,identifier,status,reason,shorthandHandled`,
		`SNAKE_TO_CAMEL_CSV:"2024-03-09T13:05:07.123Z","src/user.ts","user_name","success","","true"`,
		`SNAKE_TO_CAMEL_CSV:"2024-03-09T13:05:07.123Z","src/user.ts","first_name","skip","would shadow",""`,
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s\nexpected:\n%s", got, want)
	}
}

func TestCSVSink_HeaderPerInstance(t *testing.T) {
	var a, b bytes.Buffer
	if err := NewCSVSink(&a, "").Emit(Success(at, "a.ts", "a_b", false)); err != nil {
		t.Fatal(err)
	}
	if err := NewCSVSink(&b, "").Emit(Success(at, "b.ts", "c_d", false)); err != nil {
		t.Fatal(err)
	}
	for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
		if !strings.HasPrefix(buf.String(), "timestamp,") {
			t.Errorf("sink %s: expected its own header, got %q", name, buf.String())
		}
	}
}

func TestFormatCSV_Quoting(t *testing.T) {
	got := FormatCSV(Success(at, `dir/"odd".ts`, "a_b", false))
	want := `"2024-03-09T13:05:07.123Z","dir/""odd"".ts","a_b","success","","false"`
	if got != want {
		t.Errorf("FormatCSV = %s, expected %s", got, want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestCSVSink_WriteError(t *testing.T) {
	sink := NewCSVSink(failingWriter{}, DefaultPrefix)
	if err := sink.Emit(Success(at, "a.ts", "a_b", false)); err == nil {
		t.Fatal("expected write error")
	}
	if sink.header {
		t.Error("expected header to be retried after a failed write")
	}
}

func TestTeeAndCollector(t *testing.T) {
	var c1, c2 Collector
	sink := Tee(&c1, nil, &c2)
	for _, r := range []Record{
		Success(at, "a.ts", "a_b", false),
		Skip(at, "a.ts", "c_d", ReasonShorthand),
		Skip(at, "a.ts", "e_f", ReasonShorthand),
	} {
		if err := sink.Emit(r); err != nil {
			t.Fatal(err)
		}
	}
	if len(c1.Records()) != 3 || len(c2.Records()) != 3 {
		t.Fatalf("expected both collectors to hold 3 records, got %d and %d", len(c1.Records()), len(c2.Records()))
	}
	counts := CountByReason(c1.Reset())
	if counts[ReasonShorthand] != 2 || len(counts) != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	if len(c1.Records()) != 0 {
		t.Error("expected Reset to empty the collector")
	}

	boom := errors.New("boom")
	failing := Tee(SinkFunc(func(Record) error { return boom }), &c2)
	if err := failing.Emit(Record{}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if len(c2.Records()) != 3 {
		t.Error("expected tee to stop at the first error")
	}
}
