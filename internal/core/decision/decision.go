package decision

import (
	"sync"
	"time"
)

type Status string

const (
	StatusSkip    Status = "skip"
	StatusSuccess Status = "success"
)

type Reason string

const (
	ReasonAlreadyCamel    Reason = "already camelCase"
	ReasonWouldShadow     Reason = "would shadow"
	ReasonWouldBeShadowed Reason = "would be shadowed"
	ReasonTypeProperty    Reason = "property in type or interface"
	ReasonShorthand       Reason = "shorthand destructuring"
	ReasonExcludedFile    Reason = "reference in excluded file"
	ReasonNone            Reason = ""
)

// Reasons lists every skip reason in the order they are checked.
func Reasons() []Reason {
	return []Reason{
		ReasonShorthand,
		ReasonAlreadyCamel,
		ReasonWouldShadow,
		ReasonWouldBeShadowed,
		ReasonTypeProperty,
		ReasonExcludedFile,
	}
}

// Record is one decision about one declared identifier. Reason is set only for skips and
// ShorthandHandled is meaningful only for successes.
type Record struct {
	Time             time.Time
	File             string
	Identifier       string
	Status           Status
	Reason           Reason
	ShorthandHandled bool
}

func Skip(at time.Time, file, identifier string, reason Reason) Record {
	return Record{Time: at, File: file, Identifier: identifier, Status: StatusSkip, Reason: reason}
}

func Success(at time.Time, file, identifier string, shorthand bool) Record {
	return Record{Time: at, File: file, Identifier: identifier, Status: StatusSuccess, ShorthandHandled: shorthand}
}

// Sink consumes decision records. An error from Emit aborts the conversion that produced it.
type Sink interface {
	Emit(Record) error
}

type SinkFunc func(Record) error

func (f SinkFunc) Emit(r Record) error { return f(r) }

// Discard drops every record.
var Discard Sink = SinkFunc(func(Record) error { return nil })

type tee []Sink

// Tee fans every record out to sinks in order, stopping at the first error.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t tee) Emit(r Record) error {
	for _, s := range t {
		if err := s.Emit(r); err != nil {
			return err
		}
	}
	return nil
}

// Collector keeps records in memory.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

func (c *Collector) Emit(r Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}

func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Reset drops collected records and returns them.
func (c *Collector) Reset() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.records
	c.records = nil
	return out
}

// CountByReason tallies skipped records per reason.
func CountByReason(records []Record) map[Reason]int {
	out := make(map[Reason]int)
	for _, r := range records {
		if r.Status == StatusSkip {
			out[r.Reason]++
		}
	}
	return out
}
