package diag

import (
	"errors"
	"strings"
	"sync"

	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// Sink receives diagnostics. Receive must not be relied on to return
// normally; entry points wrap caller sinks with Safe.
type Sink interface {
	Receive(d Diagnostic)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(d Diagnostic)

// Receive calls f(d).
func (f SinkFunc) Receive(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

type safeSink struct {
	delegate Sink
	logger   ironpage.Logger
}

// Safe wraps sink so that a panicking receiver is logged and ignored
// instead of unwinding into the caller. Wrapping an already safe sink
// returns it unchanged.
func Safe(sink Sink, logger ironpage.Logger) Sink {
	if sink == nil {
		sink = Discard
	}
	if s, ok := sink.(*safeSink); ok {
		return s
	}
	return &safeSink{delegate: sink, logger: logger}
}

func (s *safeSink) Receive(d Diagnostic) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("diagnostic receiver panicked on %s: %v", d.Code, r)
		}
	}()
	s.delegate.Receive(d)
}

// Collector accumulates diagnostics. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Receive appends d.
func (c *Collector) Receive(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything received so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Errors returns the diagnostics with error severity.
func (c *Collector) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics with the given code.
func (c *Collector) Count(code Code) int {
	n := 0
	for _, d := range c.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Codes returns the code of every diagnostic in arrival order.
func (c *Collector) Codes() []Code {
	items := c.Diagnostics()
	out := make([]Code, len(items))
	for i, d := range items {
		out[i] = d.Code
	}
	return out
}

// HasErrors reports whether any error severity diagnostic was received.
func (c *Collector) HasErrors() bool {
	return len(c.Errors()) > 0
}

// Err joins every error severity diagnostic into one error, or nil.
func (c *Collector) Err() error {
	errs := c.Errors()
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, d := range errs {
		joined[i] = d
	}
	return errors.Join(joined...)
}

// String renders every diagnostic on its own block.
func (c *Collector) String() string {
	items := c.Diagnostics()
	parts := make([]string, len(items))
	for i, d := range items {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n")
}

// Tracker forwards to a delegate and remembers whether an error passed through.
// Components use it to decide their own success without collecting.
type Tracker struct {
	Delegate Sink
	failed   bool
}

// Receive forwards d and records failure for error severity diagnostics.
func (t *Tracker) Receive(d Diagnostic) {
	if d.Severity == SeverityError {
		t.failed = true
	}
	t.Delegate.Receive(d)
}

// Failed reports whether an error severity diagnostic has been received.
func (t *Tracker) Failed() bool { return t.failed }

// Fail marks the tracker failed without publishing anything.
func (t *Tracker) Fail() { t.failed = true }
