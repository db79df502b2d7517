package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Severity distinguishes fatal diagnostics from warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Diagnostic is a single problem found while compiling, resolving or validating.
type Diagnostic struct {
	Code       Code              `json:"code"`
	Severity   Severity          `json:"severity"`
	Message    string            `json:"message"`
	URI        string            `json:"uri,omitempty"`
	Line       int               `json:"line,omitempty"`   // 0 if unknown
	Column     int               `json:"column,omitempty"` // 0 if unknown
	Hint       string            `json:"hint,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Errorf builds an error diagnostic.
func Errorf(code Code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic.
func Warnf(code Code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// At returns a copy positioned at uri, line and column.
func (d Diagnostic) At(uri string, line, column int) Diagnostic {
	d.URI = uri
	d.Line = line
	d.Column = column
	return d
}

// With returns a copy carrying an extra attribute.
func (d Diagnostic) With(key, value string) Diagnostic {
	attrs := make(map[string]string, len(d.Attributes)+1)
	for k, v := range d.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	d.Attributes = attrs
	return d
}

// WithHint returns a copy carrying an actionable suggestion.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// AttributeKeys returns the attribute keys in lexicographic order.
func (d Diagnostic) AttributeKeys() []string {
	keys := make([]string, 0, len(d.Attributes))
	for k := range d.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Location renders "uri (line L, col C)" with whatever parts are known.
func (d Diagnostic) Location() string {
	location := d.URI
	if d.Line > 0 {
		if d.Column > 0 {
			location = fmt.Sprintf("%s (line %d, col %d)", location, d.Line, d.Column)
		} else {
			location = fmt.Sprintf("%s (line %d)", location, d.Line)
		}
	}
	return strings.TrimSpace(location)
}

// Error implements the error interface so a diagnostic can be wrapped and returned.
func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteString(" ")
	b.WriteString(string(d.Code))
	if loc := d.Location(); loc != "" {
		b.WriteString(" in ")
		b.WriteString(loc)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	for _, k := range d.AttributeKeys() {
		fmt.Fprintf(&b, "\n  %s: %s", k, d.Attributes[k])
	}
	if d.Hint != "" {
		b.WriteString("\n\nHint: ")
		b.WriteString(d.Hint)
	}
	return b.String()
}
