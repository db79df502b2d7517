package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/tui"
)

// report is the JSON envelope every command writes with --json.
type report struct {
	OK          bool              `json:"ok"`
	Result      interface{}       `json:"result,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// finish writes the outcome of a command. In JSON mode the result and the
// diagnostics share one document on stdout; otherwise diagnostics go to
// stderr and human writes the result to stdout.
func (e *environment) finish(ok bool, collector *diag.Collector, result interface{}, human func(io.Writer)) error {
	items := collector.Diagnostics()
	if e.opts.json {
		if items == nil {
			items = []diag.Diagnostic{}
		}
		if !ok {
			result = nil
		}
		return writeJSON(e.out, report{OK: ok, Result: result, Diagnostics: items})
	}

	printDiagnostics(e.errOut, items)
	if ok && human != nil {
		human(e.out)
	}
	return nil
}

func printDiagnostics(w io.Writer, items []diag.Diagnostic) {
	for _, d := range items {
		style := tui.SeverityStyle(d.Severity)
		fmt.Fprintln(w, style.Render(tui.SeveritySymbol(d.Severity)+" "+d.Error()))
	}
}

func success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, tui.SuccessStyle.Render(tui.SymbolCheck+" "+fmt.Sprintf(format, args...)))
}
