package logging

import (
	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// DiagnosticSink returns a sink that logs every diagnostic: errors through
// logger.Error and warnings through logger.Info.
func DiagnosticSink(logger ironpage.Logger) diag.Sink {
	return diag.SinkFunc(func(d diag.Diagnostic) {
		if d.Severity == diag.SeverityWarning {
			logger.Info("%s", d.Error())
			return
		}
		logger.Error("%s", d.Error())
	})
}
