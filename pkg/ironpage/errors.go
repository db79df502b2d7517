package ironpage

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := cli.Execute()
//	if errors.Is(err, ironpage.ErrValidationFailed) {
//	    // The document was rejected; diagnostics were already printed
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCompilationFailed indicates a schema failed to parse or bind.
	ErrCompilationFailed = errors.New("schema compilation failed")

	// ErrResolutionFailed indicates an import closure could not be resolved.
	ErrResolutionFailed = errors.New("schema resolution failed")

	// ErrValidationFailed indicates a document did not validate.
	ErrValidationFailed = errors.New("document validation failed")

	// ErrSchemaNotFound indicates a schema source does not exist.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrStoreUnavailable indicates the schema store could not be reached.
	ErrStoreUnavailable = errors.New("schema store unavailable")

	// ErrApprovalDenied indicates the user declined a destructive operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// usageErrorPatterns are the prefixes cobra uses for command line misuse.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrCompilationFailed):
		return ExitCompilationFailed
	case errors.Is(err, ErrResolutionFailed):
		return ExitResolutionFailed
	case errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrSchemaNotFound):
		return ExitSchemaNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return ExitStoreError
	}

	msg := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.HasPrefix(msg, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(msg, "failed to connect") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") {
		return ExitStoreError
	}

	return ExitGeneralError
}
