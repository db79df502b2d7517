package ironpage

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Command completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration
	ExitStoreError        = 11 // Schema store unreachable
	ExitCompilationFailed = 12 // Schema did not compile
	ExitResolutionFailed  = 13 // Import closure did not resolve
	ExitValidationFailed  = 14 // Document did not validate
	ExitSchemaNotFound    = 15 // Schema source missing
	ExitApprovalDenied    = 16 // User declined a destructive store operation
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultStoreTimeout bounds a single CLI interaction with the schema store.
	DefaultStoreTimeout = 30 * time.Second

	// SchemaFileExtension is the extension of schema source files on disk.
	SchemaFileExtension = ".xml"

	// SchemaNamespace is the XML namespace of the schema source syntax.
	SchemaNamespace = "urn:com.io7m.ironpage.metadata.schema.xml:1:0"
)
