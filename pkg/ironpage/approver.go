package ironpage

import "context"

// Approver confirms destructive schema store operations with the user.
//
// Implementations:
//   - ForcedApprover: approves without asking (--force)
//   - InteractiveApprover: asks the user to type the target's name
type Approver interface {
	// RequestApproval asks whether target may be destroyed. A false result
	// with a nil error means the user declined.
	RequestApproval(ctx context.Context, target string) (bool, error)
}
