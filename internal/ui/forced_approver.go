package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval, used when the --force flag is provided. It announces the
// operation and approves unless the context is already done.
type ForcedApprover struct {
	output io.Writer
}

// NewForcedApprover creates a new ForcedApprover. A nil output writes to stderr.
func NewForcedApprover(output io.Writer) ironpage.Approver {
	if output == nil {
		output = os.Stderr
	}
	return &ForcedApprover{output: output}
}

// RequestApproval approves immediately.
func (a *ForcedApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(a.output, "--force given; removing %s without confirmation\n", target)
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ ironpage.Approver = (*ForcedApprover)(nil)
