package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/io7m/ironpage-sub000/internal/tui"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the target name
// to confirm destructive operations.
type InteractiveApprover struct {
	input  io.Reader
	output io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover.
func NewInteractiveApprover(input io.Reader, output io.Writer) ironpage.Approver {
	return &InteractiveApprover{input: input, output: output}
}

// RequestApproval prompts the user to type target to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	fmt.Fprintln(a.output, tui.WarningStyle.Render(fmt.Sprintf("WARNING: You are about to remove %s from the schema store.", target)))
	fmt.Fprintln(a.output, "Documents and schemas importing it will no longer resolve against the store.")
	fmt.Fprintf(a.output, "\nTo confirm, type '%s' and press Enter: ", target)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && !(err == io.EOF && input != "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == target {
			fmt.Fprintln(a.output, tui.SuccessStyle.Render(tui.SymbolCheck+" Confirmed."))
			return true, nil
		}
		fmt.Fprintf(a.output, "%s Input '%s' does not match '%s'. Operation cancelled.\n", tui.SymbolCross, input, target)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ ironpage.Approver = (*InteractiveApprover)(nil)
