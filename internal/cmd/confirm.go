package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type confirmContextKey string

const autoApproveContextKey confirmContextKey = "powerops-auto-approve"

// SetAutoApprove stores the --auto-approve flag state on the command context.
func SetAutoApprove(cmd *cobra.Command, approved bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, autoApproveContextKey, approved)
	cmd.SetContext(ctx)
}

// AutoApproveEnabled reports whether the user opted to skip confirmation prompts.
func AutoApproveEnabled(helper Helper) bool {
	if helper == nil || helper.GetCmd() == nil {
		return false
	}
	ctx := helper.GetCmd().Context()
	if ctx == nil {
		return false
	}
	approved, _ := ctx.Value(autoApproveContextKey).(bool)
	return approved
}

// Confirm asks the user to type 'yes' before a destructive write. It returns an
// ExecutionError when the user declines, the input closes, or the context ends.
func Confirm(helper Helper, description string, warnings ...string) error {
	if AutoApproveEnabled(helper) {
		return nil
	}

	streams := helper.GetStreams()
	fmt.Fprintf(streams.Out, "\nYou are about to %s\n", description)

	for _, warning := range warnings {
		if strings.TrimSpace(warning) != "" {
			fmt.Fprintln(streams.Out, warning)
		}
	}

	fmt.Fprint(streams.Out, "\nDo you want to continue? Type 'yes' to confirm: ")

	// Redirected stdin cannot answer the prompt; ask the controlling terminal.
	input := streams.In
	if f, ok := input.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			return PrepareExecutionErrorMsg(helper, "confirmation needs a terminal; pass --auto-approve to skip it")
		}
		defer tty.Close()
		input = tty
	}

	reader := bufio.NewReader(input)
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			errCh <- err
			return
		}
		lineCh <- line
	}()

	ctx := helper.GetContext()
	if ctx == nil {
		ctx = context.Background()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		return PrepareExecutionErrorMsg(helper, "apply cancelled")
	case <-sigCh:
		return PrepareExecutionErrorMsg(helper, "apply cancelled")
	case <-errCh:
		return PrepareExecutionErrorMsg(helper, "apply cancelled")
	case line := <-lineCh:
		if strings.ToLower(strings.TrimSpace(line)) != "yes" {
			return PrepareExecutionErrorMsg(helper, "apply cancelled")
		}
		return nil
	}
}
