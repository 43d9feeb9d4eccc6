package executor

import (
	"fmt"
	"io"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// ConsoleReporter provides console output for write progress.
type ConsoleReporter struct {
	writer io.Writer
}

// NewConsoleReporter creates a console reporter that writes to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{writer: w}
}

func (r *ConsoleReporter) StartStep(kind resources.Kind, count int) {
	if r.writer == nil {
		return
	}
	fmt.Fprintf(r.writer, "- writing %d %s... ", count, kind)
}

func (r *ConsoleReporter) CompleteStep(_ resources.Kind, err error) {
	if r.writer == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(r.writer, "✗ Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(r.writer, "✓")
}

func (r *ConsoleReporter) Warn(kind resources.Kind, externalID string, err error) {
	if r.writer == nil {
		return
	}
	fmt.Fprintf(r.writer, "\n  ! %s %s: %s\n", kind, externalID, err.Error())
}

func (r *ConsoleReporter) FinishExecution(result *ExecutionResult) {
	if r.writer == nil {
		return
	}
	fmt.Fprintln(r.writer, result.Message())
}

type noopReporter struct{}

func (noopReporter) StartStep(resources.Kind, int)      {}
func (noopReporter) CompleteStep(resources.Kind, error) {}
func (noopReporter) Warn(resources.Kind, string, error) {}
func (noopReporter) FinishExecution(*ExecutionResult)   {}
