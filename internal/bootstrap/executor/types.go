package executor

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// ExecutionResult represents the outcome of writing a collection.
type ExecutionResult struct {
	DataSetID int64 `json:"data_set_id" yaml:"data_set_id"`

	// Written counts the records sent per kind.
	Written map[resources.Kind]int `json:"written" yaml:"written"`

	// SkippedFiles lists shop files whose remote hash already matched.
	SkippedFiles []string `json:"skipped_files,omitempty" yaml:"skipped_files,omitempty"`

	// Warnings are per-item failures that did not abort the run.
	Warnings []ExecutionWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Fingerprint identifies the platform records that were written.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	errs *multierror.Error
}

// ExecutionWarning names the record whose write failed.
type ExecutionWarning struct {
	Kind       resources.Kind `json:"kind" yaml:"kind"`
	ExternalID string         `json:"external_id" yaml:"external_id"`
	Error      string         `json:"error" yaml:"error"`
}

func (r *ExecutionResult) warn(kind resources.Kind, externalID string, err error) {
	r.Warnings = append(r.Warnings, ExecutionWarning{Kind: kind, ExternalID: externalID, Error: err.Error()})
	r.errs = multierror.Append(r.errs, fmt.Errorf("%s %s: %w", kind, externalID, err))
}

// Err aggregates the warnings, or returns nil when there were none.
func (r *ExecutionResult) Err() error {
	return r.errs.ErrorOrNil()
}

// Message returns a user-friendly summary of the execution result.
func (r *ExecutionResult) Message() string {
	total := 0
	for _, n := range r.Written {
		total += n
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Wrote %d resources to data set %d", total, r.DataSetID)
	if len(r.SkippedFiles) > 0 {
		fmt.Fprintf(&sb, ", skipped %d unchanged files", len(r.SkippedFiles))
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, ", %d warnings", len(r.Warnings))
	}
	return sb.String()
}

// ProgressReporter provides real-time feedback while a collection is written.
type ProgressReporter interface {
	// StartStep is called before a kind is written.
	StartStep(kind resources.Kind, count int)

	// CompleteStep is called after a kind is written (success or failure).
	CompleteStep(kind resources.Kind, err error)

	// Warn is called when a single record fails without aborting the run.
	Warn(kind resources.Kind, externalID string, err error)

	// FinishExecution is called at the end of a successful run.
	FinishExecution(result *ExecutionResult)
}
