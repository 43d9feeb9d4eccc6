package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cognite/powerops/internal/bootstrap/hash"
	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cdf"
	"github.com/cognite/powerops/internal/log"
)

// ErrPendingShopFiles is returned when a collection still holds shop files whose
// content hash has not been computed.
var ErrPendingShopFiles = errors.New("collection has unhashed shop files")

// Options configures executor behavior.
type Options struct {
	// DataSetExternalID names the data set every platform record is linked to.
	DataSetExternalID string
	// SkipDataModel leaves model templates, mappings, transformations and file refs untouched.
	SkipDataModel bool
	// OverwriteFiles uploads shop files even when the remote hash matches.
	OverwriteFiles bool
	// Space is the data-model space instances are applied to. Defaults to cdf.DefaultSpace.
	Space string
	// ReadFile loads shop file content. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Executor writes a resource collection to the platform.
type Executor struct {
	client   *cdf.Client
	reporter ProgressReporter
	logger   *slog.Logger
	opts     Options
}

// New creates an executor. A nil reporter or logger disables that output.
func New(client *cdf.Client, reporter ProgressReporter, logger *slog.Logger, opts Options) *Executor {
	if reporter == nil {
		reporter = noopReporter{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Space == "" {
		opts.Space = cdf.DefaultSpace
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	return &Executor{client: client, reporter: reporter, logger: logger, opts: opts}
}

// Execute writes col. Every failure aborts the run and no result is returned, except
// sequence row inserts: those are written per item and their failures are collected as
// warnings on the result. The collection's platform records are stamped with the
// resolved data set id.
func (e *Executor) Execute(ctx context.Context, col *resources.Collection) (*ExecutionResult, error) {
	if col == nil {
		col = resources.MustCollection()
	}
	if pending := col.PendingShopFiles(); len(pending) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrPendingShopFiles, pending[0].GetExternalID())
	}

	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{Workflow: "bootstrap", WorkflowPhase: "write"})

	ds, err := e.client.DataSets.RetrieveByExternalID(ctx, e.opts.DataSetExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data set %q: %w", e.opts.DataSetExternalID, err)
	}
	e.logger.Debug("Resolved data set",
		slog.String("data_set", ds.ExternalID),
		slog.Int64("data_set_id", ds.ID),
	)

	result := &ExecutionResult{DataSetID: ds.ID, Written: map[resources.Kind]int{}}

	for _, r := range col.AllPlatformResources() {
		r.SetDataSetID(ds.ID)
	}

	steps := []struct {
		kind  resources.Kind
		count int
		run   func(context.Context) error
	}{
		{resources.KindLabel, col.Len(resources.KindLabel), func(ctx context.Context) error {
			return e.client.Labels.Upsert(ctx, resources.Values(col.Labels))
		}},
		{resources.KindAsset, col.Len(resources.KindAsset), func(ctx context.Context) error {
			return e.client.Assets.Upsert(ctx, resources.Values(col.Assets))
		}},
		{resources.KindSequence, col.Len(resources.KindSequence), func(ctx context.Context) error {
			return e.client.Sequences.Upsert(ctx, resources.Values(col.Sequences))
		}},
		{resources.KindRelationship, col.Len(resources.KindRelationship), func(ctx context.Context) error {
			return e.client.Relationships.Upsert(ctx, resources.Values(col.Relationships))
		}},
		{resources.KindEvent, col.Len(resources.KindEvent), func(ctx context.Context) error {
			return e.client.Events.Upsert(ctx, resources.Values(col.Events))
		}},
	}
	for _, step := range steps {
		if step.count == 0 {
			continue
		}
		if err := e.runStep(ctx, step.kind, step.count, step.run); err != nil {
			return nil, err
		}
		result.Written[step.kind] = step.count
	}

	if e.opts.SkipDataModel {
		e.logger.Info("Skipping data model resources")
	} else {
		for _, kind := range []resources.Kind{
			resources.KindFileRef,
			resources.KindTransformation,
			resources.KindMapping,
			resources.KindModelTemplate,
		} {
			items := col.Resources(kind)
			if len(items) == 0 {
				continue
			}
			err := e.runStep(ctx, kind, len(items), func(ctx context.Context) error {
				return e.applyInstances(ctx, items)
			})
			if err != nil {
				return nil, err
			}
			result.Written[kind] = len(items)
		}
	}

	if n := col.Len(resources.KindSequenceContent); n > 0 {
		e.reporter.StartStep(resources.KindSequenceContent, n)
		written := 0
		for _, content := range resources.Values(col.SequenceContent) {
			if e.insertRows(ctx, content, result) {
				written++
			}
		}
		result.Written[resources.KindSequenceContent] = written
		e.reporter.CompleteStep(resources.KindSequenceContent, nil)
	}

	if n := col.Len(resources.KindShopFile); n > 0 {
		e.reporter.StartStep(resources.KindShopFile, n)
		written := 0
		for _, sf := range resources.Values(col.ShopFiles) {
			uploaded, err := e.uploadShopFile(ctx, ds.ID, sf.(*resources.HashedShopFile), result)
			if err != nil {
				e.reporter.CompleteStep(resources.KindShopFile, err)
				return nil, err
			}
			if uploaded {
				written++
			}
		}
		result.Written[resources.KindShopFile] = written
		e.reporter.CompleteStep(resources.KindShopFile, nil)
	}

	fingerprint, err := hash.CalculateResourceHash(col.AllPlatformResources())
	if err != nil {
		e.logger.Debug("Failed to fingerprint written resources", slog.String("error", err.Error()))
	}
	result.Fingerprint = fingerprint

	e.reporter.FinishExecution(result)
	return result, nil
}

func (e *Executor) runStep(ctx context.Context, kind resources.Kind, count int, run func(context.Context) error) error {
	e.reporter.StartStep(kind, count)
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{WorkflowKind: string(kind)})

	err := run(ctx)
	e.reporter.CompleteStep(kind, err)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", kind, err)
	}
	e.logger.Debug("Wrote resources", slog.String("kind", string(kind)), slog.Int("count", count))
	return nil
}

// applyInstances applies data-model records one at a time, replacing what the
// platform holds. The first failure stops the step.
func (e *Executor) applyInstances(ctx context.Context, items []resources.Resource) error {
	for _, item := range items {
		apply, err := cdf.NewInstanceApply(e.opts.Space, item)
		if err != nil {
			return err
		}
		if err := e.client.Instances.Apply(ctx, []cdf.InstanceApply{apply}, true); err != nil {
			return fmt.Errorf("%s: %w", apply.ExternalID, err)
		}
	}
	return nil
}

func (e *Executor) insertRows(ctx context.Context, content *resources.SequenceContent, result *ExecutionResult) bool {
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{
		WorkflowKind: string(resources.KindSequenceContent),
		WorkflowRef:  content.SequenceExternalID,
	})
	if err := e.client.Sequences.InsertRows(ctx, content); err != nil {
		e.warn(result, resources.KindSequenceContent, content.SequenceExternalID, err)
		return false
	}
	return true
}

// uploadShopFile uploads sf unless the platform already holds a file with the same
// content hash and overwriting was not requested. Platform errors are returned as is.
func (e *Executor) uploadShopFile(
	ctx context.Context, dataSetID int64, sf *resources.HashedShopFile, result *ExecutionResult,
) (bool, error) {
	xid := sf.GetExternalID()
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{
		WorkflowKind: string(resources.KindShopFile),
		WorkflowRef:  xid,
	})

	remote, err := e.client.Files.Retrieve(ctx, xid)
	switch {
	case errors.Is(err, cdf.ErrNotFound):
		remote = nil
	case err != nil:
		return false, err
	}

	if remote != nil && !e.opts.OverwriteFiles && remote.Metadata[resources.MetadataHash] == sf.Hash {
		e.logger.Debug("Shop file unchanged, skipping upload", slog.String("external_id", xid))
		result.SkippedFiles = append(result.SkippedFiles, xid)
		return false, nil
	}

	content, err := e.opts.ReadFile(sf.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read shop file %s: %w", sf.Path, err)
	}

	dsID := dataSetID
	err = e.client.Files.Upload(ctx, cdf.FileUpload{
		FileMetadata: cdf.FileMetadata{
			ExternalID: xid,
			Name:       sf.FileName,
			Metadata:   sf.FileMetadata(),
			DataSetID:  &dsID,
		},
		Content:   content,
		Overwrite: true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *Executor) warn(result *ExecutionResult, kind resources.Kind, externalID string, err error) {
	e.logger.Warn("Failed to write resource",
		slog.String("kind", string(kind)),
		slog.String("external_id", externalID),
		slog.String("error", err.Error()),
	)
	result.warn(kind, externalID, err)
	e.reporter.Warn(kind, externalID, err)
}
