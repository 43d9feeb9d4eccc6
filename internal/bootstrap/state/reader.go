// Package state reconstructs a resource collection from what the platform holds, to
// serve as the remote side of a diff.
package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"

	"github.com/cognite/powerops/internal/bootstrap/hash"
	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cdf"
	"github.com/cognite/powerops/internal/log"
	"github.com/cognite/powerops/internal/util/pagination"
)

// ErrUnknownInstanceType is returned for a data-model instance whose type has no
// apply-form conversion.
var ErrUnknownInstanceType = errors.New("unknown instance type")

// applyForms maps an instance type to a constructor of its apply-form record.
var applyForms = map[string]func() resources.Resource{
	cdf.InstanceTypeFileRef:        func() resources.Resource { return &resources.FileRef{} },
	cdf.InstanceTypeTransformation: func() resources.Resource { return &resources.Transformation{} },
	cdf.InstanceTypeMapping:        func() resources.Resource { return &resources.Mapping{} },
	cdf.InstanceTypeModelTemplate:  func() resources.Resource { return &resources.ModelTemplate{} },
}

// Options configures a Reader.
type Options struct {
	// Space is the data-model space to list instances from. Defaults to cdf.DefaultSpace.
	Space string
	// PageSize is the list limit sent with every request; zero uses the client default.
	PageSize int
}

// Reader lists platform state into a Collection.
type Reader struct {
	client *cdf.Client
	logger *slog.Logger
	opts   Options
}

// NewReader creates a reader. A nil logger discards output.
func NewReader(client *cdf.Client, logger *slog.Logger, opts Options) *Reader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Space == "" {
		opts.Space = cdf.DefaultSpace
	}
	return &Reader{client: client, logger: logger, opts: opts}
}

// Read returns every resource linked to the data set. Any list or retrieval failure
// aborts the read.
func (r *Reader) Read(ctx context.Context, dataSetExternalID string) (*resources.Collection, error) {
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{Workflow: "bootstrap", WorkflowPhase: "read"})

	ds, err := r.client.DataSets.RetrieveByExternalID(ctx, dataSetExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data set %q: %w", dataSetExternalID, err)
	}
	scope := []int64{ds.ID}
	col := resources.MustCollection()

	lists := []func() error{
		func() error {
			return listInto[*resources.Asset](ctx, r, col, resources.KindAsset, r.client.Assets, scope)
		},
		func() error {
			return listInto[*resources.Sequence](ctx, r, col, resources.KindSequence, r.client.Sequences, scope)
		},
		func() error {
			return listInto[*resources.Relationship](ctx, r, col, resources.KindRelationship,
				r.client.Relationships, scope)
		},
		func() error {
			return listInto[*resources.LabelDefinition](ctx, r, col, resources.KindLabel, r.client.Labels, scope)
		},
		func() error {
			return listInto[*resources.Event](ctx, r, col, resources.KindEvent, r.client.Events, scope)
		},
	}
	for _, list := range lists {
		if err := list(); err != nil {
			return nil, err
		}
	}

	if err := r.readInstances(ctx, col); err != nil {
		return nil, err
	}
	if err := r.readShopFiles(ctx, col, scope); err != nil {
		return nil, err
	}
	if err := r.readSequenceContent(ctx, col); err != nil {
		return nil, err
	}

	r.logger.Debug("Read platform state",
		slog.String("data_set", ds.ExternalID),
		slog.Int("resources", col.Size()),
	)
	return col, nil
}

func listInto[T resources.Resource](
	ctx context.Context, r *Reader, col *resources.Collection, kind resources.Kind,
	api cdf.ResourceAPI[T], scope []int64,
) error {
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{WorkflowKind: string(kind)})
	items, err := pagination.All(ctx, func(ctx context.Context, cursor string) ([]T, string, error) {
		page, err := api.List(ctx, cdf.ListRequest{DataSetIDs: scope, Cursor: cursor, Limit: r.opts.PageSize})
		return page.Items, page.NextCursor, err
	})
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", kind, err)
	}
	for _, item := range items {
		if err := col.Add(item); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readInstances(ctx context.Context, col *resources.Collection) error {
	instances, err := pagination.All(ctx, func(ctx context.Context, cursor string) ([]cdf.Instance, string, error) {
		page, err := r.client.Instances.List(ctx, cdf.InstanceListRequest{
			Space:  r.opts.Space,
			Cursor: cursor,
			Limit:  r.opts.PageSize,
		})
		return page.Items, page.NextCursor, err
	})
	if err != nil {
		return fmt.Errorf("failed to list instances: %w", err)
	}

	for _, inst := range instances {
		if inst.DeletedTime != nil {
			continue
		}
		rec, err := ToApply(inst)
		if err != nil {
			return err
		}
		if err := col.Add(rec); err != nil {
			return err
		}
	}
	return nil
}

// ToApply converts an instance read form to its apply-form record. Only the fields
// of the apply form are kept; server fields and unknown properties are dropped.
func ToApply(inst cdf.Instance) (resources.Resource, error) {
	newRecord, ok := applyForms[inst.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q (external id %s)", ErrUnknownInstanceType, inst.Type, inst.ExternalID)
	}

	input := make(map[string]any, len(inst.Properties)+1)
	for k, v := range inst.Properties {
		input[k] = v
	}
	input["externalId"] = inst.ExternalID

	rec := newRecord()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           rec,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("failed to convert %s %s: %w", inst.Type, inst.ExternalID, err)
	}
	return rec, nil
}

func (r *Reader) readShopFiles(ctx context.Context, col *resources.Collection, scope []int64) error {
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{WorkflowKind: string(resources.KindShopFile)})
	files, err := pagination.All(ctx, func(ctx context.Context, cursor string) ([]cdf.FileMetadata, string, error) {
		page, err := r.client.Files.List(ctx, cdf.ListRequest{DataSetIDs: scope, Cursor: cursor, Limit: r.opts.PageSize})
		return page.Items, page.NextCursor, err
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	for _, f := range files {
		info := resources.ShopFileInfoFromMetadata(f.Metadata, f.Name)
		sum := f.Metadata[resources.MetadataHash]
		if sum == "" {
			content, err := r.client.Files.Download(ctx, f.ExternalID)
			if err != nil {
				return fmt.Errorf("failed to download file %s: %w", f.ExternalID, err)
			}
			sum = hash.BytesHash(content)
			r.logger.Debug("Hashed remote file without hash metadata", slog.String("external_id", f.ExternalID))
		}
		if err := col.Add(&resources.HashedShopFile{ShopFileInfo: info, Hash: sum}); err != nil {
			return err
		}
	}
	return nil
}

// readSequenceContent retrieves the rows of every sequence in col. Sequences without
// rows get no content entry.
func (r *Reader) readSequenceContent(ctx context.Context, col *resources.Collection) error {
	ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{WorkflowKind: string(resources.KindSequenceContent)})
	for _, xid := range col.ExternalIDs(resources.KindSequence) {
		var columns []string
		rows, err := pagination.All(ctx, func(ctx context.Context, cursor string) ([]cdf.SequenceRow, string, error) {
			page, err := r.client.Sequences.RetrieveRows(ctx, cdf.RowsRequest{
				ExternalID: xid,
				Cursor:     cursor,
				Limit:      r.opts.PageSize,
			})
			if columns == nil {
				columns = page.Columns
			}
			return page.Rows, page.NextCursor, err
		})
		if err != nil {
			return fmt.Errorf("failed to retrieve rows of sequence %s: %w", xid, err)
		}
		if len(rows) == 0 {
			continue
		}

		content := make([]resources.SequenceRow, 0, len(rows))
		for _, row := range rows {
			content = append(content, resources.SequenceRow{RowNumber: row.RowNumber, Values: row.Values})
		}
		if err := col.Add(resources.NewSequenceContent(xid, columns, content)); err != nil {
			return err
		}
	}
	return nil
}
