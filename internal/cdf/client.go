package cdf

import (
	"context"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// DataSetsAPI resolves data sets.
type DataSetsAPI interface {
	RetrieveByExternalID(ctx context.Context, externalID string) (*DataSet, error)
}

// ResourceAPI is the shape shared by the simple platform endpoints.
type ResourceAPI[T any] interface {
	Upsert(ctx context.Context, items []T) error
	List(ctx context.Context, req ListRequest) (Page[T], error)
}

// SequencesAPI adds row access to the sequence endpoint.
type SequencesAPI interface {
	ResourceAPI[*resources.Sequence]
	InsertRows(ctx context.Context, content *resources.SequenceContent) error
	RetrieveRows(ctx context.Context, req RowsRequest) (RowsPage, error)
}

// FilesAPI manages uploaded files.
type FilesAPI interface {
	Upload(ctx context.Context, file FileUpload) error
	Retrieve(ctx context.Context, externalID string) (*FileMetadata, error)
	List(ctx context.Context, req ListRequest) (Page[FileMetadata], error)
	Download(ctx context.Context, externalID string) ([]byte, error)
}

// InstancesAPI writes and lists data-model instances.
type InstancesAPI interface {
	Apply(ctx context.Context, items []InstanceApply, replace bool) error
	List(ctx context.Context, req InstanceListRequest) (Page[Instance], error)
}

// Client bundles every platform API the bootstrap uses. Fields can be swapped
// individually, which tests use to inject failures.
type Client struct {
	DataSets      DataSetsAPI
	Assets        ResourceAPI[*resources.Asset]
	Relationships ResourceAPI[*resources.Relationship]
	Labels        ResourceAPI[*resources.LabelDefinition]
	Events        ResourceAPI[*resources.Event]
	Sequences     SequencesAPI
	Files         FilesAPI
	Instances     InstancesAPI
}
