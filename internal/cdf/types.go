package cdf

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSetNotFound is returned when a data set external id does not resolve.
	ErrDataSetNotFound = errors.New("data set not found")
	// ErrNotFound is returned by single-item lookups that miss.
	ErrNotFound = errors.New("not found")
)

// DataSet is the top-level scoping container every written resource is tagged with.
type DataSet struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name,omitempty"`
}

// ListRequest scopes a list call. An empty Cursor requests the first page.
type ListRequest struct {
	DataSetIDs []int64
	Cursor     string
	Limit      int
}

// Page is one page of a list response. An empty NextCursor marks the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// RowsRequest pages through the rows of one sequence.
type RowsRequest struct {
	ExternalID string
	Cursor     string
	Limit      int
}

// RowsPage is one page of sequence rows.
type RowsPage struct {
	Columns    []string
	Rows       []SequenceRow
	NextCursor string
}

// SequenceRow mirrors resources.SequenceRow on the wire.
type SequenceRow struct {
	RowNumber int64 `json:"rowNumber"`
	Values    []any `json:"values"`
}

// FileMetadata describes an uploaded file.
type FileMetadata struct {
	ID              int64             `json:"id,omitempty"`
	ExternalID      string            `json:"externalId"`
	Name            string            `json:"name"`
	MimeType        string            `json:"mimeType,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	DataSetID       *int64            `json:"dataSetId,omitempty"`
	Uploaded        bool              `json:"uploaded,omitempty"`
	CreatedTime     int64             `json:"createdTime,omitempty"`
	LastUpdatedTime int64             `json:"lastUpdatedTime,omitempty"`
}

// FileUpload is a file write. Content is sent after the metadata is registered.
type FileUpload struct {
	FileMetadata
	Content   []byte
	Overwrite bool
}

// Data-model instance types known to the bootstrap.
const (
	InstanceTypeModelTemplate  = "ModelTemplate"
	InstanceTypeMapping        = "Mapping"
	InstanceTypeTransformation = "Transformation"
	InstanceTypeFileRef        = "FileRef"
)

// DefaultSpace is the data-model space instances are written to.
const DefaultSpace = "power-ops"

// InstanceApply is the write form of a data-model instance.
type InstanceApply struct {
	Space      string         `json:"space"`
	ExternalID string         `json:"externalId"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Instance is the read form of a data-model instance. It carries server fields the
// write form rejects.
type Instance struct {
	Space           string         `json:"space"`
	ExternalID      string         `json:"externalId"`
	Type            string         `json:"type"`
	Version         int64          `json:"version"`
	CreatedTime     int64          `json:"createdTime"`
	LastUpdatedTime int64          `json:"lastUpdatedTime"`
	DeletedTime     *int64         `json:"deletedTime,omitempty"`
	Properties      map[string]any `json:"properties"`
}

// InstanceListRequest pages through instances of one type.
type InstanceListRequest struct {
	Space  string
	Type   string
	Cursor string
	Limit  int
}

// APIError is a non-2xx platform response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("platform returned %d: %s", e.StatusCode, e.Message)
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request id %s)", e.RequestID)
	}
	return msg
}
