package cdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/util/pagination"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "https://api.cognitedata.com"

	defaultBatchSize = 1000
	defaultPageLimit = 1000
)

// RESTConfig configures the REST client.
type RESTConfig struct {
	BaseURL string
	Project string
	// Tokens supplies bearer tokens. A nil source sends unauthenticated requests.
	Tokens    oauth2.TokenSource
	BatchSize int
}

type restClient struct {
	cfg  RESTConfig
	doer Doer
}

// NewRESTClient returns a Client that talks to the platform over JSON REST.
func NewRESTClient(cfg RESTConfig, doer Doer) (*Client, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("project is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	rc := &restClient{cfg: cfg, doer: doer}
	return &Client{
		DataSets:      &restDataSets{rc: rc},
		Assets:        &restResource[*resources.Asset]{rc: rc, path: "assets", prepare: prepareAsset},
		Relationships: &restResource[*resources.Relationship]{rc: rc, path: "relationships"},
		Labels:        &restResource[*resources.LabelDefinition]{rc: rc, path: "labels"},
		Events:        &restResource[*resources.Event]{rc: rc, path: "events", prepare: prepareEvent},
		Sequences: &restSequences{
			restResource: &restResource[*resources.Sequence]{rc: rc, path: "sequences", prepare: prepareSequence},
		},
		Files:     &restFiles{rc: rc},
		Instances: &restInstances{rc: rc},
	}, nil
}

func (c *restClient) projectPath(path string) string {
	return fmt.Sprintf("api/v1/projects/%s/%s", url.PathEscape(c.cfg.Project), path)
}

func (c *restClient) token() (string, error) {
	if c.cfg.Tokens == nil {
		return "", nil
	}
	tok, err := c.cfg.Tokens.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	return tok.AccessToken, nil
}

// call sends in as JSON to a project path and decodes the response into out.
func (c *restClient) call(ctx context.Context, method, path string, in, out any) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	var headers map[string]string
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		headers = map[string]string{"Content-Type": "application/json"}
	}

	res, err := request(ctx, c.doer, method, c.cfg.BaseURL, c.projectPath(path), token, headers, body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newAPIError(res)
	}
	if out == nil || len(res.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

type idRef struct {
	ID         int64  `json:"id,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
}

type itemsBody[T any] struct {
	Items            []T  `json:"items"`
	IgnoreUnknownIDs bool `json:"ignoreUnknownIds,omitempty"`
}

type listBody struct {
	Filter struct {
		DataSetIDs []idRef `json:"dataSetIds,omitempty"`
	} `json:"filter"`
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor,omitempty"`
}

func newListBody(req ListRequest) listBody {
	var body listBody
	for _, id := range req.DataSetIDs {
		body.Filter.DataSetIDs = append(body.Filter.DataSetIDs, idRef{ID: id})
	}
	body.Limit = req.Limit
	if body.Limit <= 0 {
		body.Limit = defaultPageLimit
	}
	body.Cursor = req.Cursor
	return body
}

type restDataSets struct {
	rc *restClient
}

func (d *restDataSets) RetrieveByExternalID(ctx context.Context, externalID string) (*DataSet, error) {
	var out itemsBody[DataSet]
	in := itemsBody[idRef]{Items: []idRef{{ExternalID: externalID}}, IgnoreUnknownIDs: true}
	if err := d.rc.call(ctx, http.MethodPost, "datasets/byids", in, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataSetNotFound, externalID)
	}
	return &out.Items[0], nil
}

type restResource[T any] struct {
	rc      *restClient
	path    string
	prepare func(T) T
}

func (r *restResource[T]) Upsert(ctx context.Context, items []T) error {
	return pagination.ProcessInBatches(items, r.rc.cfg.BatchSize, func(batch []T) error {
		payload := make([]T, 0, len(batch))
		for _, item := range batch {
			if r.prepare != nil {
				item = r.prepare(item)
			}
			payload = append(payload, item)
		}
		return r.rc.call(ctx, http.MethodPost, r.path+"/upsert", itemsBody[T]{Items: payload}, nil)
	})
}

func (r *restResource[T]) List(ctx context.Context, req ListRequest) (Page[T], error) {
	var page Page[T]
	err := r.rc.call(ctx, http.MethodPost, r.path+"/list", newListBody(req), &page)
	return page, err
}

// The platform stores metadata values as strings.

func prepareAsset(a *resources.Asset) *resources.Asset {
	cp := *a
	cp.Metadata = resources.StringifyMetadata(a.Metadata)
	return &cp
}

func prepareEvent(e *resources.Event) *resources.Event {
	cp := *e
	cp.Metadata = resources.StringifyMetadata(e.Metadata)
	return &cp
}

func prepareSequence(s *resources.Sequence) *resources.Sequence {
	cp := *s
	cp.Metadata = resources.StringifyMetadata(s.Metadata)
	cp.Columns = make([]resources.SequenceColumn, len(s.Columns))
	for i, col := range s.Columns {
		col.Metadata = resources.StringifyMetadata(col.Metadata)
		cp.Columns[i] = col
	}
	return &cp
}

type restSequences struct {
	*restResource[*resources.Sequence]
}

type rowsBody struct {
	ExternalID string        `json:"externalId"`
	Columns    []string      `json:"columns"`
	Rows       []SequenceRow `json:"rows"`
}

func (s *restSequences) InsertRows(ctx context.Context, content *resources.SequenceContent) error {
	rows := make([]SequenceRow, 0, len(content.Rows))
	for _, r := range content.Rows {
		rows = append(rows, SequenceRow{RowNumber: r.RowNumber, Values: wireValues(r.Values)})
	}
	in := itemsBody[rowsBody]{Items: []rowsBody{{
		ExternalID: content.SequenceExternalID,
		Columns:    content.Columns,
		Rows:       rows,
	}}}
	return s.rc.call(ctx, http.MethodPost, "sequences/data", in, nil)
}

// wireValues replaces values JSON cannot carry with null.
func wireValues(values []any) []any {
	rv := make([]any, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		rv[i] = v
	}
	return rv
}

func (s *restSequences) RetrieveRows(ctx context.Context, req RowsRequest) (RowsPage, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	in := struct {
		ExternalID string `json:"externalId"`
		Cursor     string `json:"cursor,omitempty"`
		Limit      int    `json:"limit"`
	}{req.ExternalID, req.Cursor, limit}

	var out struct {
		Columns []struct {
			ExternalID string `json:"externalId"`
		} `json:"columns"`
		Rows       []SequenceRow `json:"rows"`
		NextCursor string        `json:"nextCursor"`
	}
	if err := s.rc.call(ctx, http.MethodPost, "sequences/data/list", in, &out); err != nil {
		return RowsPage{}, err
	}

	page := RowsPage{Rows: out.Rows, NextCursor: out.NextCursor}
	for _, col := range out.Columns {
		page.Columns = append(page.Columns, col.ExternalID)
	}
	return page, nil
}

type restFiles struct {
	rc *restClient
}

func (f *restFiles) Upload(ctx context.Context, file FileUpload) error {
	var created struct {
		UploadURL string `json:"uploadUrl"`
	}
	path := "files?overwrite=" + strconv.FormatBool(file.Overwrite)
	if err := f.rc.call(ctx, http.MethodPost, path, file.FileMetadata, &created); err != nil {
		return err
	}
	if created.UploadURL == "" {
		return fmt.Errorf("no upload url returned for file %s", file.ExternalID)
	}

	res, err := request(ctx, f.rc.doer, http.MethodPut, "", created.UploadURL, "",
		map[string]string{"Content-Type": "application/octet-stream"}, bytes.NewReader(file.Content))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newAPIError(res)
	}
	return nil
}

func (f *restFiles) Retrieve(ctx context.Context, externalID string) (*FileMetadata, error) {
	var out itemsBody[FileMetadata]
	in := itemsBody[idRef]{Items: []idRef{{ExternalID: externalID}}, IgnoreUnknownIDs: true}
	if err := f.rc.call(ctx, http.MethodPost, "files/byids", in, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("file %s: %w", externalID, ErrNotFound)
	}
	return &out.Items[0], nil
}

func (f *restFiles) List(ctx context.Context, req ListRequest) (Page[FileMetadata], error) {
	var page Page[FileMetadata]
	err := f.rc.call(ctx, http.MethodPost, "files/list", newListBody(req), &page)
	return page, err
}

func (f *restFiles) Download(ctx context.Context, externalID string) ([]byte, error) {
	var links itemsBody[struct {
		DownloadURL string `json:"downloadUrl"`
	}]
	in := itemsBody[idRef]{Items: []idRef{{ExternalID: externalID}}}
	if err := f.rc.call(ctx, http.MethodPost, "files/downloadlink", in, &links); err != nil {
		return nil, err
	}
	if len(links.Items) == 0 || links.Items[0].DownloadURL == "" {
		return nil, fmt.Errorf("file %s: %w", externalID, ErrNotFound)
	}

	res, err := request(ctx, f.rc.doer, http.MethodGet, "", links.Items[0].DownloadURL, "", nil, nil)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, newAPIError(res)
	}
	return res.Body, nil
}

type restInstances struct {
	rc *restClient
}

func (i *restInstances) Apply(ctx context.Context, items []InstanceApply, replace bool) error {
	return pagination.ProcessInBatches(items, i.rc.cfg.BatchSize, func(batch []InstanceApply) error {
		in := struct {
			Items   []InstanceApply `json:"items"`
			Replace bool            `json:"replace"`
		}{batch, replace}
		return i.rc.call(ctx, http.MethodPost, "models/instances", in, nil)
	})
}

func (i *restInstances) List(ctx context.Context, req InstanceListRequest) (Page[Instance], error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	in := struct {
		Space  string `json:"space,omitempty"`
		Type   string `json:"type,omitempty"`
		Cursor string `json:"cursor,omitempty"`
		Limit  int    `json:"limit"`
	}{req.Space, req.Type, req.Cursor, limit}

	var page Page[Instance]
	err := i.rc.call(ctx, http.MethodPost, "models/instances/list", in, &page)
	return page, err
}
