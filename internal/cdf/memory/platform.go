// Package memory provides an in-process platform that behaves like the REST API:
// it assigns server fields, stringifies metadata and pages list results.
package memory

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/copystructure"

	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cdf"
)

const defaultPageSize = 100

// Platform is an in-memory stand-in for the platform. It is safe for concurrent use.
type Platform struct {
	// PageSize bounds every list response. Small values exercise pagination.
	PageSize int
	// Now supplies timestamps for created/last-updated fields.
	Now func() time.Time

	mu        sync.Mutex
	nextID    int64
	dataSets  map[string]*cdf.DataSet
	records   map[resources.Kind]map[string]resources.PlatformResource
	rows      map[string]*resources.SequenceContent
	files     map[string]*storedFile
	instances map[string]cdf.Instance
}

type storedFile struct {
	meta    cdf.FileMetadata
	content []byte
}

// NewPlatform returns an empty platform.
func NewPlatform() *Platform {
	return &Platform{
		PageSize:  defaultPageSize,
		Now:       time.Now,
		dataSets:  map[string]*cdf.DataSet{},
		records:   map[resources.Kind]map[string]resources.PlatformResource{},
		rows:      map[string]*resources.SequenceContent{},
		files:     map[string]*storedFile{},
		instances: map[string]cdf.Instance{},
	}
}

// AddDataSet registers a data set and returns it. Adding an existing external id
// returns the existing data set.
func (p *Platform) AddDataSet(externalID string) *cdf.DataSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ds, ok := p.dataSets[externalID]; ok {
		return ds
	}
	ds := &cdf.DataSet{ID: p.newID(), ExternalID: externalID, Name: externalID}
	p.dataSets[externalID] = ds
	return ds
}

// Client returns a platform client backed by p.
func (p *Platform) Client() *cdf.Client {
	return &cdf.Client{
		DataSets:      dataSets{p},
		Assets:        recordAPI[*resources.Asset]{p: p, kind: resources.KindAsset},
		Relationships: recordAPI[*resources.Relationship]{p: p, kind: resources.KindRelationship},
		Labels:        recordAPI[*resources.LabelDefinition]{p: p, kind: resources.KindLabel},
		Events:        recordAPI[*resources.Event]{p: p, kind: resources.KindEvent},
		Sequences:     sequences{recordAPI[*resources.Sequence]{p: p, kind: resources.KindSequence}},
		Files:         files{p},
		Instances:     instances{p},
	}
}

// Count returns the number of stored records of a platform kind.
func (p *Platform) Count(kind resources.Kind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records[kind])
}

// Rows returns a copy of the stored rows of one sequence, or nil.
func (p *Platform) Rows(externalID string) *resources.SequenceContent {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.rows[externalID]
	if !ok {
		return nil
	}
	return clone(c)
}

func (p *Platform) newID() int64 {
	p.nextID++
	return p.nextID
}

func (p *Platform) millis() int64 {
	return p.Now().UnixMilli()
}

func (p *Platform) pageSize(limit int) int {
	size := p.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if limit > 0 && limit < size {
		size = limit
	}
	return size
}

func clone[T any](v T) T {
	return copystructure.Must(copystructure.Copy(v)).(T)
}

func cloneProps(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return clone(m)
}

// page slices items at an offset cursor.
func page[T any](items []T, cursor string, size int) ([]T, string, error) {
	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n > len(items) {
			return nil, "", &cdf.APIError{StatusCode: http.StatusBadRequest, Message: "invalid cursor " + cursor}
		}
		start = n
	}
	end := min(start+size, len(items))
	next := ""
	if end < len(items) {
		next = strconv.Itoa(end)
	}
	return items[start:end], next, nil
}

type dataSets struct{ p *Platform }

func (d dataSets) RetrieveByExternalID(_ context.Context, externalID string) (*cdf.DataSet, error) {
	d.p.mu.Lock()
	defer d.p.mu.Unlock()
	ds, ok := d.p.dataSets[externalID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cdf.ErrDataSetNotFound, externalID)
	}
	cp := *ds
	return &cp, nil
}

type recordAPI[T resources.PlatformResource] struct {
	p    *Platform
	kind resources.Kind
}

func (r recordAPI[T]) Upsert(_ context.Context, items []T) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	store := r.p.records[r.kind]
	if store == nil {
		store = map[string]resources.PlatformResource{}
		r.p.records[r.kind] = store
	}

	for _, item := range items {
		if item.GetExternalID() == "" {
			return &cdf.APIError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("%s: missing externalId", r.kind)}
		}
	}

	now := r.p.millis()
	for _, item := range items {
		stored := clone(item)
		prev := store[item.GetExternalID()]
		r.p.assignServerFields(stored, prev, now)
		store[item.GetExternalID()] = stored
	}
	return nil
}

func (r recordAPI[T]) List(_ context.Context, req cdf.ListRequest) (cdf.Page[T], error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	var matched []T
	for _, item := range resources.Values(r.p.records[r.kind]) {
		if !inDataSets(item.GetDataSetID(), req.DataSetIDs) {
			continue
		}
		matched = append(matched, clone(item.(T)))
	}

	items, next, err := page(matched, req.Cursor, r.p.pageSize(req.Limit))
	if err != nil {
		return cdf.Page[T]{}, err
	}
	return cdf.Page[T]{Items: items, NextCursor: next}, nil
}

func inDataSets(id *int64, ids []int64) bool {
	if len(ids) == 0 {
		return true
	}
	return id != nil && slices.Contains(ids, *id)
}

func (p *Platform) assignServerFields(stored, prev resources.PlatformResource, now int64) {
	fields := resources.ServerFields{ID: p.newID(), CreatedTime: now, LastUpdatedTime: now}
	if prev != nil {
		if old, ok := serverFieldsOf(prev); ok {
			fields.ID = old.ID
			fields.CreatedTime = old.CreatedTime
		}
	}

	switch v := stored.(type) {
	case *resources.Asset:
		v.ServerFields = fields
		v.Metadata = resources.StringifyMetadata(v.Metadata)
		v.ParentID, v.RootID = p.assetLineage(v, fields.ID)
	case *resources.Relationship:
		v.ServerFields = fields
	case *resources.Sequence:
		v.ServerFields = fields
		v.Metadata = resources.StringifyMetadata(v.Metadata)
		for i := range v.Columns {
			v.Columns[i].CreatedTime = now
			v.Columns[i].LastUpdatedTime = now
			v.Columns[i].Metadata = resources.StringifyMetadata(v.Columns[i].Metadata)
		}
	case *resources.LabelDefinition:
		v.CreatedTime = fields.CreatedTime
	case *resources.Event:
		v.ServerFields = fields
		v.Metadata = resources.StringifyMetadata(v.Metadata)
	}
}

func serverFieldsOf(r resources.PlatformResource) (resources.ServerFields, bool) {
	switch v := r.(type) {
	case *resources.Asset:
		return v.ServerFields, true
	case *resources.Relationship:
		return v.ServerFields, true
	case *resources.Sequence:
		return v.ServerFields, true
	case *resources.Event:
		return v.ServerFields, true
	case *resources.LabelDefinition:
		return resources.ServerFields{CreatedTime: v.CreatedTime}, true
	}
	return resources.ServerFields{}, false
}

// assetLineage resolves the internal parent and root ids of an asset.
func (p *Platform) assetLineage(a *resources.Asset, id int64) (parentID, rootID int64) {
	assets := p.records[resources.KindAsset]
	rootID = id
	parentXID := a.ParentExternalID
	for depth := 0; parentXID != "" && depth < 100; depth++ {
		parent, ok := assets[parentXID].(*resources.Asset)
		if !ok {
			break
		}
		if depth == 0 {
			parentID = parent.ID
		}
		rootID = parent.ID
		parentXID = parent.ParentExternalID
	}
	return parentID, rootID
}

type sequences struct {
	recordAPI[*resources.Sequence]
}

func (s sequences) InsertRows(_ context.Context, content *resources.SequenceContent) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	seq, ok := s.p.records[resources.KindSequence][content.SequenceExternalID].(*resources.Sequence)
	if !ok {
		return &cdf.APIError{
			StatusCode: http.StatusBadRequest,
			Message:    "sequence not found: " + content.SequenceExternalID,
		}
	}
	declared := seq.ColumnIDs()
	for _, col := range content.Columns {
		if !slices.Contains(declared, col) {
			return &cdf.APIError{
				StatusCode: http.StatusBadRequest,
				Message:    fmt.Sprintf("sequence %s has no column %s", seq.ExternalID, col),
			}
		}
	}
	for _, row := range content.Rows {
		if len(row.Values) != len(content.Columns) {
			return &cdf.APIError{
				StatusCode: http.StatusBadRequest,
				Message:    fmt.Sprintf("row %d has %d values, expected %d", row.RowNumber, len(row.Values), len(content.Columns)),
			}
		}
	}

	stored, ok := s.p.rows[content.SequenceExternalID]
	if !ok || !slices.Equal(stored.Columns, content.Columns) {
		s.p.rows[content.SequenceExternalID] = clone(content)
		return nil
	}

	byNumber := map[int64]resources.SequenceRow{}
	for _, row := range stored.Rows {
		byNumber[row.RowNumber] = row
	}
	for _, row := range clone(content).Rows {
		byNumber[row.RowNumber] = row
	}
	merged := make([]resources.SequenceRow, 0, len(byNumber))
	for _, row := range byNumber {
		merged = append(merged, row)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].RowNumber < merged[j].RowNumber })
	stored.Rows = merged
	return nil
}

func (s sequences) RetrieveRows(_ context.Context, req cdf.RowsRequest) (cdf.RowsPage, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	seq, ok := s.p.records[resources.KindSequence][req.ExternalID].(*resources.Sequence)
	if !ok {
		return cdf.RowsPage{}, &cdf.APIError{StatusCode: http.StatusBadRequest, Message: "sequence not found: " + req.ExternalID}
	}

	content, ok := s.p.rows[req.ExternalID]
	if !ok {
		return cdf.RowsPage{Columns: seq.ColumnIDs()}, nil
	}

	index, table := clone(content).Table()
	rows := make([]cdf.SequenceRow, 0, len(index))
	for i, n := range index {
		rows = append(rows, cdf.SequenceRow{RowNumber: n, Values: table[i]})
	}
	items, next, err := page(rows, req.Cursor, s.p.pageSize(req.Limit))
	if err != nil {
		return cdf.RowsPage{}, err
	}
	return cdf.RowsPage{Columns: slices.Clone(content.Columns), Rows: items, NextCursor: next}, nil
}

type files struct{ p *Platform }

func (f files) Upload(_ context.Context, file cdf.FileUpload) error {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()

	existing, ok := f.p.files[file.ExternalID]
	if ok && !file.Overwrite {
		return &cdf.APIError{StatusCode: http.StatusConflict, Message: "file already exists: " + file.ExternalID}
	}

	meta := clone(file.FileMetadata)
	now := f.p.millis()
	meta.ID = f.p.newID()
	meta.CreatedTime = now
	if ok {
		meta.ID = existing.meta.ID
		meta.CreatedTime = existing.meta.CreatedTime
	}
	meta.LastUpdatedTime = now
	meta.Uploaded = true
	f.p.files[file.ExternalID] = &storedFile{meta: meta, content: slices.Clone(file.Content)}
	return nil
}

func (f files) Retrieve(_ context.Context, externalID string) (*cdf.FileMetadata, error) {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	stored, ok := f.p.files[externalID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", externalID, cdf.ErrNotFound)
	}
	meta := clone(stored.meta)
	return &meta, nil
}

func (f files) List(_ context.Context, req cdf.ListRequest) (cdf.Page[cdf.FileMetadata], error) {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()

	var matched []cdf.FileMetadata
	for _, stored := range resources.Values(f.p.files) {
		if inDataSets(stored.meta.DataSetID, req.DataSetIDs) {
			matched = append(matched, clone(stored.meta))
		}
	}
	items, next, err := page(matched, req.Cursor, f.p.pageSize(req.Limit))
	if err != nil {
		return cdf.Page[cdf.FileMetadata]{}, err
	}
	return cdf.Page[cdf.FileMetadata]{Items: items, NextCursor: next}, nil
}

func (f files) Download(_ context.Context, externalID string) ([]byte, error) {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	stored, ok := f.p.files[externalID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", externalID, cdf.ErrNotFound)
	}
	return slices.Clone(stored.content), nil
}

type instances struct{ p *Platform }

func instanceKey(space, typ, externalID string) string {
	return space + "/" + typ + "/" + externalID
}

func (i instances) Apply(_ context.Context, items []cdf.InstanceApply, replace bool) error {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()

	now := i.p.millis()
	for _, item := range items {
		if item.ExternalID == "" || item.Type == "" {
			return &cdf.APIError{StatusCode: http.StatusBadRequest, Message: "instance requires externalId and type"}
		}
		key := instanceKey(item.Space, item.Type, item.ExternalID)
		props := cloneProps(item.Properties)

		existing, ok := i.p.instances[key]
		if !ok {
			i.p.instances[key] = cdf.Instance{
				Space:           item.Space,
				ExternalID:      item.ExternalID,
				Type:            item.Type,
				Version:         1,
				CreatedTime:     now,
				LastUpdatedTime: now,
				Properties:      props,
			}
			continue
		}

		if !replace {
			merged := cloneProps(existing.Properties)
			if merged == nil {
				merged = map[string]any{}
			}
			for k, v := range props {
				merged[k] = v
			}
			props = merged
		}
		existing.Properties = props
		existing.Version++
		existing.LastUpdatedTime = now
		i.p.instances[key] = existing
	}
	return nil
}

func (i instances) List(_ context.Context, req cdf.InstanceListRequest) (cdf.Page[cdf.Instance], error) {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()

	var matched []cdf.Instance
	for _, inst := range resources.Values(i.p.instances) {
		if req.Space != "" && inst.Space != req.Space {
			continue
		}
		if req.Type != "" && inst.Type != req.Type {
			continue
		}
		matched = append(matched, clone(inst))
	}
	items, next, err := page(matched, req.Cursor, i.p.pageSize(req.Limit))
	if err != nil {
		return cdf.Page[cdf.Instance]{}, err
	}
	return cdf.Page[cdf.Instance]{Items: items, NextCursor: next}, nil
}

// Inject stores an instance as-is, e.g. one of a type the bootstrap does not know.
func (p *Platform) Inject(inst cdf.Instance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instances[instanceKey(inst.Space, inst.Type, inst.ExternalID)] = inst
}
