package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cdf"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestPlatform_DataSets(t *testing.T) {
	p := NewPlatform()
	ds := p.AddDataSet("powerops:bootstrap")
	assert.Same(t, ds, p.AddDataSet("powerops:bootstrap"))

	got, err := p.Client().DataSets.RetrieveByExternalID(context.Background(), "powerops:bootstrap")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)

	_, err = p.Client().DataSets.RetrieveByExternalID(context.Background(), "nope")
	assert.ErrorIs(t, err, cdf.ErrDataSetNotFound)
}

func TestPlatform_AssetUpsertAssignsServerFields(t *testing.T) {
	p := NewPlatform()
	p.Now = fixedClock(1000)
	client := p.Client()
	ctx := context.Background()

	root := &resources.Asset{ExternalID: "watercourse_Glomma", Name: "Glomma", Metadata: map[string]any{"head": 42.0}}
	child := &resources.Asset{ExternalID: "plant_Kongsvinger", Name: "Kongsvinger", ParentExternalID: "watercourse_Glomma"}
	require.NoError(t, client.Assets.Upsert(ctx, []*resources.Asset{root}))
	require.NoError(t, client.Assets.Upsert(ctx, []*resources.Asset{child}))

	assert.Empty(t, root.ID, "input records are not modified")
	assert.Equal(t, 42.0, root.Metadata["head"])

	page, err := client.Assets.List(ctx, cdf.ListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	stored := map[string]*resources.Asset{}
	for _, a := range page.Items {
		stored[a.ExternalID] = a
	}
	r := stored["watercourse_Glomma"]
	assert.NotZero(t, r.ID)
	assert.Equal(t, int64(1000), r.CreatedTime)
	assert.Equal(t, map[string]any{"head": "42.0"}, r.Metadata)
	assert.Equal(t, r.ID, r.RootID)

	c := stored["plant_Kongsvinger"]
	assert.Equal(t, r.ID, c.ParentID)
	assert.Equal(t, r.ID, c.RootID)

	p.Now = fixedClock(2000)
	require.NoError(t, client.Assets.Upsert(ctx, []*resources.Asset{{ExternalID: "watercourse_Glomma", Name: "Glomma 2"}}))
	page, err = client.Assets.List(ctx, cdf.ListRequest{})
	require.NoError(t, err)
	updated := page.Items[1]
	require.Equal(t, "watercourse_Glomma", updated.ExternalID)
	assert.Equal(t, r.ID, updated.ID)
	assert.Equal(t, int64(1000), updated.CreatedTime)
	assert.Equal(t, int64(2000), updated.LastUpdatedTime)
	assert.Equal(t, "Glomma 2", updated.Name)
}

func TestPlatform_ListPagesAndFilters(t *testing.T) {
	p := NewPlatform()
	p.PageSize = 2
	client := p.Client()
	ctx := context.Background()
	ds := p.AddDataSet("ds")

	var events []*resources.Event
	for _, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		e := &resources.Event{ExternalID: id}
		if id != "e5" {
			e.SetDataSetID(ds.ID)
		}
		events = append(events, e)
	}
	require.NoError(t, client.Events.Upsert(ctx, events))

	var seen []string
	cursor := ""
	for {
		page, err := client.Events.List(ctx, cdf.ListRequest{DataSetIDs: []int64{ds.ID}, Cursor: cursor})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 2)
		for _, e := range page.Items {
			seen = append(seen, e.ExternalID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, seen)

	_, err := client.Events.List(ctx, cdf.ListRequest{Cursor: "bogus"})
	var apiErr *cdf.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestPlatform_UpsertRejectsMissingExternalID(t *testing.T) {
	p := NewPlatform()
	err := p.Client().Labels.Upsert(context.Background(), []*resources.LabelDefinition{{Name: "x"}})
	require.Error(t, err)
	assert.Equal(t, 0, p.Count(resources.KindLabel))
}

func TestPlatform_SequenceRows(t *testing.T) {
	p := NewPlatform()
	p.PageSize = 2
	client := p.Client()
	ctx := context.Background()

	seq := &resources.Sequence{
		ExternalID: "bid_matrix",
		Columns: []resources.SequenceColumn{
			{ExternalID: "price", ValueType: resources.ValueTypeDouble, Metadata: map[string]any{"unit": 1}},
			{ExternalID: "volume", ValueType: resources.ValueTypeDouble},
		},
	}
	require.NoError(t, client.Sequences.Upsert(ctx, []*resources.Sequence{seq}))

	err := client.Sequences.InsertRows(ctx, resources.NewSequenceContentFromTable("missing", nil, nil))
	assert.Error(t, err)

	err = client.Sequences.InsertRows(ctx, resources.NewSequenceContentFromTable("bid_matrix", []string{"nope"}, nil))
	assert.ErrorContains(t, err, "no column nope")

	content := resources.NewSequenceContentFromTable("bid_matrix", []string{"price", "volume"}, [][]any{
		{1.0, 10.0}, {2.0, math.NaN()}, {3.0, 30.0},
	})
	require.NoError(t, client.Sequences.InsertRows(ctx, content))

	first, err := client.Sequences.RetrieveRows(ctx, cdf.RowsRequest{ExternalID: "bid_matrix"})
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "volume"}, first.Columns)
	require.Len(t, first.Rows, 2)
	assert.True(t, math.IsNaN(first.Rows[1].Values[1].(float64)))
	require.NotEmpty(t, first.NextCursor)

	second, err := client.Sequences.RetrieveRows(ctx, cdf.RowsRequest{ExternalID: "bid_matrix", Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Rows, 1)
	assert.Equal(t, int64(2), second.Rows[0].RowNumber)
	assert.Empty(t, second.NextCursor)

	update := resources.NewSequenceContent("bid_matrix", []string{"price", "volume"}, []resources.SequenceRow{
		{RowNumber: 1, Values: []any{2.5, 25.0}},
		{RowNumber: 5, Values: []any{6.0, 60.0}},
	})
	require.NoError(t, client.Sequences.InsertRows(ctx, update))
	stored := p.Rows("bid_matrix")
	require.Len(t, stored.Rows, 4)
	assert.Equal(t, []any{2.5, 25.0}, stored.Rows[1].Values)
	assert.Equal(t, int64(5), stored.Rows[3].RowNumber)

	page, err := client.Sequences.List(ctx, cdf.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"unit": "1"}, page.Items[0].Columns[0].Metadata)
	assert.NotZero(t, page.Items[0].Columns[0].CreatedTime)
}

func TestPlatform_Files(t *testing.T) {
	p := NewPlatform()
	client := p.Client()
	ctx := context.Background()
	ds := p.AddDataSet("ds")

	upload := cdf.FileUpload{
		FileMetadata: cdf.FileMetadata{
			ExternalID: "Glomma_model",
			Name:       "model.yaml",
			Metadata:   map[string]string{"hash": "h1"},
			DataSetID:  &ds.ID,
		},
		Content: []byte("v1"),
	}
	require.NoError(t, client.Files.Upload(ctx, upload))

	err := client.Files.Upload(ctx, upload)
	var apiErr *cdf.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.StatusCode)

	upload.Overwrite = true
	upload.Content = []byte("v2")
	require.NoError(t, client.Files.Upload(ctx, upload))

	content, err := client.Files.Download(ctx, "Glomma_model")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))

	meta, err := client.Files.Retrieve(ctx, "Glomma_model")
	require.NoError(t, err)
	assert.Equal(t, "h1", meta.Metadata["hash"])
	assert.True(t, meta.Uploaded)

	page, err := client.Files.List(ctx, cdf.ListRequest{DataSetIDs: []int64{ds.ID + 100}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = client.Files.Download(ctx, "missing")
	assert.ErrorIs(t, err, cdf.ErrNotFound)
}

func TestPlatform_Instances(t *testing.T) {
	p := NewPlatform()
	client := p.Client()
	ctx := context.Background()

	apply := func(props map[string]any, replace bool) {
		t.Helper()
		require.NoError(t, client.Instances.Apply(ctx, []cdf.InstanceApply{{
			Space: cdf.DefaultSpace, ExternalID: "t1", Type: cdf.InstanceTypeTransformation, Properties: props,
		}}, replace))
	}

	apply(map[string]any{"method": "AddConstant", "order": 1}, true)
	apply(map[string]any{"order": 2}, false)

	page, err := client.Instances.List(ctx, cdf.InstanceListRequest{Type: cdf.InstanceTypeTransformation})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Items[0].Version)
	assert.Equal(t, map[string]any{"method": "AddConstant", "order": 2}, page.Items[0].Properties)

	apply(map[string]any{"order": 3}, true)
	page, err = client.Instances.List(ctx, cdf.InstanceListRequest{Type: cdf.InstanceTypeTransformation})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"order": 3}, page.Items[0].Properties)

	page, err = client.Instances.List(ctx, cdf.InstanceListRequest{Type: cdf.InstanceTypeMapping})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	err = client.Instances.Apply(ctx, []cdf.InstanceApply{{ExternalID: "x"}}, true)
	assert.Error(t, err)
}
