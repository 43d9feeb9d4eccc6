package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cdf"
	"github.com/cognite/powerops/internal/cdf/memory"
)

const testDataSet = "powerops:test"

// MockProgressReporter for testing
type MockProgressReporter struct {
	mock.Mock
	Steps []resources.Kind
}

func (m *MockProgressReporter) StartStep(kind resources.Kind, count int) {
	m.Steps = append(m.Steps, kind)
	m.Called(kind, count)
}

func (m *MockProgressReporter) CompleteStep(kind resources.Kind, err error) {
	m.Called(kind, err)
}

func (m *MockProgressReporter) Warn(kind resources.Kind, externalID string, err error) {
	m.Called(kind, externalID, err)
}

func (m *MockProgressReporter) FinishExecution(result *ExecutionResult) {
	m.Called(result)
}

func permissiveReporter() *MockProgressReporter {
	r := &MockProgressReporter{}
	r.On("StartStep", mock.Anything, mock.Anything).Return()
	r.On("CompleteStep", mock.Anything, mock.Anything).Return()
	r.On("Warn", mock.Anything, mock.Anything, mock.Anything).Return()
	r.On("FinishExecution", mock.Anything).Return()
	return r
}

// failingSequences fails InsertRows for the listed external ids.
type failingSequences struct {
	cdf.SequencesAPI
	fail     map[string]bool
	inserted []string
}

func (f *failingSequences) InsertRows(ctx context.Context, content *resources.SequenceContent) error {
	if f.fail[content.SequenceExternalID] {
		return errors.New("rows rejected")
	}
	f.inserted = append(f.inserted, content.SequenceExternalID)
	return f.SequencesAPI.InsertRows(ctx, content)
}

// recordingInstances records every Apply call and rejects the listed external ids.
type recordingInstances struct {
	cdf.InstancesAPI
	reject map[string]bool
	calls  [][]string
}

func (r *recordingInstances) Apply(ctx context.Context, items []cdf.InstanceApply, replace bool) error {
	var ids []string
	for _, item := range items {
		ids = append(ids, item.ExternalID)
		if r.reject[item.ExternalID] {
			r.calls = append(r.calls, ids)
			return &cdf.APIError{StatusCode: 400, Message: "invalid instance " + item.ExternalID}
		}
	}
	r.calls = append(r.calls, ids)
	return r.InstancesAPI.Apply(ctx, items, replace)
}

// failingFiles rejects every upload with err.
type failingFiles struct {
	cdf.FilesAPI
	err error
}

func (f *failingFiles) Upload(context.Context, cdf.FileUpload) error {
	return f.err
}

func sampleCollection() *resources.Collection {
	return resources.MustCollection(
		&resources.LabelDefinition{ExternalID: "relationship_to.plant", Name: "plant"},
		&resources.Asset{ExternalID: "watercourse_Glomma", Name: "Glomma", Metadata: map[string]any{"head": 42.0}},
		&resources.Asset{ExternalID: "plant_Kongsvinger", Name: "Kongsvinger", ParentExternalID: "watercourse_Glomma"},
		resources.NewRelationship("watercourse_Glomma", resources.EndpointAsset,
			"plant_Kongsvinger", resources.EndpointAsset, "relationship_to.plant"),
		&resources.Sequence{ExternalID: "seq_a", Columns: []resources.SequenceColumn{{ExternalID: "x"}}},
		&resources.Sequence{ExternalID: "seq_b", Columns: []resources.SequenceColumn{{ExternalID: "x"}}},
		resources.NewSequenceContentFromTable("seq_a", []string{"x"}, [][]any{{1.0}}),
		resources.NewSequenceContentFromTable("seq_b", []string{"x"}, [][]any{{2.0}, {3.0}}),
		&resources.Event{ExternalID: "ev", Type: resources.BootstrapFinishedEventType},
		&resources.FileRef{ExternalID: "fr", Type: "model", FileExternalID: "Glomma_model"},
		&resources.Transformation{ExternalID: "tr", Method: "MultiplyConstant", Arguments: map[string]any{"value": 2.0}},
		&resources.Mapping{ExternalID: "mp", Path: "reservoir.Glomma.inflow", Transformations: []string{"tr"}},
		&resources.ModelTemplate{ExternalID: "mt", TemplateVersion: "1", ShopVersion: "15", Watercourse: "Glomma"},
	)
}

func newPlatform() (*memory.Platform, *cdf.DataSet) {
	p := memory.NewPlatform()
	return p, p.AddDataSet(testDataSet)
}

func TestExecutor_Execute(t *testing.T) {
	p, ds := newPlatform()
	reporter := permissiveReporter()
	col := sampleCollection()

	result, err := New(p.Client(), reporter, nil, Options{DataSetExternalID: testDataSet}).
		Execute(context.Background(), col)
	require.NoError(t, err)
	require.NoError(t, result.Err())

	assert.Equal(t, ds.ID, result.DataSetID)
	assert.NotEmpty(t, result.Fingerprint)
	assert.Equal(t, []resources.Kind{
		resources.KindLabel,
		resources.KindAsset,
		resources.KindSequence,
		resources.KindRelationship,
		resources.KindEvent,
		resources.KindFileRef,
		resources.KindTransformation,
		resources.KindMapping,
		resources.KindModelTemplate,
		resources.KindSequenceContent,
	}, reporter.Steps)

	for _, kind := range resources.PlatformKinds {
		assert.Equal(t, col.Len(kind), p.Count(kind), kind)
	}
	assert.Equal(t, 2, result.Written[resources.KindSequenceContent])
	assert.Len(t, p.Rows("seq_b").Rows, 2)

	for _, r := range col.AllPlatformResources() {
		require.NotNil(t, r.GetDataSetID(), r.GetExternalID())
		assert.Equal(t, ds.ID, *r.GetDataSetID())
	}

	page, err := p.Client().Instances.List(context.Background(), cdf.InstanceListRequest{
		Space: cdf.DefaultSpace,
		Type:  cdf.InstanceTypeTransformation,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "MultiplyConstant", page.Items[0].Properties["method"])
	reporter.AssertCalled(t, "FinishExecution", result)
	reporter.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_Execute_DataSetNotFound(t *testing.T) {
	p := memory.NewPlatform()
	reporter := &MockProgressReporter{}

	result, err := New(p.Client(), reporter, nil, Options{DataSetExternalID: "missing"}).
		Execute(context.Background(), sampleCollection())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, cdf.ErrDataSetNotFound)
	assert.Zero(t, p.Count(resources.KindAsset))
	reporter.AssertNotCalled(t, "StartStep", mock.Anything, mock.Anything)
}

func TestExecutor_Execute_PendingShopFiles(t *testing.T) {
	p, _ := newPlatform()
	col := resources.MustCollection(resources.NewPendingShopFile("Glomma", "model.yaml", resources.ShopFileModel))

	_, err := New(p.Client(), nil, nil, Options{DataSetExternalID: testDataSet}).
		Execute(context.Background(), col)
	assert.ErrorIs(t, err, ErrPendingShopFiles)
}

func TestExecutor_Execute_UpsertFailureIsFatal(t *testing.T) {
	p, _ := newPlatform()
	reporter := permissiveReporter()
	col := resources.MustCollection(
		&resources.Asset{ExternalID: "a"},
		&resources.Asset{ExternalID: ""},
		&resources.Event{ExternalID: "e"},
	)

	result, err := New(p.Client(), reporter, nil, Options{DataSetExternalID: testDataSet}).
		Execute(context.Background(), col)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to write assets")

	var apiErr *cdf.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Nil(t, result, "no partial result after a fatal error")
	assert.Zero(t, p.Count(resources.KindEvent), "later steps do not run")
	reporter.AssertCalled(t, "CompleteStep", resources.KindAsset, mock.Anything)
	reporter.AssertNotCalled(t, "FinishExecution", mock.Anything)
}

func TestExecutor_Execute_SkipDataModel(t *testing.T) {
	p, _ := newPlatform()

	result, err := New(p.Client(), nil, nil, Options{DataSetExternalID: testDataSet, SkipDataModel: true}).
		Execute(context.Background(), sampleCollection())
	require.NoError(t, err)

	for _, kind := range resources.DataModelKinds {
		assert.NotContains(t, result.Written, kind)
	}
	page, err := p.Client().Instances.List(context.Background(), cdf.InstanceListRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestExecutor_Execute_SequenceContentFailureContinues(t *testing.T) {
	p, _ := newPlatform()
	client := p.Client()
	seqs := &failingSequences{SequencesAPI: client.Sequences, fail: map[string]bool{"seq_a": true}}
	client.Sequences = seqs

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	reporter := permissiveReporter()

	result, err := New(client, reporter, logger, Options{DataSetExternalID: testDataSet}).
		Execute(context.Background(), sampleCollection())
	require.NoError(t, err)

	assert.Equal(t, []string{"seq_b"}, seqs.inserted)
	assert.Nil(t, p.Rows("seq_a"))
	assert.Len(t, p.Rows("seq_b").Rows, 2)
	assert.Equal(t, 1, result.Written[resources.KindSequenceContent])

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "seq_a", result.Warnings[0].ExternalID)
	assert.ErrorContains(t, result.Err(), "seq_a")
	assert.Contains(t, logs.String(), `"external_id":"seq_a"`)
	reporter.AssertCalled(t, "Warn", resources.KindSequenceContent, "seq_a", mock.Anything)
	reporter.AssertCalled(t, "FinishExecution", result)
}

func TestExecutor_Execute_ShopFiles(t *testing.T) {
	reads := 0
	readFile := func(path string) ([]byte, error) {
		reads++
		return []byte("content of " + path), nil
	}
	shopFile := func(hash string) *resources.Collection {
		return resources.MustCollection(
			resources.NewPendingShopFile("Glomma", "/data/model_glomma.yaml", resources.ShopFileModel).Finalize(hash),
		)
	}

	p, ds := newPlatform()
	opts := Options{DataSetExternalID: testDataSet, ReadFile: readFile}

	result, err := New(p.Client(), nil, nil, opts).Execute(context.Background(), shopFile("h1"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written[resources.KindShopFile])
	assert.Equal(t, 1, reads)

	meta, err := p.Client().Files.Retrieve(context.Background(), "Glomma_model_glomma")
	require.NoError(t, err)
	assert.Equal(t, "h1", meta.Metadata[resources.MetadataHash])
	assert.Equal(t, "model_glomma.yaml", meta.Name)
	require.NotNil(t, meta.DataSetID)
	assert.Equal(t, ds.ID, *meta.DataSetID)

	t.Run("unchanged hash is skipped", func(t *testing.T) {
		result, err := New(p.Client(), nil, nil, opts).Execute(context.Background(), shopFile("h1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Glomma_model_glomma"}, result.SkippedFiles)
		assert.Zero(t, result.Written[resources.KindShopFile])
		assert.Equal(t, 1, reads)
	})

	t.Run("overwrite forces upload", func(t *testing.T) {
		o := opts
		o.OverwriteFiles = true
		result, err := New(p.Client(), nil, nil, o).Execute(context.Background(), shopFile("h1"))
		require.NoError(t, err)
		assert.Empty(t, result.SkippedFiles)
		assert.Equal(t, 2, reads)
	})

	t.Run("changed hash is uploaded", func(t *testing.T) {
		result, err := New(p.Client(), nil, nil, opts).Execute(context.Background(), shopFile("h2"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Written[resources.KindShopFile])

		meta, err := p.Client().Files.Retrieve(context.Background(), "Glomma_model_glomma")
		require.NoError(t, err)
		assert.Equal(t, "h2", meta.Metadata[resources.MetadataHash])
	})

	t.Run("unreadable file aborts the run", func(t *testing.T) {
		o := opts
		o.ReadFile = func(string) ([]byte, error) { return nil, errors.New("no such file") }
		result, err := New(p.Client(), nil, nil, o).Execute(context.Background(), shopFile("h3"))
		assert.ErrorContains(t, err, "no such file")
		assert.Nil(t, result)
	})

	t.Run("upload failure aborts the run", func(t *testing.T) {
		client := p.Client()
		uploadErr := &cdf.APIError{StatusCode: 500, Message: "platform 500"}
		client.Files = &failingFiles{FilesAPI: client.Files, err: uploadErr}
		reporter := permissiveReporter()

		result, err := New(client, reporter, nil, opts).Execute(context.Background(), shopFile("h4"))
		assert.Same(t, uploadErr, err, "platform errors are returned as is")
		assert.Nil(t, result)
		reporter.AssertCalled(t, "CompleteStep", resources.KindShopFile, uploadErr)
		reporter.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything, mock.Anything)
		reporter.AssertNotCalled(t, "FinishExecution", mock.Anything)
	})
}

func TestExecutionResult_Message(t *testing.T) {
	r := &ExecutionResult{
		DataSetID:    7,
		Written:      map[resources.Kind]int{resources.KindAsset: 2, resources.KindEvent: 1},
		SkippedFiles: []string{"f"},
	}
	assert.Equal(t, "Wrote 3 resources to data set 7, skipped 1 unchanged files", r.Message())
	assert.NoError(t, r.Err())

	r.warn(resources.KindSequenceContent, "s", errors.New("boom"))
	assert.Equal(t, "Wrote 3 resources to data set 7, skipped 1 unchanged files, 1 warnings", r.Message())
	assert.Error(t, r.Err())
}

func TestExecutor_Execute_DataModelPerInstance(t *testing.T) {
	col := sampleCollection()
	require.NoError(t, col.Add(&resources.Mapping{ExternalID: "mp2", Path: "plant.Kongsvinger.inflow"}))

	t.Run("one apply call per record in dependency order", func(t *testing.T) {
		p, _ := newPlatform()
		client := p.Client()
		inst := &recordingInstances{InstancesAPI: client.Instances}
		client.Instances = inst

		_, err := New(client, nil, nil, Options{DataSetExternalID: testDataSet}).
			Execute(context.Background(), col)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"fr"}, {"tr"}, {"mp"}, {"mp2"}, {"mt"}}, inst.calls)
	})

	t.Run("a rejected record aborts the run", func(t *testing.T) {
		p, _ := newPlatform()
		client := p.Client()
		inst := &recordingInstances{InstancesAPI: client.Instances, reject: map[string]bool{"mp": true}}
		client.Instances = inst

		result, err := New(client, nil, nil, Options{DataSetExternalID: testDataSet}).
			Execute(context.Background(), col)
		assert.ErrorContains(t, err, "failed to write mappings: mp:")
		var apiErr *cdf.APIError
		assert.ErrorAs(t, err, &apiErr)
		assert.Nil(t, result)
		assert.Equal(t, [][]string{{"fr"}, {"tr"}, {"mp"}}, inst.calls)
	})
}
