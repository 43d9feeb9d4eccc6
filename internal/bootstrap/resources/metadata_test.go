package resources

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMetadataValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"integral float keeps fraction", 42.0, "42.0"},
		{"int", 3, "3"},
		{"int64", int64(-12), "-12"},
		{"fractional float", 0.25, "0.25"},
		{"float32", float32(1.5), "1.5"},
		{"string passthrough", "Glomma", "Glomma"},
		{"bool", true, "True"},
		{"nil", nil, ""},
		{"nan", math.NaN(), "nan"},
		{"negative float", -7.0, "-7.0"},
		{"large float", 1e20, "1e+20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMetadataValue(tt.in))
		})
	}
}

func TestStringifyMetadata(t *testing.T) {
	assert.Nil(t, StringifyMetadata(nil))
	assert.Nil(t, StringifyMetadata(map[string]any{}))
	assert.Equal(t,
		map[string]any{"head": "42.0", "count": "3", "name": "x"},
		StringifyMetadata(map[string]any{"head": 42.0, "count": 3, "name": "x"}),
	)
}

func TestSequenceContent_Table(t *testing.T) {
	c := NewSequenceContent("s", []string{"x", "y"}, []SequenceRow{
		{RowNumber: 2, Values: []any{3.0, 30.0}},
		{RowNumber: 0, Values: []any{1.0, 10.0}},
		{RowNumber: 1, Values: []any{2.0, 20.0}},
	})

	index, rows := c.Table()
	assert.Equal(t, []int64{0, 1, 2}, index)
	assert.Equal(t, [][]any{{1.0, 10.0}, {2.0, 20.0}, {3.0, 30.0}}, rows)
	assert.Equal(t, int64(2), c.Rows[0].RowNumber, "original order is preserved")
}

func TestShopFile_ExternalID(t *testing.T) {
	p := NewPendingShopFile("Glomma", "/models/glomma/model_glomma.yaml", ShopFileModel)
	assert.Equal(t, "Glomma_model_glomma", p.GetExternalID())
	assert.Equal(t, "model_glomma.yaml", p.FileName)

	h := p.Finalize("abc")
	assert.Equal(t, p.GetExternalID(), h.GetExternalID())
	assert.Equal(t, KindShopFile, h.GetKind())
	assert.Equal(t, p.GetInfo(), h.GetInfo())
}

func TestHashedShopFile_FileMetadata(t *testing.T) {
	h := NewPendingShopFile("Glomma", "/data/cut_glomma.txt", ShopFileCut).Finalize("abc")
	md := h.FileMetadata()
	assert.Equal(t, "abc", md[MetadataHash])

	info := ShopFileInfoFromMetadata(md, "ignored")
	assert.Equal(t, "Glomma", info.Watercourse)
	assert.Equal(t, "cut_glomma.txt", info.FileName)
	assert.Equal(t, ShopFileCut, info.FileKind)
	assert.Equal(t, h.GetExternalID(), info.ExternalID())

	assert.Equal(t, "fallback.txt", ShopFileInfoFromMetadata(nil, "fallback.txt").FileName)
}
