package resources

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notARecord struct{ Resource }

func TestCollection_Add(t *testing.T) {
	t.Run("routes records by kind", func(t *testing.T) {
		c, err := NewCollection(
			&Asset{ExternalID: "watercourse_Glomma", Name: "Glomma"},
			NewRelationship("watercourse_Glomma", EndpointAsset, "plant_Kongsvinger", EndpointAsset),
			&Sequence{ExternalID: "seq"},
			&LabelDefinition{ExternalID: "relationship_to.plant"},
			&Event{ExternalID: "ev"},
			NewSequenceContentFromTable("seq", []string{"a"}, [][]any{{1.0}}),
			NewPendingShopFile("Glomma", "/tmp/model.yaml", ShopFileModel),
			&ModelTemplate{ExternalID: "mt"},
			&Mapping{ExternalID: "m"},
			&Transformation{ExternalID: "t"},
			&FileRef{ExternalID: "f"},
		)
		require.NoError(t, err)

		for _, kind := range AllKinds {
			assert.Equal(t, 1, c.Len(kind), kind)
		}
		assert.Equal(t, 11, c.Size())
		assert.True(t, c.Has(KindShopFile, "Glomma_model"))
		assert.True(t, c.Has(KindRelationship, "watercourse_Glomma.plant_Kongsvinger"))
		assert.False(t, c.Has(KindAsset, "missing"))
		assert.False(t, c.Has(Kind("unknown"), "watercourse_Glomma"))
	})

	t.Run("same record twice is idempotent", func(t *testing.T) {
		a := &Asset{ExternalID: "a", Name: "A"}
		c := MustCollection(a)
		before := c.Copy()

		require.NoError(t, c.Add(a))
		assert.Equal(t, before, c)
	})

	t.Run("duplicate external id keeps the later record", func(t *testing.T) {
		c := MustCollection(
			&Asset{ExternalID: "a", Name: "first"},
			&Asset{ExternalID: "a", Name: "second"},
		)
		assert.Equal(t, 1, c.Len(KindAsset))
		assert.Equal(t, "second", c.Assets["a"].Name)
	})

	t.Run("unknown record is rejected", func(t *testing.T) {
		c := MustCollection()
		err := c.Add(notARecord{})
		assert.True(t, errors.Is(err, ErrUnknownKind))

		err = c.Add(nil)
		assert.True(t, errors.Is(err, ErrUnknownKind))

		for _, typedNil := range []Resource{(*Asset)(nil), (*SequenceContent)(nil), (*HashedShopFile)(nil)} {
			assert.NotPanics(t, func() { err = c.Add(typedNil) })
			assert.ErrorIs(t, err, ErrUnknownKind)
			assert.ErrorContains(t, err, fmt.Sprintf("nil %T", typedNil))
		}
		assert.Zero(t, c.Size())
	})

	t.Run("zero value collection accepts records", func(t *testing.T) {
		var c Collection
		require.NoError(t, c.Add(&Event{ExternalID: "e"}))
		assert.Equal(t, 1, c.Len(KindEvent))
	})
}

func TestCollection_Combine(t *testing.T) {
	a := MustCollection(&Asset{ExternalID: "x", Name: "a"}, &Event{ExternalID: "only-a"})
	b := MustCollection(&Asset{ExternalID: "x", Name: "b"}, &Asset{ExternalID: "y", Name: "b"})
	c := MustCollection(&Asset{ExternalID: "y", Name: "c"}, &FileRef{ExternalID: "f"})

	t.Run("right-biased", func(t *testing.T) {
		ab := a.Combine(b)
		assert.Equal(t, "b", ab.Assets["x"].Name)
		assert.Equal(t, "b", ab.Assets["y"].Name)
		assert.True(t, ab.Has(KindEvent, "only-a"))

		ba := b.Combine(a)
		assert.Equal(t, "a", ba.Assets["x"].Name)
	})

	t.Run("associative", func(t *testing.T) {
		left := a.Combine(b).Combine(c)
		right := a.Combine(b.Combine(c))
		assert.Equal(t, left, right)
		assert.Equal(t, "c", left.Assets["y"].Name)
	})

	t.Run("inputs are untouched", func(t *testing.T) {
		_ = a.Combine(c)
		assert.False(t, a.Has(KindFileRef, "f"))
		assert.Equal(t, 1, a.Len(KindAsset))
	})

	t.Run("merge in place", func(t *testing.T) {
		m := a.Copy()
		m.Merge(b)
		assert.Equal(t, a.Combine(b), m)
		m.Merge(nil)
		assert.Equal(t, a.Combine(b), m)
	})

	t.Run("collisions", func(t *testing.T) {
		assert.Equal(t, []string{"assets/x"}, a.Collisions(b))
		assert.Empty(t, a.Collisions(c))
		assert.Nil(t, a.Collisions(nil))
	})
}

func TestCollection_Copy(t *testing.T) {
	orig := MustCollection(
		&Asset{ExternalID: "a", Name: "A", Metadata: map[string]any{"k": 1}},
		NewSequenceContentFromTable("s", []string{"c"}, [][]any{{1.5}}),
		NewPendingShopFile("Glomma", "model.yaml", ShopFileModel),
	)

	cp := orig.Copy()
	require.Equal(t, orig, cp)

	cp.Assets["a"].Name = "changed"
	cp.Assets["a"].Metadata["k"] = 2
	cp.Assets["a"].SetDataSetID(7)
	cp.SequenceContent["s"].Rows[0].Values[0] = 2.5
	require.NoError(t, cp.Add(&Asset{ExternalID: "b"}))

	assert.Equal(t, "A", orig.Assets["a"].Name)
	assert.Equal(t, 1, orig.Assets["a"].Metadata["k"])
	assert.Nil(t, orig.Assets["a"].GetDataSetID())
	assert.Equal(t, 1.5, orig.SequenceContent["s"].Rows[0].Values[0])
	assert.False(t, orig.Has(KindAsset, "b"))
	assert.IsType(t, &PendingShopFile{}, cp.ShopFiles["Glomma_model"])
}

func TestCollection_AllPlatformResources(t *testing.T) {
	c := MustCollection(
		&Event{ExternalID: "e"},
		&Asset{ExternalID: "b"},
		&Asset{ExternalID: "a"},
		&LabelDefinition{ExternalID: "l"},
		&Sequence{ExternalID: "s"},
		NewRelationship("a", EndpointAsset, "b", EndpointAsset),
		&FileRef{ExternalID: "not-platform"},
		NewSequenceContentFromTable("s", nil, nil),
	)

	var ids []string
	for _, r := range c.AllPlatformResources() {
		ids = append(ids, string(r.GetKind())+"/"+r.GetExternalID())
	}
	assert.Equal(t, []string{
		"assets/a",
		"assets/b",
		"relationships/a.b",
		"sequences/s",
		"labels/l",
		"events/e",
	}, ids)
}

func TestCollection_FinalizeShopFiles(t *testing.T) {
	c := MustCollection(
		NewPendingShopFile("Glomma", "/data/glomma/model.yaml", ShopFileModel),
		NewPendingShopFile("Glomma", "/data/glomma/commands.txt", ShopFileCommands),
		(&PendingShopFile{ShopFileInfo: ShopFileInfo{Watercourse: "Nea", FileName: "cut.txt"}}).Finalize("known"),
	)
	require.Len(t, c.PendingShopFiles(), 2)

	var hashed []string
	err := c.FinalizeShopFiles(func(path string) (string, error) {
		hashed = append(hashed, path)
		return "h:" + path, nil
	})
	require.NoError(t, err)

	assert.Empty(t, c.PendingShopFiles())
	assert.ElementsMatch(t, []string{"/data/glomma/model.yaml", "/data/glomma/commands.txt"}, hashed)

	model, ok := c.ShopFiles["Glomma_model"].(*HashedShopFile)
	require.True(t, ok)
	assert.Equal(t, "h:/data/glomma/model.yaml", model.Hash)
	assert.Equal(t, "/data/glomma/model.yaml", model.Path)
	assert.Equal(t, "known", c.ShopFiles["Nea_cut"].(*HashedShopFile).Hash)

	t.Run("hash error", func(t *testing.T) {
		c := MustCollection(NewPendingShopFile("Glomma", "missing.yaml", ShopFileModel))
		err := c.FinalizeShopFiles(func(string) (string, error) {
			return "", errors.New("boom")
		})
		assert.ErrorContains(t, err, "missing.yaml")
		assert.Len(t, c.PendingShopFiles(), 1)
	})
}
