package diff

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// volatileFields are assigned by the platform and never declared locally.
var volatileFields = []string{
	"createdTime",
	"lastUpdatedTime",
	"parentId",
	"rootId",
	"dataSetId",
	"id",
}

// columnVolatileFields are stripped from every sequence column.
var columnVolatileFields = []string{
	"createdTime",
	"lastUpdatedTime",
	"metadata",
}

// dumpRecord renders a record as a generic map with server fields removed,
// metadata stringified and empty values pruned. It never fails: a record that
// cannot be serialized is dumped as its Go representation.
func dumpRecord(r resources.Resource) map[string]any {
	raw, err := json.Marshal(r)
	if err != nil {
		return map[string]any{"externalId": r.GetExternalID(), "value": fmt.Sprintf("%+v", r)}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"externalId": r.GetExternalID(), "value": string(raw)}
	}

	for _, f := range volatileFields {
		delete(out, f)
	}

	// JSON loses the int/float distinction, so metadata is taken from the typed record.
	if mc, ok := r.(resources.MetadataCarrier); ok {
		if md := resources.StringifyMetadata(mc.GetMetadata()); md != nil {
			out["metadata"] = md
		} else {
			delete(out, "metadata")
		}
	}

	if r.GetKind() == resources.KindSequence {
		if cols, ok := out["columns"].([]any); ok {
			for _, c := range cols {
				if col, ok := c.(map[string]any); ok {
					for _, f := range columnVolatileFields {
						delete(col, f)
					}
				}
			}
		}
	}

	return prune(out)
}

// prune removes nil values, empty maps and empty slices from maps at every level,
// so an absent field and an empty one compare equal.
func prune(m map[string]any) map[string]any {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			if len(prune(t)) == 0 {
				delete(m, k)
			}
		case []any:
			if len(t) == 0 {
				delete(m, k)
				continue
			}
			for _, item := range t {
				if nested, ok := item.(map[string]any); ok {
					prune(nested)
				}
			}
		}
	}
	return m
}

// dumpSequenceContent renders rows keyed by row number and column id. Numbers are
// widened to float64 and missing values become NaN, matching what a round trip
// through the platform yields.
func dumpSequenceContent(c *resources.SequenceContent) map[string]any {
	rows := make(map[int64]map[string]any, len(c.Rows))
	for _, row := range c.Rows {
		cells := make(map[string]any, len(c.Columns))
		for i, col := range c.Columns {
			var v any
			if i < len(row.Values) {
				v = row.Values[i]
			}
			cells[col] = tableValue(v)
		}
		rows[row.RowNumber] = cells
	}

	columns := make([]any, 0, len(c.Columns))
	for _, col := range c.Columns {
		columns = append(columns, col)
	}
	return map[string]any{
		"columns": columns,
		"rows":    rows,
	}
}

func tableValue(v any) any {
	if v == nil {
		return math.NaN()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Pointer:
		if rv.IsNil() {
			return math.NaN()
		}
		return tableValue(rv.Elem().Interface())
	}
	return v
}

// dumpShopFile renders the comparable part of a shop file. The local path is
// excluded since the remote side never has one.
func dumpShopFile(sf resources.ShopFile) map[string]any {
	info := sf.GetInfo()
	out := map[string]any{
		"watercourse": info.Watercourse,
		"fileName":    info.FileName,
		"fileKind":    string(info.FileKind),
	}
	if h, ok := sf.(*resources.HashedShopFile); ok {
		out["hash"] = h.Hash
	} else {
		out["hash"] = nil
	}
	return out
}
