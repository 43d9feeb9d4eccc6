package resources

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMetadataValue renders a metadata value the way the platform stores it. The
// platform keeps every metadata value as a string; floats always carry a fractional
// part so 42.0 renders as "42.0" while the integer 42 renders as "42".
func FormatMetadataValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.Abs(f) >= 1e16 {
		s = strconv.FormatFloat(f, 'e', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// StringifyMetadata returns a copy of the metadata with every value rendered as a
// string. Nil and empty maps both return nil.
func StringifyMetadata(md map[string]any) map[string]any {
	if len(md) == 0 {
		return nil
	}
	rv := make(map[string]any, len(md))
	for k, v := range md {
		rv[k] = FormatMetadataValue(v)
	}
	return rv
}
