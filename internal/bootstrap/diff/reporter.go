package diff

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Labels used in rendered differences. x is the remote side, y the local side.
const (
	MissingInRemote = "missing in [remote]"
	MissingInLocal  = "missing in [local]"
	Changed         = "changed"
)

// reporter collects one line per leaf difference found by cmp.Equal.
type reporter struct {
	path  cmp.Path
	lines []string
}

func (r *reporter) PushStep(ps cmp.PathStep) {
	r.path = append(r.path, ps)
}

func (r *reporter) PopStep() {
	r.path = r.path[:len(r.path)-1]
}

func (r *reporter) Report(rs cmp.Result) {
	if rs.Equal() {
		return
	}

	vx, vy := r.path.Last().Values()
	where := renderPath(r.path)
	switch {
	case !vx.IsValid():
		r.lines = append(r.lines, fmt.Sprintf("%s: %s = %s", MissingInRemote, where, renderValue(vy)))
	case !vy.IsValid():
		r.lines = append(r.lines, fmt.Sprintf("%s: %s = %s", MissingInLocal, where, renderValue(vx)))
	default:
		r.lines = append(r.lines, fmt.Sprintf("%s: %s: [remote] %s -> [local] %s",
			Changed, where, renderValue(vx), renderValue(vy)))
	}
}

func (r *reporter) String() string {
	return strings.Join(r.lines, "\n")
}

// renderPath prints map keys and slice indexes as root['a'][0].
func renderPath(path cmp.Path) string {
	var sb strings.Builder
	sb.WriteString("root")
	for _, step := range path {
		switch s := step.(type) {
		case cmp.MapIndex:
			key := s.Key()
			if key.Kind() == reflect.String {
				fmt.Fprintf(&sb, "['%s']", key.String())
			} else {
				fmt.Fprintf(&sb, "[%v]", key)
			}
		case cmp.SliceIndex:
			ix, iy := s.SplitKeys()
			idx := ix
			if idx < 0 {
				idx = iy
			}
			fmt.Fprintf(&sb, "[%d]", idx)
		}
	}
	return sb.String()
}

func renderValue(v reflect.Value) string {
	if !v.IsValid() {
		return "<none>"
	}
	if !v.CanInterface() {
		return v.String()
	}
	i := v.Interface()
	if raw, err := json.Marshal(i); err == nil {
		return string(raw)
	}
	return fmt.Sprintf("%v", i)
}
