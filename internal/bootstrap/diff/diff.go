// Package diff compares a locally built Collection with one read back from the
// platform and reports the differences per resource kind.
package diff

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// Options tunes Compute.
type Options struct {
	// ExcludeEvent drops matching events from both sides before comparing.
	ExcludeEvent func(e *resources.Event) bool
}

// DefaultOptions excludes bootstrap-finished marker events.
func DefaultOptions() Options {
	return Options{ExcludeEvent: IsBootstrapFinished}
}

// IsBootstrapFinished reports whether e marks a completed bootstrap run.
func IsBootstrapFinished(e *resources.Event) bool {
	return e != nil && e.Type == resources.BootstrapFinishedEventType
}

// Report maps a kind to its rendered differences. Kinds without differences are
// not present.
type Report map[resources.Kind]string

// IsEmpty reports whether no kind differs.
func (r Report) IsEmpty() bool {
	return len(r) == 0
}

// Kinds lists the differing kinds in AllKinds order.
func (r Report) Kinds() []resources.Kind {
	var kinds []resources.Kind
	for _, k := range resources.AllKinds {
		if r[k] != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Header returns the section heading for a kind.
func Header(kind resources.Kind) string {
	return fmt.Sprintf("Difference for resource type %s:", kind)
}

func (r Report) String() string {
	var sb strings.Builder
	for _, k := range r.Kinds() {
		sb.WriteString(Header(k))
		sb.WriteString("\n")
		sb.WriteString(r[k])
		sb.WriteString("\n")
	}
	return sb.String()
}

var compareOptions = cmp.Options{
	cmpopts.EquateNaNs(),
	cmp.Comparer(strings.EqualFold),
}

// Compute diffs local against remote. Both sides get the same normalization;
// neither collection is modified.
func Compute(local, remote *resources.Collection, opts Options) Report {
	if local == nil {
		local = resources.MustCollection()
	}
	if remote == nil {
		remote = resources.MustCollection()
	}

	report := Report{}
	for _, kind := range resources.AllKinds {
		var l, r map[string]any
		if kind == resources.KindShopFile {
			l, r = dumpShopFiles(local), dumpShopFiles(remote)
		} else {
			l, r = dumpKind(local, kind, opts), dumpKind(remote, kind, opts)
		}

		if text := compare(r, l); text != "" {
			report[kind] = text
		}
	}
	return report
}

func compare(remote, local map[string]any) string {
	var rep reporter
	if cmp.Equal(remote, local, compareOptions, cmp.Reporter(&rep)) {
		return ""
	}
	return rep.String()
}

func dumpKind(c *resources.Collection, kind resources.Kind, opts Options) map[string]any {
	out := map[string]any{}
	for _, res := range c.Resources(kind) {
		switch r := res.(type) {
		case *resources.Event:
			if opts.ExcludeEvent != nil && opts.ExcludeEvent(r) {
				continue
			}
			out[r.ExternalID] = dumpRecord(r)
		case *resources.SequenceContent:
			out[r.SequenceExternalID] = dumpSequenceContent(r)
		default:
			out[res.GetExternalID()] = dumpRecord(res)
		}
	}
	return out
}

func dumpShopFiles(c *resources.Collection) map[string]any {
	out := map[string]any{}
	for id, sf := range c.ShopFiles {
		out[id] = dumpShopFile(sf)
	}
	return out
}
