package log

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// NewFriendlyErrorHandler renders error records for the console.
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return NewFriendlyHandler(w, slog.LevelError)
}

// NewFriendlyHandler renders records at or above minLevel as
//
//	Error: <message>
//	  suggestion: <suggestion>
//	  <key>: <value>
//
// Records below error level are prefixed "Warning:". A record without a message
// uses its error attribute as the summary.
func NewFriendlyHandler(w io.Writer, minLevel slog.Level) slog.Handler {
	return &friendlyHandler{w: w, minLevel: minLevel}
}

type friendlyHandler struct {
	w        io.Writer
	minLevel slog.Level
	attrs    []field
	groups   []string
}

type field struct {
	key, value string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.field(a))
		return true
	})

	summary := strings.TrimSpace(record.Message)
	var suggestion string
	rest := fields[:0:0]
	for _, f := range fields {
		switch {
		case f.value == "":
		case f.key == "suggestion":
			suggestion = f.value
		case f.key == "error" && summary == "":
			summary = f.value
		default:
			rest = append(rest, f)
		}
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}
	slices.SortStableFunc(rest, func(a, b field) int { return cmp.Compare(a.key, b.key) })

	prefix := "Error"
	if record.Level < slog.LevelError {
		prefix = "Warning"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", prefix, summary)
	if suggestion != "" {
		fmt.Fprintf(&sb, "  suggestion: %s\n", suggestion)
	}
	for _, f := range rest {
		writeField(&sb, f)
	}
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.field(a))
	}
	return next
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *friendlyHandler) clone() *friendlyHandler {
	next := *h
	next.attrs = slices.Clone(h.attrs)
	next.groups = slices.Clone(h.groups)
	return &next
}

func (h *friendlyHandler) field(a slog.Attr) field {
	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	return field{key: key, value: valueString(a.Value.Resolve())}
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, a.Key+"="+valueString(a.Value.Resolve()))
		}
		return strings.Join(parts, ", ")
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// writeField prints multi-line values with continuation lines indented below the key.
func writeField(sb *strings.Builder, f field) {
	lines := strings.Split(strings.TrimSpace(f.value), "\n")
	fmt.Fprintf(sb, "  %s: %s\n", f.key, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(sb, "    %s\n", line)
		}
	}
}
