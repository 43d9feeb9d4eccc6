package log

import (
	"context"
	"log/slog"
	"strings"
)

type httpLogContextKey struct{}

// HTTPLogContext contains contextual metadata emitted with platform HTTP logs.
type HTTPLogContext struct {
	CommandPath string
	CommandVerb string

	Workflow      string
	WorkflowPhase string
	WorkflowKind  string
	WorkflowRef   string
}

var HTTPLogContextKey = httpLogContextKey{}

// WithHTTPLogContext merges non-empty fields from update into ctx.
func WithHTTPLogContext(ctx context.Context, update HTTPLogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	current := HTTPLogContextFromContext(ctx)
	mergeHTTPLogContext(&current, update)

	return context.WithValue(ctx, HTTPLogContextKey, current)
}

// HTTPLogContextFromContext extracts HTTP logging metadata from ctx.
func HTTPLogContextFromContext(ctx context.Context) HTTPLogContext {
	if ctx == nil {
		return HTTPLogContext{}
	}

	switch value := ctx.Value(HTTPLogContextKey).(type) {
	case HTTPLogContext:
		return value
	case *HTTPLogContext:
		if value != nil {
			return *value
		}
	}

	return HTTPLogContext{}
}

// HTTPLogContextAttrs converts context metadata to slog attributes.
func HTTPLogContextAttrs(ctx context.Context) []slog.Attr {
	meta := HTTPLogContextFromContext(ctx)
	attrs := make([]slog.Attr, 0, 6)

	appendStringAttr(&attrs, "command_path", meta.CommandPath)
	appendStringAttr(&attrs, "command_verb", meta.CommandVerb)

	appendStringAttr(&attrs, "workflow", meta.Workflow)
	appendStringAttr(&attrs, "workflow_phase", meta.WorkflowPhase)
	appendStringAttr(&attrs, "workflow_kind", meta.WorkflowKind)
	appendStringAttr(&attrs, "workflow_ref", meta.WorkflowRef)

	return attrs
}

func mergeHTTPLogContext(target *HTTPLogContext, update HTTPLogContext) {
	mergeStringField(&target.CommandPath, update.CommandPath)
	mergeStringField(&target.CommandVerb, update.CommandVerb)

	mergeStringField(&target.Workflow, update.Workflow)
	mergeStringField(&target.WorkflowPhase, update.WorkflowPhase)
	mergeStringField(&target.WorkflowKind, update.WorkflowKind)
	mergeStringField(&target.WorkflowRef, update.WorkflowRef)
}

func mergeStringField(target *string, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	*target = trimmed
}

func appendStringAttr(attrs *[]slog.Attr, key, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	*attrs = append(*attrs, slog.String(key, trimmed))
}
