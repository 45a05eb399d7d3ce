package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"
)

// correlationKey is an unexported type for context keys within this package.
type correlationKey struct{}

const (
	MetadataCorrelationID = "correlation_id"
	MetadataTraceID       = "trace_id"
	MetadataSpanID        = "span_id"
)

// ExtractCorrelationID fetches a correlation ID from the context if present.
func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(correlationKey{}).(string); ok {
		return val
	}
	return ""
}

// ContextWithCorrelationID sets the correlation ID onto the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// EnsureCorrelationID guarantees a correlation ID on the context, generating one when missing.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	cid := ExtractCorrelationID(ctx)
	if cid == "" {
		cid = ulid.Make().String()
	}
	return ContextWithCorrelationID(ctx, cid), cid
}

// InjectIntoMetadata copies the correlation and trace identifiers of ctx
// into an event metadata map, allocating it when nil.
func InjectIntoMetadata(ctx context.Context, metadata map[string]string) map[string]string {
	if metadata == nil {
		metadata = map[string]string{}
	}
	if cid := ExtractCorrelationID(ctx); cid != "" {
		metadata[MetadataCorrelationID] = cid
	}
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		metadata[MetadataTraceID] = sc.TraceID().String()
		metadata[MetadataSpanID] = sc.SpanID().String()
	}
	return metadata
}
