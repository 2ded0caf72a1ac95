package context

import (
	"context"

	"github.com/google/uuid"
)

// spanIDLength trims the generated uuid down to a short span marker.
const spanIDLength = 16

// TraceContext identifies one request across log lines and error responses.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// NewTraceContext generates fresh identifiers for a request that arrived
// without any.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.NewString(),
		SpanID:    uuid.NewString()[:spanIDLength],
		RequestID: uuid.NewString(),
	}
}

type traceContextKey struct{}

// WithTrace attaches trace to ctx.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the TraceContext carried by ctx, nil when absent.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace id from ctx, generating one for untraced
// callers so log lines always correlate.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	return uuid.NewString()
}

// GetRequestID returns the request id from ctx, "" when untraced.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
