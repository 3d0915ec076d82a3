package paylog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace_id and span_id as hex strings. If the context carries no active
// span (e.g. in unit tests), both fields come back empty.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewAttempt builds an Attempt with the trace info extracted from ctx and
// the timestamp set to now.
func NewAttempt(ctx context.Context, buyOrder, sessionID, token string, status Status, amount int, detail string) *Attempt {
	ti := ExtractTraceInfo(ctx)
	return &Attempt{
		BuyOrder:  buyOrder,
		SessionID: sessionID,
		Token:     token,
		Status:    status,
		Amount:    amount,
		Detail:    detail,
		TraceID:   ti.TraceID,
		SpanID:    ti.SpanID,
		UpdatedAt: time.Now().UTC(),
	}
}
