// Package paylog defines the durable audit trail of payment attempts.
//
// Every lifecycle transition of a Webpay attempt appends one immutable row:
// transaction created, browser redirected, confirmation authorized or
// rejected, or a hard failure. The log serves two purposes:
//
//  1. Observability: the admin dashboard lists recent attempts, and each
//     row carries the OTel trace_id so it can be correlated with the full
//     distributed trace.
//
//  2. Reconciliation: attempts stuck in REDIRECTED (the shopper never came
//     back, or confirmation failed mid-flight) can be found and compared
//     against the gateway's status endpoint.
package paylog

import "time"

// Status represents the lifecycle state of a payment attempt.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusRedirected Status = "REDIRECTED"
	StatusAuthorized Status = "AUTHORIZED"
	StatusRejected   Status = "REJECTED"
	StatusFailed     Status = "FAILED"
)

// Attempt is a single row in the payment_attempts table: a point-in-time
// snapshot of one payment attempt.
type Attempt struct {
	// BuyOrder is the merchant-generated identifier of the attempt. Empty
	// on rows written before the buy order is known (e.g. a confirmation
	// arriving with only a token).
	BuyOrder string

	// SessionID correlates the attempt to the shopping session.
	SessionID string

	// Token is the gateway-issued transaction token, once known.
	Token string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// Amount is the attempted charge in integer pesos.
	Amount int

	// Detail carries the human-readable failure reason or the
	// authorization code, depending on Status.
	Detail string

	// TraceID is the W3C trace ID (32 hex chars) from the active OTel span,
	// for jumping from this row to the distributed trace.
	TraceID string

	// SpanID pinpoints the exact span within the trace.
	SpanID string

	// UpdatedAt is the wall-clock time of this row.
	UpdatedAt time.Time
}
