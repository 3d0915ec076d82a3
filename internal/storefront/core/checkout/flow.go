package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/ferremas-cl/storefront/internal/paylog"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// FlowState is the confirmation flow's state: processing is entered on
// arrival at the processing view and resolves to exactly one of the two
// terminal states. There are no further transitions; a failed confirmation
// requires restarting the purchase from the cart.
type FlowState string

const (
	StateProcessing FlowState = "processing"
	StateSuccess    FlowState = "success"
	StateFailure    FlowState = "failure"
)

// Outcome is the terminal result of one confirmation run.
type Outcome struct {
	State  FlowState
	Result *entity.ConfirmationResult // set on success
	Reason string                     // set on failure
}

// Flow orchestrates transaction confirmation after the browser returns from
// the gateway. The pending purchase is cleared on every terminal outcome,
// success or failure, so a failed transaction can never be silently
// replayed with stale cart data.
type Flow struct {
	gateway ports.PaymentGateway
	pending *PendingStore
	log     paylog.Repository    // nil-safe: logging skipped if nil
	events  ports.EventPublisher // nil-safe: publishing skipped if nil
}

func NewFlow(gateway ports.PaymentGateway, pending *PendingStore, log paylog.Repository, events ports.EventPublisher) *Flow {
	return &Flow{gateway: gateway, pending: pending, log: log, events: events}
}

// Confirm runs the processing state to a terminal outcome for the given
// recovered token. sessionID identifies the shopping session whose pending
// slots are torn down.
func (f *Flow) Confirm(ctx context.Context, sessionID, token string) Outcome {
	if token == "" {
		f.record(ctx, sessionID, "", paylog.StatusFailed, 0, "token not found")
		f.teardown(ctx, sessionID)
		return Outcome{State: StateFailure, Reason: "token not found"}
	}

	result, err := f.gateway.ConfirmTransaction(ctx, token)
	if err != nil {
		slog.ErrorContext(ctx, "transaction confirmation failed", "token", token, "error", err)
		f.record(ctx, sessionID, token, paylog.StatusFailed, 0, err.Error())
		f.teardown(ctx, sessionID)
		f.publish(ctx, token, "", string(entity.StatusError), 0)
		return Outcome{State: StateFailure, Reason: err.Error()}
	}

	if result.Status != entity.StatusAuthorized {
		slog.InfoContext(ctx, "transaction rejected by gateway",
			"token", token, "status", result.Status, "buy_order", result.BuyOrder)
		f.record(ctx, sessionID, token, paylog.StatusRejected, result.Amount, string(result.Status))
		f.teardown(ctx, sessionID)
		f.publish(ctx, token, result.BuyOrder, string(entity.StatusRejected), result.Amount)
		return Outcome{State: StateFailure, Reason: "la transacción fue rechazada por el banco"}
	}

	slog.InfoContext(ctx, "transaction authorized",
		"token", token, "buy_order", result.BuyOrder, "amount", result.Amount,
		"authorization_code", result.AuthorizationCode)
	f.record(ctx, sessionID, token, paylog.StatusAuthorized, result.Amount, result.AuthorizationCode)
	f.teardown(ctx, sessionID)
	f.publish(ctx, token, result.BuyOrder, string(entity.StatusAuthorized), result.Amount)

	return Outcome{State: StateSuccess, Result: result}
}

// teardown clears all three pending slots together; a partial clear (two of
// three slots gone) would leave a corrupt snapshot behind.
func (f *Flow) teardown(ctx context.Context, sessionID string) {
	if err := f.pending.Clear(ctx, sessionID); err != nil {
		slog.WarnContext(ctx, "failed to clear pending purchase", "error", err)
	}
}

func (f *Flow) record(ctx context.Context, sessionID, token string, status paylog.Status, amount int, detail string) {
	if f.log == nil {
		return
	}
	entry := paylog.NewAttempt(ctx, "", sessionID, token, status, amount, detail)
	if err := f.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to record payment attempt", "error", err)
	}
}

// publish emits the terminal outcome. The buy order doubles as the Kafka
// partition key, so it must be carried whenever the gateway reported one.
func (f *Flow) publish(ctx context.Context, token, buyOrder, status string, amount int) {
	if f.events == nil {
		return
	}
	evt := ports.PaymentEvent{
		BuyOrder:   buyOrder,
		Token:      token,
		Status:     status,
		Amount:     amount,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := f.events.PaymentConfirmed(ctx, evt); err != nil {
		slog.WarnContext(ctx, "failed to publish payment event", "error", err)
	}
}
