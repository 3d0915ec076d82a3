package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferremas-cl/storefront/internal/paylog"
	"github.com/ferremas-cl/storefront/internal/pkg/cache"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// gatewayMock implements ports.PaymentGateway for testing.
type gatewayMock struct {
	createHandle *entity.TransactionHandle
	createErr    error
	confirmRes   *entity.ConfirmationResult
	confirmErr   error

	createCalls  int
	confirmCalls int

	// onCreate lets a test observe ordering relative to other side effects.
	onCreate func()
}

func (g *gatewayMock) CreateTransaction(ctx context.Context, req entity.TransactionRequest) (*entity.TransactionHandle, error) {
	g.createCalls++
	if g.onCreate != nil {
		g.onCreate()
	}
	return g.createHandle, g.createErr
}

func (g *gatewayMock) ConfirmTransaction(ctx context.Context, token string) (*entity.ConfirmationResult, error) {
	g.confirmCalls++
	return g.confirmRes, g.confirmErr
}

func (g *gatewayMock) TransactionStatus(ctx context.Context, token string) (*entity.ConfirmationResult, error) {
	return g.confirmRes, g.confirmErr
}

// logMock records saved attempts in memory.
type logMock struct {
	entries []paylog.Attempt
}

func (l *logMock) Save(_ context.Context, entry *paylog.Attempt) error {
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *logMock) Recent(_ context.Context, limit int) ([]paylog.Attempt, error) {
	return l.entries, nil
}

type eventsMock struct {
	published []ports.PaymentEvent
}

func (e *eventsMock) PaymentConfirmed(_ context.Context, evt ports.PaymentEvent) error {
	e.published = append(e.published, evt)
	return nil
}

func newFlowFixture(t *testing.T, gw *gatewayMock) (*Flow, *PendingStore, *logMock, *eventsMock) {
	t.Helper()
	pending := NewPendingStore(cache.NewMemoryStore("storefront"))
	log := &logMock{}
	events := &eventsMock{}
	return NewFlow(gw, pending, log, events), pending, log, events
}

func TestConfirmAuthorized(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{confirmRes: &entity.ConfirmationResult{
		Amount:            93980,
		AuthorizationCode: "1213",
		Status:            entity.StatusAuthorized,
		BuyOrder:          "ORD-1-AAAA",
	}}
	flow, pending, log, events := newFlowFixture(t, gw)
	require.NoError(t, pending.Save(ctx, "sid", samplePurchase()))

	out := flow.Confirm(ctx, "sid", "tok-abc")

	assert.Equal(t, StateSuccess, out.State)
	require.NotNil(t, out.Result)
	assert.Equal(t, "1213", out.Result.AuthorizationCode)
	assert.True(t, pending.Load(ctx, "sid").Empty(), "pending purchase must be torn down")

	require.Len(t, log.entries, 1)
	assert.Equal(t, paylog.StatusAuthorized, log.entries[0].Status)

	require.Len(t, events.published, 1)
	assert.Equal(t, "authorized", events.published[0].Status)
	assert.Equal(t, "ORD-1-AAAA", events.published[0].BuyOrder, "buy order keys the event stream")
	assert.Equal(t, 93980, events.published[0].Amount)
}

func TestConfirmRejected(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{confirmRes: &entity.ConfirmationResult{
		Amount:   93980,
		Status:   entity.StatusRejected,
		BuyOrder: "ORD-2-BBBB",
	}}
	flow, pending, log, events := newFlowFixture(t, gw)
	require.NoError(t, pending.Save(ctx, "sid", samplePurchase()))

	out := flow.Confirm(ctx, "sid", "tok-abc")

	assert.Equal(t, StateFailure, out.State)
	assert.NotEmpty(t, out.Reason)

	// The teardown policy is all-or-nothing: every slot cleared, never a
	// partial wipe.
	recovered := pending.Load(ctx, "sid")
	assert.Empty(t, recovered.Items)
	assert.Zero(t, recovered.TotalAmount)
	assert.Empty(t, recovered.User.Email)

	require.Len(t, log.entries, 1)
	assert.Equal(t, paylog.StatusRejected, log.entries[0].Status)

	require.Len(t, events.published, 1)
	assert.Equal(t, "rejected", events.published[0].Status)
	assert.Equal(t, "ORD-2-BBBB", events.published[0].BuyOrder)
}

func TestConfirmGatewayError(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{confirmErr: &ports.GatewayError{Op: "confirm", Message: "all endpoint variants failed"}}
	flow, pending, log, _ := newFlowFixture(t, gw)
	require.NoError(t, pending.Save(ctx, "sid", samplePurchase()))

	out := flow.Confirm(ctx, "sid", "tok-abc")

	assert.Equal(t, StateFailure, out.State)
	assert.Contains(t, out.Reason, "endpoint variants")
	assert.True(t, pending.Load(ctx, "sid").Empty())
	require.Len(t, log.entries, 1)
	assert.Equal(t, paylog.StatusFailed, log.entries[0].Status)
}

func TestConfirmMissingToken(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{}
	flow, pending, _, _ := newFlowFixture(t, gw)
	require.NoError(t, pending.Save(ctx, "sid", samplePurchase()))

	out := flow.Confirm(ctx, "sid", "")

	assert.Equal(t, StateFailure, out.State)
	assert.Equal(t, "token not found", out.Reason)
	assert.Zero(t, gw.confirmCalls, "no gateway call without a token")
	assert.True(t, pending.Load(ctx, "sid").Empty())
}

func TestConfirmNilCollaborators(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{confirmRes: &entity.ConfirmationResult{Status: entity.StatusAuthorized}}
	pending := NewPendingStore(cache.NewMemoryStore("storefront"))
	flow := NewFlow(gw, pending, nil, nil)

	out := flow.Confirm(ctx, "sid", "tok")
	assert.Equal(t, StateSuccess, out.State)
}
