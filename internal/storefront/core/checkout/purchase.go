package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ferremas-cl/storefront/internal/paylog"
	"github.com/ferremas-cl/storefront/internal/pkg/format"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// ReturnPath is the dedicated path segment on the return URL handed to the
// gateway. The return detector recognizes it even when the token parameter
// is missing.
const ReturnPath = "/pago-resultado"

// CheckoutResult is everything the handoff page needs: the created order,
// the gateway handle, and the ready-to-render redirect form.
type CheckoutResult struct {
	Order   *entity.Order
	Request entity.TransactionRequest
	Handle  *entity.TransactionHandle
	Form    *RedirectForm
}

// PurchaseService runs the pre-redirect half of the round trip: stock
// verification, order creation, pending-purchase persistence, and
// transaction creation.
type PurchaseService struct {
	catalog ports.Catalog
	sales   ports.Sales
	gateway ports.PaymentGateway
	pending *PendingStore
	log     paylog.Repository // nil-safe
	baseURL string

	// inflight holds session ids with a checkout in progress. One handoff
	// per session at a time; a double submit must not create two orders.
	inflight sync.Map
}

func NewPurchaseService(
	catalog ports.Catalog,
	sales ports.Sales,
	gateway ports.PaymentGateway,
	pending *PendingStore,
	log paylog.Repository,
	baseURL string,
) *PurchaseService {
	return &PurchaseService{
		catalog: catalog,
		sales:   sales,
		gateway: gateway,
		pending: pending,
		log:     log,
		baseURL: baseURL,
	}
}

// Checkout turns a confirmed cart into a gateway handoff. The pending
// purchase is written to durable storage strictly before the gateway is
// called: the redirect that follows destroys all in-memory state, and the
// return handler reconstructs context purely from storage and the URL.
func (s *PurchaseService) Checkout(ctx context.Context, sessionID string, cart entity.Cart, user entity.User, deliveryFee int) (*CheckoutResult, error) {
	if _, busy := s.inflight.LoadOrStore(sessionID, struct{}{}); busy {
		return nil, &ports.ValidationError{Field: "session", Reason: "ya hay un pago en curso"}
	}
	defer s.inflight.Delete(sessionID)

	if cart.Empty() {
		return nil, &ports.ValidationError{Field: "cart", Reason: "is empty"}
	}
	if user.Email == "" {
		return nil, &ports.ValidationError{Field: "user", Reason: "not logged in"}
	}
	if deliveryFee < 0 {
		return nil, &ports.ValidationError{Field: "delivery_fee", Reason: "must not be negative"}
	}

	for _, line := range cart.Items {
		check, err := s.catalog.CheckStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("stock check for product %d: %w", line.ProductID, err)
		}
		if !check.Available {
			return nil, &ports.ValidationError{
				Field:  "stock",
				Reason: fmt.Sprintf("insuficiente para %s", line.Name),
			}
		}
	}

	subtotal := cart.Subtotal()
	total := subtotal + deliveryFee

	order, err := s.sales.CreateOrder(ctx, entity.NewOrder{
		Items:         orderItems(cart),
		Subtotal:      subtotal,
		Total:         total,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		PaymentMethod: "webpay",
		Status:        entity.OrderStatusPendingPayment,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, line := range cart.Items {
		if err := s.catalog.UpdateStock(ctx, line.ProductID, -line.Quantity); err != nil {
			slog.WarnContext(ctx, "stock update failed", "product_id", line.ProductID, "error", err)
		}
	}

	// Durable snapshot first, gateway call second. Violating this ordering
	// risks losing cart/user context on return.
	pendingSnapshot := entity.PendingPurchase{
		Items:       cart.Items,
		TotalAmount: total,
		User:        entity.PendingUser{Name: user.Name, Email: user.Email},
	}
	if err := s.pending.Save(ctx, sessionID, pendingSnapshot); err != nil {
		return nil, fmt.Errorf("persist pending purchase: %w", err)
	}

	req := entity.TransactionRequest{
		Amount:    total,
		BuyOrder:  format.BuyOrder(),
		SessionID: format.SessionID(),
		ReturnURL: s.baseURL + ReturnPath,
	}

	s.record(ctx, req, "", paylog.StatusCreated, "")

	handle, err := s.gateway.CreateTransaction(ctx, req)
	if err != nil {
		// The handoff never happened; the snapshot must not linger.
		if clearErr := s.pending.Clear(ctx, sessionID); clearErr != nil {
			slog.WarnContext(ctx, "failed to clear pending purchase after gateway error", "error", clearErr)
		}
		s.record(ctx, req, "", paylog.StatusFailed, err.Error())
		return nil, err
	}

	form, err := NewRedirectForm(*handle)
	if err != nil {
		s.record(ctx, req, handle.Token, paylog.StatusFailed, err.Error())
		return nil, err
	}

	s.record(ctx, req, handle.Token, paylog.StatusRedirected, "")
	slog.InfoContext(ctx, "handing off to webpay",
		"buy_order", req.BuyOrder, "amount", req.Amount, "order_id", order.ID)

	return &CheckoutResult{Order: order, Request: req, Handle: handle, Form: form}, nil
}

func (s *PurchaseService) record(ctx context.Context, req entity.TransactionRequest, token string, status paylog.Status, detail string) {
	if s.log == nil {
		return
	}
	entry := paylog.NewAttempt(ctx, req.BuyOrder, req.SessionID, token, status, req.Amount, detail)
	if err := s.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to record payment attempt", "error", err)
	}
}

func orderItems(cart entity.Cart) []entity.OrderItem {
	out := make([]entity.OrderItem, len(cart.Items))
	for i, line := range cart.Items {
		out[i] = entity.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return out
}
