package ports

import (
	"context"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
)

// Catalog is the inventory service contract. Implementations fall back to
// the built-in mock catalog when the service is unreachable, so callers can
// treat the catalog as always available.
type Catalog interface {
	Products(ctx context.Context) ([]entity.Product, error)
	Product(ctx context.Context, id int) (*entity.Product, error)
	CheckStock(ctx context.Context, id, quantity int) (*entity.StockCheck, error)
	// UpdateStock adjusts stock by delta (negative to consume).
	UpdateStock(ctx context.Context, id, delta int) error
}

// Sales is the sales/orders service contract.
type Sales interface {
	CreateOrder(ctx context.Context, order entity.NewOrder) (*entity.Order, error)
	Orders(ctx context.Context) ([]entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
	// Login returns the user and a bearer token for subsequent calls.
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
}

// Rates provides the CLP/USD reference rate for the price display toggle.
type Rates interface {
	USDRate(ctx context.Context) (*entity.ExchangeRate, error)
}

// EventPublisher emits payment lifecycle events to the message broker.
// It is optional infrastructure: a nil publisher disables publishing.
type EventPublisher interface {
	PaymentConfirmed(ctx context.Context, evt PaymentEvent) error
}

// PaymentEvent is the payload published on terminal confirmation outcomes.
type PaymentEvent struct {
	BuyOrder   string `json:"buy_order,omitempty"`
	Token      string `json:"token"`
	Status     string `json:"status"`
	Amount     int    `json:"amount"`
	OccurredAt string `json:"occurred_at"`
}
