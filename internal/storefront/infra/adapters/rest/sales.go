package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// SalesClient implements ports.Sales against the sales/orders API.
//
// Login degrades to two built-in demo accounts when the API is down; order
// writes degrade to locally fabricated records so the checkout flow can be
// exercised end to end without a live backend.
type SalesClient struct {
	http *httpClient
}

var _ ports.Sales = (*SalesClient)(nil)

func NewSalesClient(baseURL string) *SalesClient {
	return &SalesClient{http: newHTTPClient(baseURL, 0)}
}

func (c *SalesClient) CreateOrder(ctx context.Context, order entity.NewOrder) (*entity.Order, error) {
	var created entity.Order
	if err := c.http.doJSON(ctx, http.MethodPost, "/orders", order, &created); err != nil {
		slog.WarnContext(ctx, "sales unavailable, fabricating local order", "error", err)
		return &entity.Order{
			ID:        fmt.Sprintf("local-%d", time.Now().UnixMilli()),
			Items:     order.Items,
			Total:     order.Total,
			Status:    order.Status,
			CreatedAt: time.Now().Format(time.RFC3339),
		}, nil
	}
	return &created, nil
}

func (c *SalesClient) Orders(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	if err := c.http.doJSON(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		slog.WarnContext(ctx, "sales unavailable, order list empty", "error", err)
		return nil, nil
	}
	return orders, nil
}

func (c *SalesClient) UpdateOrderStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	if err := c.http.doJSON(ctx, http.MethodPut, "/orders/"+id+"/status", body, nil); err != nil {
		slog.WarnContext(ctx, "order status update failed", "id", id, "status", status, "error", err)
		return err
	}
	return nil
}

var errBadCredentials = errors.New("credenciales invalidas")

func (c *SalesClient) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var payload struct {
		User  entity.User `json:"user"`
		Token string      `json:"token"`
	}
	err := c.http.doJSON(ctx, http.MethodPost, "/auth/login", body, &payload)
	if err == nil {
		c.http.SetToken(payload.Token)
		return &payload.User, payload.Token, nil
	}

	slog.WarnContext(ctx, "auth unavailable, checking demo accounts", "error", err)
	user, ok := demoAccount(email, password)
	if !ok {
		return nil, "", errBadCredentials
	}
	token := fmt.Sprintf("token-%d-%d", user.ID, time.Now().UnixMilli())
	c.http.SetToken(token)
	return user, token, nil
}

// demoAccount resolves the built-in fallback accounts.
func demoAccount(email, password string) (*entity.User, bool) {
	switch {
	case email == "admin@ferremas.cl" && password == "admin123":
		return &entity.User{ID: 1, Name: "Administrador FERREMAS", Email: email, Type: "admin"}, true
	case email == "cliente@test.cl" && password == "cliente123":
		return &entity.User{ID: 2, Name: "Cliente Test", Email: email, Type: "client"}, true
	default:
		return nil, false
	}
}
