package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// InventoryClient implements ports.Catalog against the inventory API.
//
// A circuit breaker guards the backend: after repeated failures the breaker
// opens and reads are served from the bundled demo catalog until the backend
// recovers. Stock writes are never faked.
type InventoryClient struct {
	http    *httpClient
	breaker *gobreaker.CircuitBreaker[any]
}

var _ ports.Catalog = (*InventoryClient)(nil)

func NewInventoryClient(baseURL string) *InventoryClient {
	settings := gobreaker.Settings{
		Name:    "inventory-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &InventoryClient{
		http:    newHTTPClient(baseURL, 0),
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (c *InventoryClient) Products(ctx context.Context) ([]entity.Product, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var products []entity.Product
		if err := c.http.doJSON(ctx, http.MethodGet, "/products", nil, &products); err != nil {
			return nil, err
		}
		return products, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "inventory unavailable, serving demo catalog", "error", err)
		return demoCatalog(), nil
	}
	return res.([]entity.Product), nil
}

func (c *InventoryClient) Product(ctx context.Context, id int) (*entity.Product, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var product entity.Product
		if err := c.http.doJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
			return nil, err
		}
		return &product, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "inventory unavailable, serving demo product", "id", id, "error", err)
		for _, p := range demoCatalog() {
			if p.ID == id {
				return &p, nil
			}
		}
		return nil, fmt.Errorf("product %d not found", id)
	}
	return res.(*entity.Product), nil
}

func (c *InventoryClient) CheckStock(ctx context.Context, id, quantity int) (*entity.StockCheck, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var payload struct {
			Available    bool   `json:"available"`
			CurrentStock int    `json:"current_stock"`
			ProductName  string `json:"product_name"`
		}
		path := fmt.Sprintf("/products/%d/stock?quantity=%d", id, quantity)
		if err := c.http.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
			return nil, err
		}
		return &entity.StockCheck{
			Available:    payload.Available,
			CurrentStock: payload.CurrentStock,
			ProductName:  payload.ProductName,
		}, nil
	})
	if err != nil {
		// Optimistic fallback. Blocking every sale because the stock
		// service is down costs more than the occasional oversell.
		slog.WarnContext(ctx, "stock check unavailable, assuming available", "id", id, "error", err)
		return &entity.StockCheck{Available: true, CurrentStock: 999}, nil
	}
	return res.(*entity.StockCheck), nil
}

func (c *InventoryClient) UpdateStock(ctx context.Context, id, delta int) error {
	body := map[string]int{"delta": delta}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.http.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d/stock", id), body, nil)
	})
	return err
}

// demoCatalog is the read fallback used while the inventory API is down.
func demoCatalog() []entity.Product {
	return []entity.Product{
		{ID: 1, Name: "Taladro Percutor Bosch GSB 550", Brand: "Bosch", Price: 89990, Stock: 15, Category: "herramientas", Featured: true},
		{ID: 2, Name: "Martillo Carpintero Stanley 16oz", Brand: "Stanley", Price: 12990, Stock: 40, Category: "herramientas"},
		{ID: 3, Name: "Sierra Circular DeWalt DWE575", Brand: "DeWalt", Price: 156990, Stock: 8, Category: "herramientas", Featured: true},
		{ID: 4, Name: "Cemento Portland Polpaico 25kg", Brand: "Polpaico", Price: 4990, Stock: 120, Category: "construccion"},
		{ID: 5, Name: "Pintura Latex Sipa Blanco 1gl", Brand: "Sipa", Price: 18990, Stock: 35, Category: "pinturas"},
	}
}
