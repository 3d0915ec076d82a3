// Package reports computes the admin dashboard aggregates from live
// catalog and sales data.
package reports

import (
	"context"

	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// lowStockThreshold marks products that need restocking on the dashboard.
const lowStockThreshold = 10

// SalesReport summarizes the order history.
type SalesReport struct {
	TotalRevenue int `json:"total_revenue"`
	OrderCount   int `json:"order_count"`
	AverageOrder int `json:"average_order"`
}

// InventoryReport summarizes the current catalog.
type InventoryReport struct {
	TotalProducts int `json:"total_products"`
	TotalStock    int `json:"total_stock"`
	// InventoryValue is price times stock summed over the catalog, in CLP.
	InventoryValue int      `json:"inventory_value"`
	LowStock       []string `json:"low_stock"`
}

type Service struct {
	catalog ports.Catalog
	sales   ports.Sales
}

func NewService(catalog ports.Catalog, sales ports.Sales) *Service {
	return &Service{catalog: catalog, sales: sales}
}

func (s *Service) Sales(ctx context.Context) (*SalesReport, error) {
	orders, err := s.sales.Orders(ctx)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{OrderCount: len(orders)}
	for _, order := range orders {
		report.TotalRevenue += order.Total
	}
	if report.OrderCount > 0 {
		report.AverageOrder = report.TotalRevenue / report.OrderCount
	}
	return report, nil
}

func (s *Service) Inventory(ctx context.Context) (*InventoryReport, error) {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}

	report := &InventoryReport{TotalProducts: len(products)}
	for _, p := range products {
		report.TotalStock += p.Stock
		report.InventoryValue += p.Price * p.Stock
		if p.Stock < lowStockThreshold {
			report.LowStock = append(report.LowStock, p.Name)
		}
	}
	return report, nil
}
