package httpx

import (
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
)

type CartResponse struct {
	Items    []entity.CartLine `json:"items"`
	Subtotal int               `json:"subtotal"`
	Units    int               `json:"units"`
}

type ExchangeRateResponse struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	Date     string  `json:"date"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
