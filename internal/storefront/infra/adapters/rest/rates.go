package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// fallbackUSDRate is the CLP per USD value used when the indicator API is
// unreachable. Close enough for the display-only price toggle.
const fallbackUSDRate = 800

// RatesClient reads the dollar indicator from mindicador.cl.
type RatesClient struct {
	http *httpClient
}

var _ ports.Rates = (*RatesClient)(nil)

func NewRatesClient(baseURL string) *RatesClient {
	if baseURL == "" {
		baseURL = "https://mindicador.cl/api"
	}
	return &RatesClient{http: newHTTPClient(baseURL, 0)}
}

func (c *RatesClient) USDRate(ctx context.Context) (*entity.ExchangeRate, error) {
	var payload struct {
		Serie []struct {
			Fecha string  `json:"fecha"`
			Valor float64 `json:"valor"`
		} `json:"serie"`
	}
	if err := c.http.doJSON(ctx, http.MethodGet, "/dolar", nil, &payload); err != nil || len(payload.Serie) == 0 {
		slog.WarnContext(ctx, "indicator api unavailable, using fallback rate", "error", err)
		return &entity.ExchangeRate{
			Currency: "USD",
			Rate:     fallbackUSDRate,
			Date:     time.Now().Format("2006-01-02"),
		}, nil
	}

	latest := payload.Serie[0]
	return &entity.ExchangeRate{Currency: "USD", Rate: latest.Valor, Date: latest.Fecha}, nil
}
