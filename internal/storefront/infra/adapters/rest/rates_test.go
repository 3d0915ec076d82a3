package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSDRateFromIndicator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dolar", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"serie": []map[string]any{
				{"fecha": "2025-06-02T03:00:00.000Z", "valor": 943.57},
				{"fecha": "2025-06-01T03:00:00.000Z", "valor": 941.02},
			},
		})
	}))
	defer srv.Close()

	rate, err := NewRatesClient(srv.URL).USDRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USD", rate.Currency)
	assert.Equal(t, 943.57, rate.Rate)
}

func TestUSDRateFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rate, err := NewRatesClient(srv.URL).USDRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(fallbackUSDRate), rate.Rate)
	assert.NotEmpty(t, rate.Date)
}

func TestUSDRateEmptySeriesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"serie": []any{}})
	}))
	defer srv.Close()

	rate, err := NewRatesClient(srv.URL).USDRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(fallbackUSDRate), rate.Rate)
}
