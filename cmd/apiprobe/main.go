// Command apiprobe checks connectivity to every backend the storefront
// depends on and reports which ones are live. The storefront itself
// degrades to demo data silently; this makes the degradation visible
// before a demo.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ferremas-cl/storefront/internal/pkg/format"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/infra/adapters/webpay"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	failures := 0
	failures += probeGET(ctx, "inventory", getEnv("INVENTORY_API_URL", "http://localhost:5000/api")+"/products")
	failures += probeGET(ctx, "sales", getEnv("SALES_API_URL", "http://localhost:5002/api")+"/orders")
	failures += probeGET(ctx, "rates", getEnv("RATES_API_URL", "https://mindicador.cl/api")+"/dolar")
	failures += probeWebpay(ctx)

	if failures > 0 {
		fmt.Printf("\n%d backend(s) unreachable, the storefront will serve demo data for them\n", failures)
		os.Exit(1)
	}
	fmt.Println("\nall backends reachable")
}

// probeGET issues a plain GET, bypassing the degrading adapters so a dead
// backend actually reports as dead.
func probeGET(ctx context.Context, name, target string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		report(name, target, err)
		return 1
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		report(name, target, err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		report(name, target, fmt.Errorf("status %d", resp.StatusCode))
		return 1
	}
	report(name, target, nil)
	return 0
}

// probeWebpay creates (but never confirms) a minimal transaction, proving
// the full create path including route-variant resolution.
func probeWebpay(ctx context.Context) int {
	target := getEnv("WEBPAY_API_URL", "http://localhost:5001/api")
	gateway := webpay.NewClient(webpay.DefaultConfig(target))

	handle, err := gateway.CreateTransaction(ctx, entity.TransactionRequest{
		Amount:    1000,
		BuyOrder:  format.BuyOrder(),
		SessionID: format.SessionID(),
		ReturnURL: getEnv("BASE_URL", "http://localhost:8080") + "/pago-resultado",
	})
	report("webpay", target, err)
	if err != nil {
		return 1
	}
	fmt.Printf("  hosted page: %s\n", handle.URL)
	return 0
}

func report(name, target string, err error) {
	if err != nil {
		fmt.Printf("[FAIL] %-10s %s: %v\n", name, target, err)
		return
	}
	fmt.Printf("[ OK ] %-10s %s\n", name, target)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
