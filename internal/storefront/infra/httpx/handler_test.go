package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferremas-cl/storefront/internal/pkg/cache"
	"github.com/ferremas-cl/storefront/internal/storefront/core/checkout"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
	"github.com/ferremas-cl/storefront/internal/storefront/core/reports"
)

type catalogStub struct{}

func (catalogStub) Products(context.Context) ([]entity.Product, error) {
	return []entity.Product{
		{ID: 1, Name: "Taladro Percutor Bosch GSB 550", Brand: "Bosch", Price: 89990, Stock: 15, Category: "herramientas"},
		{ID: 4, Name: "Cemento Portland Polpaico 25kg", Brand: "Polpaico", Price: 4990, Stock: 120, Category: "construccion"},
	}, nil
}

func (c catalogStub) Product(ctx context.Context, id int) (*entity.Product, error) {
	products, _ := c.Products(ctx)
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, io.EOF
}

func (catalogStub) CheckStock(context.Context, int, int) (*entity.StockCheck, error) {
	return &entity.StockCheck{Available: true, CurrentStock: 99}, nil
}

func (catalogStub) UpdateStock(context.Context, int, int) error { return nil }

type salesStub struct{}

func (salesStub) CreateOrder(_ context.Context, order entity.NewOrder) (*entity.Order, error) {
	return &entity.Order{ID: "order-1", Total: order.Total, Status: order.Status}, nil
}

func (salesStub) Orders(context.Context) ([]entity.Order, error) {
	return []entity.Order{{ID: "order-1", Total: 93980, Status: entity.OrderStatusPaid}}, nil
}

func (salesStub) UpdateOrderStatus(context.Context, string, string) error { return nil }

func (salesStub) Login(_ context.Context, email, password string) (*entity.User, string, error) {
	if email == "admin@ferremas.cl" {
		return &entity.User{ID: 1, Name: "Admin", Email: email, Type: "admin"}, "tok", nil
	}
	if password == "cliente123" {
		return &entity.User{ID: 2, Name: "Cliente Test", Email: email, Type: "client"}, "tok", nil
	}
	return nil, "", io.ErrUnexpectedEOF
}

// recordingSales captures status updates issued from the admin dashboard.
type recordingSales struct {
	salesStub
	statusUpdates map[string]string
}

func (s *recordingSales) UpdateOrderStatus(_ context.Context, id, status string) error {
	s.statusUpdates[id] = status
	return nil
}

type ratesStub struct{}

func (ratesStub) USDRate(context.Context) (*entity.ExchangeRate, error) {
	return &entity.ExchangeRate{Currency: "USD", Rate: 943.57, Date: "2025-06-02"}, nil
}

type gatewayStub struct {
	confirmRes    *entity.ConfirmationResult
	confirmErr    error
	confirmTokens []string
}

func (g *gatewayStub) CreateTransaction(context.Context, entity.TransactionRequest) (*entity.TransactionHandle, error) {
	return &entity.TransactionHandle{URL: "https://webpay.example/init", Token: "tok-live"}, nil
}

func (g *gatewayStub) ConfirmTransaction(_ context.Context, token string) (*entity.ConfirmationResult, error) {
	g.confirmTokens = append(g.confirmTokens, token)
	return g.confirmRes, g.confirmErr
}

func (g *gatewayStub) TransactionStatus(_ context.Context, token string) (*entity.ConfirmationResult, error) {
	return g.confirmRes, g.confirmErr
}

func newTestServer(t *testing.T, gw *gatewayStub) (*httptest.Server, *http.Client) {
	t.Helper()
	return newTestServerWith(t, gw, salesStub{})
}

func newTestServerWith(t *testing.T, gw *gatewayStub, sales ports.Sales) (*httptest.Server, *http.Client) {
	t.Helper()
	store := cache.NewMemoryStore("storefront")
	sessions := NewSessions(store)
	pending := checkout.NewPendingStore(store)
	catalog := catalogStub{}

	purchase := checkout.NewPurchaseService(catalog, sales, gw, pending, nil, "https://shop.example")
	flow := checkout.NewFlow(gw, pending, nil, nil)
	handler := NewHandler(sessions, catalog, sales, ratesStub{}, purchase, flow, reports.NewService(catalog, sales), nil)

	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func get(t *testing.T, client *http.Client, url string) (string, *http.Response) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp
}

func postForm(t *testing.T, client *http.Client, target string, form url.Values) (string, *http.Response) {
	t.Helper()
	resp, err := client.PostForm(target, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp
}

func login(t *testing.T, client *http.Client, base string) {
	t.Helper()
	_, resp := postForm(t, client, base+"/login", url.Values{
		"email":    {"cliente@test.cl"},
		"password": {"cliente123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func addToCart(t *testing.T, client *http.Client, base string) {
	t.Helper()
	_, resp := postForm(t, client, base+"/api/cart/items", url.Values{
		"product_id": {"1"},
		"quantity":   {"1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "redirects to the cart page")
}

func TestHomeRendersCatalog(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})

	body, resp := get(t, client, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Taladro Percutor Bosch GSB 550")
	assert.Contains(t, body, "$89.990")
}

func TestHomeCategoryFilter(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})

	body, _ := get(t, client, srv.URL+"/?categoria=pinturas")
	assert.NotContains(t, body, "Taladro")
	assert.Contains(t, body, "No hay productos")
}

func TestCartRoundTrip(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})
	addToCart(t, client, srv.URL)

	body, _ := get(t, client, srv.URL+"/api/cart")
	assert.Contains(t, body, `"subtotal":89990`)

	_, resp := postForm(t, client, srv.URL+"/api/cart/items/1", url.Values{"quantity": {"3"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = get(t, client, srv.URL+"/api/cart")
	assert.Contains(t, body, `"subtotal":269970`)

	_, resp = postForm(t, client, srv.URL+"/api/cart/items/1/delete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = get(t, client, srv.URL+"/api/cart")
	assert.Contains(t, body, `"units":0`)
}

func TestCheckoutRendersHandoffPage(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})
	login(t, client, srv.URL)
	addToCart(t, client, srv.URL)

	body, resp := postForm(t, client, srv.URL+"/checkout", url.Values{"delivery": {"retiro"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Redirigiendo a Webpay")
	assert.Contains(t, body, `name="token_ws"`)
	assert.Contains(t, body, "tok-live")
	assert.Contains(t, body, "$89.990")
}

func TestCheckoutWithoutLoginFlashesError(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})
	addToCart(t, client, srv.URL)

	body, resp := postForm(t, client, srv.URL+"/checkout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "bounced back to the cart page")
	assert.Contains(t, body, "No pudimos iniciar el pago")
}

func TestReturnWithTokenConfirmsAndShowsSuccess(t *testing.T) {
	gw := &gatewayStub{confirmRes: &entity.ConfirmationResult{
		Status:            entity.StatusAuthorized,
		Amount:            93980,
		AuthorizationCode: "1213",
		BuyOrder:          "ORD-1-AB12CD34",
	}}
	srv, client := newTestServer(t, gw)
	login(t, client, srv.URL)
	addToCart(t, client, srv.URL)

	// The gateway lands the browser on the return path with the token in
	// the query; the detector stashes it and redirects to the clean
	// processing path, which confirms.
	body, resp := get(t, client, srv.URL+"/pago-resultado?token_ws=tok-live")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/webpay/processing", resp.Request.URL.Path)
	assert.Contains(t, body, "¡Pago exitoso!")
	assert.Contains(t, body, "1213")
	assert.Equal(t, []string{"tok-live"}, gw.confirmTokens)

	cart, _ := get(t, client, srv.URL+"/api/cart")
	assert.Contains(t, cart, `"units":0`, "cart cleared after payment")
}

func TestProcessingRefreshDoesNotReconfirm(t *testing.T) {
	gw := &gatewayStub{confirmRes: &entity.ConfirmationResult{Status: entity.StatusAuthorized}}
	srv, client := newTestServer(t, gw)

	get(t, client, srv.URL+"/pago-resultado?token_ws=tok-live")
	require.Len(t, gw.confirmTokens, 1)

	// Refreshing the clean processing URL finds no stashed token: a failure
	// page, never a second confirmation.
	body, _ := get(t, client, srv.URL+"/webpay/processing")
	assert.Contains(t, body, "Pago no realizado")
	assert.Len(t, gw.confirmTokens, 1)
}

func TestReturnPathWithoutTokenShowsFailure(t *testing.T) {
	gw := &gatewayStub{}
	srv, client := newTestServer(t, gw)

	body, _ := get(t, client, srv.URL+"/pago-resultado")
	assert.Contains(t, body, "Pago no realizado")
	assert.Contains(t, body, "token not found")
	assert.Contains(t, body, "contacto@ferremas.cl", "failure page offers a contact channel")
	assert.Empty(t, gw.confirmTokens)
}

func TestRejectedPaymentShowsFailure(t *testing.T) {
	gw := &gatewayStub{confirmRes: &entity.ConfirmationResult{Status: entity.StatusRejected, Amount: 93980}}
	srv, client := newTestServer(t, gw)

	body, _ := get(t, client, srv.URL+"/webpay-return?token_ws=tok-live")
	assert.Contains(t, body, "Pago no realizado")
	assert.Contains(t, body, "rechazada por el banco")
}

func TestLegacySuccessFlagClearsCartAndFlashes(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})
	addToCart(t, client, srv.URL)

	body, resp := get(t, client, srv.URL+"/?pago=exitoso")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, body, "¡Pago exitoso!")

	cart, _ := get(t, client, srv.URL+"/api/cart")
	assert.Contains(t, cart, `"units":0`)
}

func TestLegacySuccessPath(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})

	_, resp := get(t, client, srv.URL+"/pago-exitoso")
	assert.Equal(t, "/", resp.Request.URL.Path)
}

func TestAdminRequiresAdmin(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})

	_, resp := get(t, client, srv.URL+"/admin")
	assert.Equal(t, "/login", resp.Request.URL.Path)

	postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"admin@ferremas.cl"},
		"password": {"admin123"},
	})
	body, resp := get(t, client, srv.URL+"/admin")
	assert.Equal(t, "/admin", resp.Request.URL.Path)
	assert.Contains(t, body, "Panel de administración")
	assert.Contains(t, body, "$93.980", "revenue from the single paid order")
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	sales := &recordingSales{statusUpdates: map[string]string{}}
	srv, client := newTestServerWith(t, &gatewayStub{}, sales)
	postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"admin@ferremas.cl"},
		"password": {"admin123"},
	})

	body, resp := postForm(t, client, srv.URL+"/admin/orders/order-1/status", url.Values{
		"status": {entity.OrderStatusPaid},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Request.URL.Path, "back to the dashboard")
	assert.Contains(t, body, "Orden order-1 actualizada")
	assert.Equal(t, map[string]string{"order-1": entity.OrderStatusPaid}, sales.statusUpdates)
}

func TestAdminUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	sales := &recordingSales{statusUpdates: map[string]string{}}
	srv, client := newTestServerWith(t, &gatewayStub{}, sales)
	postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"admin@ferremas.cl"},
		"password": {"admin123"},
	})

	_, resp := postForm(t, client, srv.URL+"/admin/orders/order-1/status", url.Values{
		"status": {"enviado_a_marte"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, sales.statusUpdates)
}

func TestAdminUpdateOrderStatusRequiresAdmin(t *testing.T) {
	sales := &recordingSales{statusUpdates: map[string]string{}}
	srv, client := newTestServerWith(t, &gatewayStub{}, sales)

	_, resp := postForm(t, client, srv.URL+"/admin/orders/order-1/status", url.Values{
		"status": {entity.OrderStatusCancelled},
	})
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Empty(t, sales.statusUpdates)
}

func TestExchangeRateJSON(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})

	body, resp := get(t, client, srv.URL+"/api/exchange-rate")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"currency":"USD"`)
	assert.Contains(t, body, "943.57")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})

	body, _ := postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"cliente@test.cl"},
		"password": {"wrong"},
	})
	assert.Contains(t, body, "Credenciales inválidas")
}

func TestLogout(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})
	login(t, client, srv.URL)

	body, _ := get(t, client, srv.URL+"/")
	assert.Contains(t, body, "Cliente Test")

	postForm(t, client, srv.URL+"/logout", nil)
	body, _ = get(t, client, srv.URL+"/")
	assert.False(t, strings.Contains(body, "Cliente Test"))
}

func TestHealth(t *testing.T) {
	srv, client := newTestServer(t, &gatewayStub{})
	body, resp := get(t, client, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}
