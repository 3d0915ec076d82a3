package httpx

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ferremas-cl/storefront/internal/paylog"
	"github.com/ferremas-cl/storefront/internal/storefront/core/checkout"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
	"github.com/ferremas-cl/storefront/internal/storefront/core/reports"
)

// deliveryFee is the flat home-delivery charge in CLP.
const deliveryFee = 3990

// recentAttempts bounds the payment attempt list on the admin dashboard.
const recentAttempts = 50

// Handler serves the storefront pages and the small JSON API.
type Handler struct {
	sessions *Sessions
	catalog  ports.Catalog
	sales    ports.Sales
	rates    ports.Rates
	purchase *checkout.PurchaseService
	flow     *checkout.Flow
	reports  *reports.Service
	log      paylog.Repository // nil-safe: attempt listing hidden if nil
}

func NewHandler(
	sessions *Sessions,
	catalog ports.Catalog,
	sales ports.Sales,
	rates ports.Rates,
	purchase *checkout.PurchaseService,
	flow *checkout.Flow,
	reportsSvc *reports.Service,
	log paylog.Repository,
) *Handler {
	return &Handler{
		sessions: sessions,
		catalog:  catalog,
		sales:    sales,
		rates:    rates,
		purchase: purchase,
		flow:     flow,
		reports:  reportsSvc,
		log:      log,
	}
}

// pageData is the header/footer context shared by every rendered page.
type pageData struct {
	User      entity.User
	CartCount int
	Flash     string
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) (string, pageData) {
	ctx := r.Context()
	sid := h.sessions.ID(w, r)
	user, _ := h.sessions.User(ctx, sid)
	cart := h.sessions.Cart(ctx, sid)
	return sid, pageData{
		User:      user,
		CartCount: cart.Units(),
		Flash:     h.sessions.Flash(ctx, sid),
	}
}

// Home renders the catalog, optionally filtered by the categoria parameter.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, page := h.page(w, r)

	products, err := h.catalog.Products(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "catalog unavailable", "error", err)
	}
	if category := r.URL.Query().Get("categoria"); category != "" {
		filtered := products[:0:0]
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	data := struct {
		pageData
		Products []entity.Product
		Rate     *entity.ExchangeRate
		RateCLP  int
	}{pageData: page, Products: products}

	if rate, err := h.rates.USDRate(ctx); err == nil {
		data.Rate = rate
		data.RateCLP = int(rate.Rate)
	}

	render(w, r, "home.html", data)
}

// CartPage renders the cart with the checkout form.
func (h *Handler) CartPage(w http.ResponseWriter, r *http.Request) {
	sid, page := h.page(w, r)
	cart := h.sessions.Cart(r.Context(), sid)

	render(w, r, "cart.html", struct {
		pageData
		Cart        entity.Cart
		DeliveryFee int
	}{pageData: page, Cart: cart, DeliveryFee: deliveryFee})
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	_, page := h.page(w, r)
	render(w, r, "login.html", struct {
		pageData
		Error string
	}{pageData: page})
}

// Login authenticates against the sales service (or its demo accounts).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, page := h.page(w, r)

	user, _, err := h.sales.Login(ctx, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		slog.InfoContext(ctx, "login rejected", "email", r.FormValue("email"))
		render(w, r, "login.html", struct {
			pageData
			Error string
		}{pageData: page, Error: "Credenciales inválidas"})
		return
	}

	if err := h.sessions.SaveUser(ctx, sid, *user); err != nil {
		slog.ErrorContext(ctx, "failed to persist session user", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(ctx, "user logged in", "email", user.Email, "type", user.Type)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := h.sessions.ID(w, r)
	if err := h.sessions.ClearUser(r.Context(), sid); err != nil {
		slog.WarnContext(r.Context(), "failed to clear session user", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetCart returns the session cart as JSON.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := h.sessions.ID(w, r)
	cart := h.sessions.Cart(r.Context(), sid)
	writeJSON(w, http.StatusOK, CartResponse{
		Items:    cart.Items,
		Subtotal: cart.Subtotal(),
		Units:    cart.Units(),
	})
}

// AddCartItem merges a product into the cart, resolving name and price from
// the catalog so the client cannot set its own prices.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessions.ID(w, r)

	productID, err := strconv.Atoi(r.FormValue("product_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product", "product_id must be numeric")
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a positive number")
		return
	}

	product, err := h.catalog.Product(ctx, productID)
	if err != nil {
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	}

	cart := h.sessions.Cart(ctx, sid)
	cart.Add(entity.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Brand:     product.Brand,
		UnitPrice: product.Price,
		Quantity:  quantity,
	})
	if err := h.sessions.SaveCart(ctx, sid, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "session_store_error", err.Error())
		return
	}

	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

// UpdateCartItem sets the quantity for a line; zero removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessions.ID(w, r)

	productID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product", "product id must be numeric")
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	cart := h.sessions.Cart(ctx, sid)
	cart.SetQuantity(productID, quantity)
	if err := h.sessions.SaveCart(ctx, sid, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "session_store_error", err.Error())
		return
	}

	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessions.ID(w, r)

	productID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product", "product id must be numeric")
		return
	}

	cart := h.sessions.Cart(ctx, sid)
	cart.Remove(productID)
	if err := h.sessions.SaveCart(ctx, sid, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "session_store_error", err.Error())
		return
	}

	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

// Checkout starts the payment round trip and renders the handoff page with
// the auto-submitting gateway form.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, page := h.page(w, r)

	cart := h.sessions.Cart(ctx, sid)
	user, _ := h.sessions.User(ctx, sid)

	fee := 0
	if r.FormValue("delivery") == "despacho" {
		fee = deliveryFee
	}

	result, err := h.purchase.Checkout(ctx, sid, cart, user, fee)
	if err != nil {
		var verr *ports.ValidationError
		if errors.As(err, &verr) {
			h.sessions.SetFlash(ctx, sid, "No pudimos iniciar el pago: "+verr.Reason)
		} else {
			slog.ErrorContext(ctx, "checkout failed", "error", err)
			h.sessions.SetFlash(ctx, sid, "No pudimos iniciar el pago. Intenta nuevamente.")
		}
		http.Redirect(w, r, "/carrito", http.StatusSeeOther)
		return
	}

	formHTML, err := result.Form.HTML()
	if err != nil {
		slog.ErrorContext(ctx, "redirect form render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	render(w, r, "webpay.html", struct {
		pageData
		BuyOrder string
		Amount   int
		FormHTML template.HTML
	}{pageData: page, BuyOrder: result.Request.BuyOrder, Amount: result.Request.Amount, FormHTML: formHTML})
}

// ProcessReturn resolves the confirmation flow for a browser coming back
// from the gateway. The token normally arrives via the one-shot session
// stash written by the return detector; query and form fallbacks cover
// direct hits that bypassed the middleware.
func (h *Handler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, page := h.page(w, r)

	token := h.sessions.TakeToken(ctx, sid)
	if token == "" {
		token = r.URL.Query().Get("token_ws")
	}
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" && r.Method == http.MethodPost {
		token = r.FormValue("token_ws")
	}

	outcome := h.flow.Confirm(ctx, sid, token)
	if outcome.State == checkout.StateSuccess {
		if err := h.sessions.ClearCart(ctx, sid); err != nil {
			slog.WarnContext(ctx, "failed to clear cart after payment", "error", err)
		}
	}

	render(w, r, "result.html", struct {
		pageData
		Success bool
		Result  *entity.ConfirmationResult
		Reason  string
	}{
		pageData: page,
		Success:  outcome.State == checkout.StateSuccess,
		Result:   outcome.Result,
		Reason:   outcome.Reason,
	})
}

// Admin renders the dashboard. Non-admin visitors are bounced to login.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, page := h.page(w, r)
	if !page.User.IsAdmin() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	salesReport, err := h.reports.Sales(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "sales report failed", "error", err)
		salesReport = &reports.SalesReport{}
	}
	inventoryReport, err := h.reports.Inventory(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "inventory report failed", "error", err)
		inventoryReport = &reports.InventoryReport{}
	}
	orders, err := h.sales.Orders(ctx)
	if err != nil {
		slog.WarnContext(ctx, "order list unavailable", "error", err)
	}

	var attempts []paylog.Attempt
	if h.log != nil {
		attempts, err = h.log.Recent(ctx, recentAttempts)
		if err != nil {
			slog.WarnContext(ctx, "payment attempt list unavailable", "error", err)
		}
	}

	render(w, r, "admin.html", struct {
		pageData
		SalesReport     *reports.SalesReport
		InventoryReport *reports.InventoryReport
		Orders          []entity.Order
		Attempts        []paylog.Attempt
	}{
		pageData:        page,
		SalesReport:     salesReport,
		InventoryReport: inventoryReport,
		Orders:          orders,
		Attempts:        attempts,
	})
}

// AdminUpdateOrderStatus applies a status change from the dashboard's
// per-order form.
func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, page := h.page(w, r)
	if !page.User.IsAdmin() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := chi.URLParam(r, "id")
	status := r.FormValue("status")
	switch status {
	case entity.OrderStatusPendingPayment, entity.OrderStatusPaid, entity.OrderStatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	if err := h.sales.UpdateOrderStatus(ctx, id, status); err != nil {
		slog.ErrorContext(ctx, "order status update failed", "id", id, "status", status, "error", err)
		h.sessions.SetFlash(ctx, sid, "No se pudo actualizar la orden "+id)
	} else {
		slog.InfoContext(ctx, "order status updated", "id", id, "status", status)
		h.sessions.SetFlash(ctx, sid, "Orden "+id+" actualizada a "+status)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ExchangeRate serves the CLP/USD reference rate for the price toggle.
func (h *Handler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.USDRate(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "rate_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ExchangeRateResponse{
		Currency: rate.Currency,
		Rate:     rate.Rate,
		Date:     rate.Date,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
