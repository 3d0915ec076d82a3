package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ferremas-cl/storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.DetectPaymentReturn(handler.sessions))

	r.Get("/", handler.Home)
	r.Get("/health", handler.Health)

	r.Get("/login", handler.LoginPage)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)

	r.Get("/carrito", handler.CartPage)
	r.Post("/checkout", handler.Checkout)

	// The gateway may land the browser on any of the historical return
	// paths, with GET or POST depending on the upstream version.
	r.Get("/webpay/processing", handler.ProcessReturn)
	r.HandleFunc("/pago-resultado", handler.ProcessReturn)
	r.HandleFunc("/webpay-return", handler.ProcessReturn)

	r.Get("/admin", handler.Admin)
	r.Post("/admin/orders/{id}/status", handler.AdminUpdateOrderStatus)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cart", handler.GetCart)
		r.Post("/cart/items", handler.AddCartItem)
		r.Post("/cart/items/{id}", handler.UpdateCartItem)
		r.Post("/cart/items/{id}/delete", handler.DeleteCartItem)
		r.Get("/exchange-rate", handler.ExchangeRate)
	})

	return r
}
