// Package middlewares holds the storefront's HTTP middlewares.
package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ferremas-cl/storefront/internal/storefront/core/checkout"
)

// ReturnSessions is the slice of the session manager the return detector
// needs: resolving the session and mutating its one-shot and cart slots.
type ReturnSessions interface {
	ID(w http.ResponseWriter, r *http.Request) string
	StashToken(ctx context.Context, sessionID, token string) error
	ClearCart(ctx context.Context, sessionID string) error
	SetFlash(ctx context.Context, sessionID, message string)
}

// DetectPaymentReturn watches every incoming URL for signs of a return from
// the payment gateway. Detection runs on all routes because the gateway and
// its historical versions have used several different return shapes.
//
// A URL carrying a token is rewritten into a one-shot session stash plus a
// redirect to the clean processing path, so refreshing the landing page can
// never replay the confirmation. A bare success flag (no token to confirm)
// just closes out the purchase client-side: clear the cart, flash a notice,
// go home.
func DetectPaymentReturn(sessions ReturnSessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ret := checkout.DetectReturn(r.URL)
			switch {
			case ret.Kind == checkout.ReturnWithToken && ret.Token != "":
				sid := sessions.ID(w, r)
				if err := sessions.StashToken(r.Context(), sid, ret.Token); err != nil {
					slog.ErrorContext(r.Context(), "failed to stash gateway token", "error", err)
				}
				slog.InfoContext(r.Context(), "gateway return detected", "path", r.URL.Path)
				http.Redirect(w, r, "/webpay/processing", http.StatusSeeOther)

			case ret.Kind == checkout.ReturnWithStatusFlag:
				sid := sessions.ID(w, r)
				if err := sessions.ClearCart(r.Context(), sid); err != nil {
					slog.WarnContext(r.Context(), "failed to clear cart on success flag", "error", err)
				}
				sessions.SetFlash(r.Context(), sid, "¡Pago exitoso! Gracias por tu compra.")
				slog.InfoContext(r.Context(), "legacy success flag detected", "path", r.URL.Path)
				http.Redirect(w, r, "/", http.StatusSeeOther)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
