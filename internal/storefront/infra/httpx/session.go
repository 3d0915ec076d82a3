package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ferremas-cl/storefront/internal/pkg/cache"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
)

const (
	sessionCookie = "ferremas_session"
	sessionTTL    = 24 * time.Hour
	// oneShotTTL bounds the flash message and the stashed gateway token.
	// Both are consumed on the very next request under normal navigation.
	oneShotTTL = 10 * time.Minute
)

// Sessions manages per-browser state in the shared key-value store: the
// cart, the logged-in user, one-shot flash messages and the one-shot
// gateway token stashed by the return detector.
type Sessions struct {
	store cache.Store
}

func NewSessions(store cache.Store) *Sessions {
	return &Sessions{store: store}
}

// ID returns the session id from the cookie, minting a new one if absent.
func (s *Sessions) ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return id
}

// Cart loads the session cart. Missing or corrupt data is an empty cart.
func (s *Sessions) Cart(ctx context.Context, sessionID string) entity.Cart {
	var cart entity.Cart
	raw, err := s.store.Get(ctx, s.store.GenerateKey("cart", sessionID))
	if err != nil || raw == "" {
		return cart
	}
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		slog.WarnContext(ctx, "corrupt session cart, starting empty", "error", err)
		return entity.Cart{}
	}
	return cart
}

func (s *Sessions) SaveCart(ctx context.Context, sessionID string, cart entity.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.store.GenerateKey("cart", sessionID), string(raw), sessionTTL)
}

func (s *Sessions) ClearCart(ctx context.Context, sessionID string) error {
	return s.store.Del(ctx, s.store.GenerateKey("cart", sessionID))
}

// User loads the logged-in user, reporting false when nobody is logged in.
func (s *Sessions) User(ctx context.Context, sessionID string) (entity.User, bool) {
	raw, err := s.store.Get(ctx, s.store.GenerateKey("user", sessionID))
	if err != nil || raw == "" {
		return entity.User{}, false
	}
	var user entity.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		slog.WarnContext(ctx, "corrupt session user, treating as logged out", "error", err)
		return entity.User{}, false
	}
	return user, user.Email != ""
}

func (s *Sessions) SaveUser(ctx context.Context, sessionID string, user entity.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.store.GenerateKey("user", sessionID), string(raw), sessionTTL)
}

func (s *Sessions) ClearUser(ctx context.Context, sessionID string) error {
	return s.store.Del(ctx, s.store.GenerateKey("user", sessionID))
}

// SetFlash stores a one-shot notice shown on the next rendered page.
func (s *Sessions) SetFlash(ctx context.Context, sessionID, message string) {
	if err := s.store.Set(ctx, s.store.GenerateKey("flash", sessionID), message, oneShotTTL); err != nil {
		slog.WarnContext(ctx, "failed to store flash message", "error", err)
	}
}

// Flash consumes and returns the pending notice, if any.
func (s *Sessions) Flash(ctx context.Context, sessionID string) string {
	key := s.store.GenerateKey("flash", sessionID)
	msg, err := s.store.Get(ctx, key)
	if err != nil || msg == "" {
		return ""
	}
	if err := s.store.Del(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to consume flash message", "error", err)
	}
	return msg
}

// StashToken stores the gateway token recovered from a return URL so the
// processing page can consume it after the query string is stripped by the
// redirect. One-shot: a page refresh does not re-confirm the transaction.
func (s *Sessions) StashToken(ctx context.Context, sessionID, token string) error {
	return s.store.Set(ctx, s.store.GenerateKey("wptoken", sessionID), token, oneShotTTL)
}

// TakeToken consumes the stashed gateway token.
func (s *Sessions) TakeToken(ctx context.Context, sessionID string) string {
	key := s.store.GenerateKey("wptoken", sessionID)
	token, err := s.store.Get(ctx, key)
	if err != nil || token == "" {
		return ""
	}
	if err := s.store.Del(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to consume stashed token", "error", err)
	}
	return token
}
