// Package checkout implements the payment-redirect round trip: persisting
// the pending purchase, handing the browser to the gateway's hosted page,
// detecting the return navigation, and confirming the transaction.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/ferremas-cl/storefront/internal/pkg/cache"
	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
)

// PendingTTL bounds how long a pending purchase survives in storage. The
// gateway handoff either completes well within this window or the data is
// stale and should not be replayed.
const PendingTTL = 5 * time.Minute

// PendingStore persists the PendingPurchase snapshot across the full-page
// navigation to the gateway and back. The three fields live in independent
// slots so each is independently recoverable: a corrupt or missing slot
// reads as absent, never as a failure.
type PendingStore struct {
	kv cache.Store
}

func NewPendingStore(kv cache.Store) *PendingStore {
	return &PendingStore{kv: kv}
}

func (s *PendingStore) keys(sessionID string) (items, total, user string) {
	return s.kv.GenerateKey("pending-items", sessionID),
		s.kv.GenerateKey("pending-total", sessionID),
		s.kv.GenerateKey("pending-user", sessionID)
}

// Save writes the three slots. It must complete before the redirect
// navigation is issued; the redirect destroys all in-memory state.
func (s *PendingStore) Save(ctx context.Context, sessionID string, p entity.PendingPurchase) error {
	itemsKey, totalKey, userKey := s.keys(sessionID)

	items, err := json.Marshal(p.Items)
	if err != nil {
		return err
	}
	user, err := json.Marshal(p.User)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, itemsKey, string(items), PendingTTL); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, totalKey, strconv.Itoa(p.TotalAmount), PendingTTL); err != nil {
		return err
	}
	return s.kv.Set(ctx, userKey, string(user), PendingTTL)
}

// Load reads whatever slots survived. Deserialization failures on a slot
// are treated as that slot being absent; Load never fails the caller over
// bad stored data.
func (s *PendingStore) Load(ctx context.Context, sessionID string) entity.PendingPurchase {
	itemsKey, totalKey, userKey := s.keys(sessionID)

	var p entity.PendingPurchase

	if raw, err := s.kv.Get(ctx, itemsKey); err == nil && raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Items); err != nil {
			slog.WarnContext(ctx, "pending items slot corrupt, treating as absent", "error", err)
			p.Items = nil
		}
	}
	if raw, err := s.kv.Get(ctx, totalKey); err == nil && raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.TotalAmount = n
		} else {
			slog.WarnContext(ctx, "pending total slot corrupt, treating as absent", "error", err)
		}
	}
	if raw, err := s.kv.Get(ctx, userKey); err == nil && raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.User); err != nil {
			slog.WarnContext(ctx, "pending user slot corrupt, treating as absent", "error", err)
			p.User = entity.PendingUser{}
		}
	}

	return p
}

// Clear removes all three slots. Idempotent.
func (s *PendingStore) Clear(ctx context.Context, sessionID string) error {
	itemsKey, totalKey, userKey := s.keys(sessionID)
	return s.kv.Del(ctx, itemsKey, totalKey, userKey)
}
