package paylog

import "context"

// Repository is the port for persisting payment-attempt rows. The checkout
// flow depends on this abstraction, not on SQLite directly, so tests can
// swap in an in-memory implementation.
type Repository interface {
	// Save appends a row; the table is an append-only audit log, not an
	// upsert.
	Save(ctx context.Context, entry *Attempt) error

	// Recent returns the most recent rows, newest first, for the admin
	// dashboard.
	Recent(ctx context.Context, limit int) ([]Attempt, error)
}
