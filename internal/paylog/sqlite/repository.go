// Package sqlite provides a SQLite-backed implementation of
// paylog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers: the
// confirmation flow writes while the admin dashboard may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ferremas-cl/storefront/internal/paylog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable event in a payment attempt's lifecycle.
const schema = `
CREATE TABLE IF NOT EXISTS payment_attempts (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Merchant-side attempt identifier. Not UNIQUE: one row per transition.
    buy_order   TEXT    NOT NULL DEFAULT '',

    -- Gateway session correlation identifier.
    session_id  TEXT    NOT NULL DEFAULT '',

    -- Gateway-issued transaction token, once known.
    token       TEXT    NOT NULL DEFAULT '',

    -- Lifecycle state at the time this row was written.
    status      TEXT    NOT NULL,

    -- Attempted charge in integer pesos.
    amount      INTEGER NOT NULL DEFAULT 0,

    -- Failure reason or authorization code, depending on status.
    detail      TEXT    NOT NULL DEFAULT '',

    -- W3C trace/span IDs from the active OTel span.
    trace_id    TEXT    NOT NULL DEFAULT '',
    span_id     TEXT    NOT NULL DEFAULT '',

    -- Wall-clock timestamp (RFC3339 stored as TEXT, SQLite idiom).
    updated_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payment_attempts_buy_order ON payment_attempts(buy_order, updated_at);
CREATE INDEX IF NOT EXISTS idx_payment_attempts_token ON payment_attempts(token);
`

// Repository is the SQLite implementation of paylog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/payments.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver uses _pragma query parameters to configure
	// connection state. WAL enables concurrent readers; busy_timeout waits
	// for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new payment-attempt row. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *paylog.Attempt) error {
	const q = `
		INSERT INTO payment_attempts
			(buy_order, session_id, token, status, amount, detail, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.BuyOrder,
		entry.SessionID,
		entry.Token,
		string(entry.Status),
		entry.Amount,
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save payment attempt %q: %w", entry.BuyOrder, err)
	}
	return nil
}

// Recent returns the newest rows first, up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]paylog.Attempt, error) {
	const q = `
		SELECT buy_order, session_id, token, status, amount, detail,
		       trace_id, span_id, updated_at
		FROM   payment_attempts
		ORDER  BY id DESC
		LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list payment attempts: %w", err)
	}
	defer rows.Close()

	var out []paylog.Attempt
	for rows.Next() {
		var entry paylog.Attempt
		var updatedAt string
		if err := rows.Scan(
			&entry.BuyOrder,
			&entry.SessionID,
			&entry.Token,
			&entry.Status,
			&entry.Amount,
			&entry.Detail,
			&entry.TraceID,
			&entry.SpanID,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan payment attempt: %w", err)
		}
		entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse updated_at %q: %w", updatedAt, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
