// Package ledger provides an append-only history of proxied actions.
// It records what was asked of the vendor and how it ended; it never
// stores light state.
package ledger

import (
	"context"
	"database/sql"
	"time"
)

// Result mirrors how a request ended
type Result string

const (
	ResultOK       Result = "ok"
	ResultRejected Result = "rejected"
	ResultFailed   Result = "failed"
)

// Entry represents a single recorded action
type Entry struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Action    string    `json:"action"`
	Selector  string    `json:"selector"`
	Status    int       `json:"status"`
	Result    Result    `json:"result"`
	Error     string    `json:"-"` // server-side only
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger provides append-only action logging
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Ledger using the provided database connection
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Append adds a new entry. A zero Timestamp is filled with the current time.
func (l *Ledger) Append(ctx context.Context, entry Entry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = l.now()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO action_ledger (request_id, action, selector, status, result, error, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.RequestID, entry.Action, entry.Selector, entry.Status, string(entry.Result), entry.Error, entry.Duration, ts.UTC().UnixMilli())

	return err
}

// Recent returns up to limit entries, newest first
func (l *Ledger) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, request_id, action, selector, status, result, error, duration_ms, timestamp
		FROM action_ledger
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// DeleteOlderThan removes entries older than the specified duration (retention policy)
func (l *Ledger) DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := l.now().Add(-retention).UTC().UnixMilli()
	result, err := l.db.ExecContext(ctx, `DELETE FROM action_ledger WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	entries := []*Entry{}
	for rows.Next() {
		var entry Entry
		var requestID, errText sql.NullString
		var result string
		var timestamp int64

		err := rows.Scan(
			&entry.ID, &requestID, &entry.Action, &entry.Selector, &entry.Status,
			&result, &errText, &entry.Duration, &timestamp,
		)
		if err != nil {
			return nil, err
		}

		entry.Result = Result(result)
		entry.Timestamp = time.UnixMilli(timestamp).UTC()
		if requestID.Valid {
			entry.RequestID = requestID.String
		}
		if errText.Valid {
			entry.Error = errText.String
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
