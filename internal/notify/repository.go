package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a notification ID does not exist.
var ErrNotFound = errors.New("notify: notification not found")

// Repository persists notifications.
type Repository interface {
	Save(ctx context.Context, n Notification) error
	UpdateContact(ctx context.Context, id, address string) error
	ListByRecipient(ctx context.Context, recipient string, limit int) ([]Notification, error)
}

// SQLiteRepository stores notifications in the notifications table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new notification repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save inserts a notification.
func (r *SQLiteRepository) Save(ctx context.Context, n Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient, message, enabled, emergency, contact_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, nullString(n.Recipient), n.Message,
		boolToInt(n.Enabled), boolToInt(n.Emergency),
		nullString(n.ContactAddress),
		n.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// UpdateContact changes the contact address of a stored notification.
func (r *SQLiteRepository) UpdateContact(ctx context.Context, id, address string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET contact_address = ? WHERE id = ?",
		nullString(address), id,
	)
	if err != nil {
		return fmt.Errorf("updating notification contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRecipient returns the most recent notifications for a recipient.
// An empty recipient selects system/broadcast notifications.
func (r *SQLiteRepository) ListByRecipient(ctx context.Context, recipient string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, recipient, message, enabled, emergency, contact_address, created_at
		FROM notifications WHERE recipient = ? ORDER BY created_at DESC LIMIT ?`
	args := []any{recipient, limit}
	if recipient == "" {
		query = `SELECT id, recipient, message, enabled, emergency, contact_address, created_at
			FROM notifications WHERE recipient IS NULL ORDER BY created_at DESC LIMIT ?`
		args = []any{limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	result := []Notification{}
	for rows.Next() {
		var n Notification
		var rcpt, contact sql.NullString
		var enabled, emergency int
		var createdAt string
		if err := rows.Scan(&n.ID, &rcpt, &n.Message, &enabled, &emergency, &contact, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Recipient = rcpt.String
		n.ContactAddress = contact.String
		n.Enabled = enabled == 1
		n.Emergency = emergency == 1
		if n.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing notification timestamp %q: %w", createdAt, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return result, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
