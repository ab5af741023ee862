package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ContactMessage is one stored contact form submission.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Caller    string
	CreatedAt time.Time
}

// SaveContactMessage inserts a submission. IDs must be unique.
func (s *Store) SaveContactMessage(ctx context.Context, msg ContactMessage) error {
	if s == nil || s.DB == nil {
		return errNotInitialized
	}
	if msg.ID == "" {
		return errors.New("contact message id is required")
	}

	created := msg.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, caller, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.Name, msg.Email, nullString(msg.Subject), msg.Message, nullString(msg.Caller), created.UnixMilli())
	if err != nil {
		return fmt.Errorf("store contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns the newest submissions first.
func (s *Store) ListContactMessages(ctx context.Context, limit int) ([]ContactMessage, error) {
	if s == nil || s.DB == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, email, subject, message, caller, created_at_ms
		FROM contact_messages
		ORDER BY created_at_ms DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	out := []ContactMessage{}
	for rows.Next() {
		var (
			msg       ContactMessage
			subject   sql.NullString
			caller    sql.NullString
			createdMs int64
		)
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &subject, &msg.Message, &caller, &createdMs); err != nil {
			return nil, fmt.Errorf("scan contact messages: %w", err)
		}
		msg.Subject = subject.String
		msg.Caller = caller.String
		msg.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
