package store

import (
	"context"
	"errors"
	"fmt"
)

var errNotInitialized = errors.New("store is not initialized")

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rate_limits (
		key TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0,
		reset_at_ms INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rate_limits_reset ON rate_limits(reset_at_ms);`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT,
		message TEXT NOT NULL,
		caller TEXT,
		created_at_ms INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contact_messages_created ON contact_messages(created_at_ms);`,
}

// Migrate ensures the required database tables exist. Safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errNotInitialized
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}
	return nil
}
