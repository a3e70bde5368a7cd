package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/daily-diet/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// ReassignSession re-stamps every record owned by oldToken with newToken:
// all meals plus the user row, inside a single transaction. A crash or
// error between the two UPDATEs rolls everything back, so meals and user
// can never end up under different tokens.
//
// A concurrent request still presenting oldToken after commit simply finds
// no rows, which surfaces as NotFound or an empty list. That is the
// intended post-transfer behaviour, not an error.
func (db *DB) ReassignSession(ctx context.Context, oldToken, newToken string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning reassign transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE meals SET session_token = ?, updated_at = ? WHERE session_token = ?`,
		newToken, now, oldToken,
	); err != nil {
		return fmt.Errorf("sqlite: re-stamping meals: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET session_token = ?, updated_at = ? WHERE session_token = ?`,
		newToken, now, oldToken,
	); err != nil {
		return fmt.Errorf("sqlite: re-stamping user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing reassign: %w", err)
	}

	return nil
}
