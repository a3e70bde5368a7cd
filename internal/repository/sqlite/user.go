package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/daily-diet/internal/apperror"
	"github.com/sakif/daily-diet/internal/model"
	"github.com/sakif/daily-diet/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, session_token, created_at, updated_at`

// CreateUser inserts a new user. Uniqueness of username (case-insensitive,
// via COLLATE NOCASE) and email is enforced by the UNIQUE indexes, so two
// concurrent registrations cannot both succeed; the loser gets Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.SessionToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflictErr := conflictFrom(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// conflictFrom translates a UNIQUE constraint violation on the users table
// into the matching apperror.Conflict, or returns nil for other errors.
func conflictFrom(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "users.username") {
		return apperror.Conflict("username", "username is already taken")
	}
	if strings.Contains(msg, "users.email") {
		return apperror.Conflict("email", "email is already registered")
	}
	return apperror.Conflict("user", "user already exists")
}

// GetUserByUsername retrieves a user by username. The COLLATE NOCASE
// column makes the comparison case-insensitive.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUserWhere(ctx, "username = ?", username)
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUserWhere(ctx, "email = ?", email)
}

// GetUserBySessionToken retrieves the user currently owning token.
func (db *DB) GetUserBySessionToken(ctx context.Context, token string) (*model.User, error) {
	return db.getUserWhere(ctx, "session_token = ?", token)
}

func (db *DB) getUserWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where,
		arg,
	).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.SessionToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// DeleteUser removes a user by id. Meals owned by the user's session token
// are left in place; with no user holding the token they become
// permanently unreachable, which is the intended non-cascading behaviour.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
