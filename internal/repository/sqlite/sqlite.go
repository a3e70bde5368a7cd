// Package sqlite implements the repository interfaces on SQLite.
//
// We use modernc.org/sqlite (pure Go, no CGo) through database/sql, the
// same setup for production files and in-memory test databases.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests) and runs
// migrations. Call Close when done.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and with the pool
	// capped an in-memory database is shared instead of one per connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe
// to run on every startup.
//
// Usernames carry COLLATE NOCASE so the UNIQUE index enforces the
// case-insensitive uniqueness rule at write time, not just in Go code.
// Meals have no foreign key to users: ownership is the session token.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			username       TEXT NOT NULL COLLATE NOCASE UNIQUE,
			email          TEXT NOT NULL UNIQUE,
			password_hash  TEXT NOT NULL,
			session_token  TEXT NOT NULL,
			created_at     DATETIME NOT NULL,
			updated_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_users_session_token ON users(session_token);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS meals (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			description    TEXT NOT NULL,
			in_diet        INTEGER NOT NULL,
			date           DATETIME NOT NULL,
			session_token  TEXT NOT NULL,
			created_at     DATETIME NOT NULL,
			updated_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_meals_session_token ON meals(session_token);
	`)
	if err != nil {
		return fmt.Errorf("creating meals table: %w", err)
	}

	return nil
}
