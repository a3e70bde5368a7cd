// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username is stored lower-cased and compared case-insensitively; it and
// Email are unique across all users. PasswordHash holds a bcrypt hash —
// the plaintext never touches storage.
//
// SessionToken is the token currently owning this user's records. Login
// mints a replacement and re-stamps the user row together with every meal
// under the old token, so within a login cycle exactly one user owns a
// given token.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	SessionToken string    `json:"-"         db:"session_token"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
