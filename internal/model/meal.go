// Package model defines the data structures used throughout the application.
package model

import "time"

// Meal represents a single meal entry in a session's diet diary.
//
// Ownership is purely via SessionToken — there is no foreign key to User.ID.
// A meal is visible and mutable only to requests presenting its exact token,
// and login re-stamps the token on every meal the session owns.
//
// Date is user-supplied (the meal may be logged after the fact), so it is
// distinct from CreatedAt, which is server-stamped and drives list ordering.
type Meal struct {
	ID           string    `json:"id"          db:"id"`
	Name         string    `json:"name"        db:"name"`
	Description  string    `json:"description" db:"description"`
	InDiet       bool      `json:"inDiet"      db:"in_diet"`
	Date         time.Time `json:"date"        db:"date"`
	SessionToken string    `json:"-"           db:"session_token"`
	CreatedAt    time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"   db:"updated_at"`
}
