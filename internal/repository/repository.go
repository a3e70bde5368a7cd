// Package repository declares the storage interfaces consumed by the
// service layer. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/daily-diet/internal/model"
)

// MealRepository is CRUD over meal records. Every read and write is scoped
// by a session token: a meal under a different token behaves exactly like
// a meal that does not exist.
type MealRepository interface {
	CreateMeal(ctx context.Context, meal *model.Meal) error

	// ListMeals returns the meals owned by token in insertion order.
	// The adherence streak is computed over this ordering, so it must be
	// stable across calls.
	ListMeals(ctx context.Context, token string) ([]model.Meal, error)

	GetMealByID(ctx context.Context, token, id string) (*model.Meal, error)
	UpdateMeal(ctx context.Context, token string, meal *model.Meal) error
	DeleteMeal(ctx context.Context, token, id string) error
}

// UserRepository is CRUD over user accounts.
type UserRepository interface {
	// CreateUser inserts the user, returning apperror.ErrConflict when the
	// username (case-insensitive) or email is already taken.
	CreateUser(ctx context.Context, user *model.User) error

	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserBySessionToken(ctx context.Context, token string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository moves ownership of records between tokens.
type SessionRepository interface {
	// ReassignSession re-stamps the user row and all meals owned by
	// oldToken with newToken in a single transaction. Either everything
	// moves or nothing does.
	ReassignSession(ctx context.Context, oldToken, newToken string) error
}
