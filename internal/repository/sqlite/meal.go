package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/daily-diet/internal/apperror"
	"github.com/sakif/daily-diet/internal/model"
	"github.com/sakif/daily-diet/internal/repository"
)

// compile-time check that *DB implements repository.MealRepository
var _ repository.MealRepository = (*DB)(nil)

// CreateMeal inserts a new meal. The caller supplies name, description,
// in-diet flag, date, and the owning session token; id and timestamps are
// stamped here and written back onto the passed meal.
func (db *DB) CreateMeal(ctx context.Context, meal *model.Meal) error {
	meal.ID = xid.New().String()

	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO meals (id, name, description, in_diet, date, session_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID,
		meal.Name,
		meal.Description,
		meal.InDiet,
		meal.Date,
		meal.SessionToken,
		meal.CreatedAt,
		meal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating meal: %w", err)
	}

	return nil
}

// ListMeals returns every meal owned by token, in insertion order.
//
// Ordering is (created_at, id): xid values are time-sortable, so id breaks
// ties between meals created within the same timestamp granularity. The
// streak computation relies on this ordering being stable.
func (db *DB) ListMeals(ctx context.Context, token string) ([]model.Meal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, in_diet, date, session_token, created_at, updated_at
		 FROM meals
		 WHERE session_token = ?
		 ORDER BY created_at ASC, id ASC`,
		token,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing meals: %w", err)
	}
	defer rows.Close()

	meals := make([]model.Meal, 0)
	for rows.Next() {
		var m model.Meal
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Description, &m.InDiet, &m.Date,
			&m.SessionToken, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning meal row: %w", err)
		}
		meals = append(meals, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meals: %w", err)
	}

	return meals, nil
}

// GetMealByID retrieves a meal by id, scoped to token. A meal that exists
// under a different token yields the same NotFound as no meal at all.
func (db *DB) GetMealByID(ctx context.Context, token, id string) (*model.Meal, error) {
	var m model.Meal

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, in_diet, date, session_token, created_at, updated_at
		 FROM meals
		 WHERE id = ? AND session_token = ?`,
		id, token,
	).Scan(
		&m.ID, &m.Name, &m.Description, &m.InDiet, &m.Date,
		&m.SessionToken, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("meal", id)
		}
		return nil, fmt.Errorf("sqlite: getting meal %s: %w", id, err)
	}

	return &m, nil
}

// UpdateMeal replaces the mutable fields of the meal (name, description,
// in-diet flag, date) and refreshes updated_at. The WHERE clause carries
// the token, so an update against someone else's meal affects zero rows
// and reads as NotFound.
func (db *DB) UpdateMeal(ctx context.Context, token string, meal *model.Meal) error {
	meal.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE meals
		 SET name = ?, description = ?, in_diet = ?, date = ?, updated_at = ?
		 WHERE id = ? AND session_token = ?`,
		meal.Name,
		meal.Description,
		meal.InDiet,
		meal.Date,
		meal.UpdatedAt,
		meal.ID,
		token,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating meal %s: %w", meal.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("meal", meal.ID)
	}

	return nil
}

// DeleteMeal removes the meal owned by token. Deleting an absent or
// foreign meal returns NotFound, so a second delete of the same id fails.
func (db *DB) DeleteMeal(ctx context.Context, token, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM meals WHERE id = ? AND session_token = ?`,
		id, token,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting meal %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("meal", id)
	}

	return nil
}
