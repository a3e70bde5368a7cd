// Package service contains the business logic layer.
//
// Handlers parse HTTP and extract the session token; services enforce the
// business rules and ownership scoping; repositories talk to the store.
// Services receive the token as a plain value on every call — there is no
// ambient session state below the transport layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/daily-diet/internal/apperror"
	"github.com/sakif/daily-diet/internal/model"
	"github.com/sakif/daily-diet/internal/repository"
	"github.com/sakif/daily-diet/internal/stats"
)

const (
	MinMealNameLength        = 3
	MinMealDescriptionLength = 3
)

// MealInput carries the caller-supplied fields of a meal. Update is a full
// replace, so the same struct serves create and update.
type MealInput struct {
	Name        string
	Description string
	InDiet      bool
	Date        time.Time
}

// MealService handles business logic for the meal ledger. Every operation
// is scoped by the session token passed in.
type MealService struct {
	meals  repository.MealRepository
	logger *slog.Logger
}

// NewMealService creates a MealService.
func NewMealService(meals repository.MealRepository, logger *slog.Logger) *MealService {
	return &MealService{
		meals:  meals,
		logger: logger,
	}
}

// validateMealInput trims and checks the field constraints shared by
// Create and Update, returning the cleaned input.
func validateMealInput(in MealInput) (MealInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if len(in.Name) < MinMealNameLength {
		return in, apperror.ValidationFailed("name",
			fmt.Sprintf("meal name must be at least %d characters", MinMealNameLength))
	}
	if len(in.Description) < MinMealDescriptionLength {
		return in, apperror.ValidationFailed("description",
			fmt.Sprintf("meal description must be at least %d characters", MinMealDescriptionLength))
	}

	// The date is user-supplied: meals may be logged after the fact.
	// An absent date means "now".
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}

	return in, nil
}

// Create validates and saves a new meal under token.
func (s *MealService) Create(ctx context.Context, token string, in MealInput) (*model.Meal, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("a session is required")
	}

	in, err := validateMealInput(in)
	if err != nil {
		return nil, err
	}

	meal := &model.Meal{
		Name:         in.Name,
		Description:  in.Description,
		InDiet:       in.InDiet,
		Date:         in.Date,
		SessionToken: token,
	}

	if err := s.meals.CreateMeal(ctx, meal); err != nil {
		s.logger.Error("failed to create meal",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating meal: %w", err)
	}

	s.logger.Info("meal created",
		slog.String("id", meal.ID),
		slog.Bool("inDiet", meal.InDiet),
	)

	return meal, nil
}

// List returns the session's meals in creation order.
func (s *MealService) List(ctx context.Context, token string) ([]model.Meal, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("a session is required")
	}

	meals, err := s.meals.ListMeals(ctx, token)
	if err != nil {
		s.logger.Error("failed to list meals", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing meals: %w", err)
	}

	return meals, nil
}

// GetByID retrieves one meal owned by token. Absent and foreign meals are
// both NotFound.
func (s *MealService) GetByID(ctx context.Context, token, id string) (*model.Meal, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("a session is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "meal ID is required")
	}

	return s.meals.GetMealByID(ctx, token, id)
}

// Update replaces all mutable fields of the meal and refreshes updatedAt,
// preserving id and createdAt.
func (s *MealService) Update(ctx context.Context, token, id string, in MealInput) (*model.Meal, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("a session is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "meal ID is required")
	}

	in, err := validateMealInput(in)
	if err != nil {
		return nil, err
	}

	// Fetch first so the response carries createdAt and so an absent or
	// foreign meal fails before any write.
	meal, err := s.meals.GetMealByID(ctx, token, id)
	if err != nil {
		return nil, err
	}

	meal.Name = in.Name
	meal.Description = in.Description
	meal.InDiet = in.InDiet
	meal.Date = in.Date

	// The repository re-checks ownership in the UPDATE itself, so a
	// concurrent delete between fetch and write still yields NotFound.
	if err := s.meals.UpdateMeal(ctx, token, meal); err != nil {
		return nil, err
	}

	s.logger.Info("meal updated", slog.String("id", meal.ID))

	return meal, nil
}

// Delete removes the meal. A repeated delete of the same id is NotFound.
func (s *MealService) Delete(ctx context.Context, token, id string) error {
	if token == "" {
		return apperror.Unauthenticated("a session is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "meal ID is required")
	}

	if err := s.meals.DeleteMeal(ctx, token, id); err != nil {
		return err
	}

	s.logger.Info("meal deleted", slog.String("id", id))
	return nil
}

// Summary computes the adherence statistics for the session's meals.
func (s *MealService) Summary(ctx context.Context, token string) (stats.Summary, error) {
	meals, err := s.List(ctx, token)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(meals), nil
}
