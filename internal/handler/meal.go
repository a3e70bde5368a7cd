package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/daily-diet/internal/middleware"
	"github.com/sakif/daily-diet/internal/model"
	"github.com/sakif/daily-diet/internal/service"
	"github.com/sakif/daily-diet/internal/session"
)

// MealHandler exposes the meal ledger over HTTP.
//
// The handler's responsibilities end at HTTP: decode the body, pull the
// session token out of the request context, hand both to the service, and
// encode the result. Creating a meal without a session mints one and sets
// the cookie; reads and deletes never create identity.
type MealHandler struct {
	meals        *service.MealService
	sessions     *session.Manager
	logger       *slog.Logger
	secureCookie bool
}

// NewMealHandler creates a MealHandler.
func NewMealHandler(meals *service.MealService, sessions *session.Manager, logger *slog.Logger, secureCookie bool) *MealHandler {
	return &MealHandler{
		meals:        meals,
		sessions:     sessions,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// mealRequest is the request body for create and update. Date is RFC 3339;
// when omitted it defaults to the time of creation.
type mealRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InDiet      bool      `json:"inDiet"`
	Date        time.Time `json:"date"`
}

func (req mealRequest) toInput() service.MealInput {
	return service.MealInput{
		Name:        req.Name,
		Description: req.Description,
		InDiet:      req.InDiet,
		Date:        req.Date,
	}
}

// listMealsResponse mirrors the list endpoint's body: the meals plus a
// convenience count.
type listMealsResponse struct {
	Total int          `json:"total"`
	Meals []model.Meal `json:"meals"`
}

// HandleCreate creates a meal.
//
// HTTP: POST /api/meals
func (h *MealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid meal JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	token, isNew := h.sessions.EnsureToken(middleware.SessionToken(r.Context()))

	meal, err := h.meals.Create(r.Context(), token, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	// Only hand out the cookie once the meal actually exists; a failed
	// create should not leave the client holding a token to nothing.
	if isNew {
		setSessionCookie(w, token, h.secureCookie)
	}

	writeJSON(w, http.StatusCreated, meal)
}

// HandleList returns the session's meals in creation order.
//
// HTTP: GET /api/meals
func (h *MealHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.RequireToken(middleware.SessionToken(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	meals, err := h.meals.List(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listMealsResponse{
		Total: len(meals),
		Meals: meals,
	})
}

// HandleGetByID returns a single meal.
//
// HTTP: GET /api/meals/{id}
func (h *MealHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.RequireToken(middleware.SessionToken(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	meal, err := h.meals.GetByID(r.Context(), token, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

// HandleUpdate replaces a meal's mutable fields.
//
// HTTP: PUT /api/meals/{id}
func (h *MealHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.RequireToken(middleware.SessionToken(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid meal JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	meal, err := h.meals.Update(r.Context(), token, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

// HandleDelete removes a meal.
//
// HTTP: DELETE /api/meals/{id}
func (h *MealHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.RequireToken(middleware.SessionToken(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.meals.Delete(r.Context(), token, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
