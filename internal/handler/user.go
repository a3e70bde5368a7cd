package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/daily-diet/internal/middleware"
	"github.com/sakif/daily-diet/internal/model"
	"github.com/sakif/daily-diet/internal/service"
	"github.com/sakif/daily-diet/internal/session"
	"github.com/sakif/daily-diet/internal/stats"
)

// UserHandler exposes the user registry and the session's adherence
// summary over HTTP.
type UserHandler struct {
	users        *service.UserService
	meals        *service.MealService
	sessions     *session.Manager
	logger       *slog.Logger
	secureCookie bool
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(
	users *service.UserService,
	meals *service.MealService,
	sessions *session.Manager,
	logger *slog.Logger,
	secureCookie bool,
) *UserHandler {
	return &UserHandler{
		users:        users,
		meals:        meals,
		sessions:     sessions,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public view of a user: no password hash, no token.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// profileResponse is the body of GET /api/users: the adherence summary
// with the owning user attached.
type profileResponse struct {
	stats.Summary
	User userResponse `json:"user"`
}

// HandleRegister creates a user account bound to the session.
//
// HTTP: POST /api/users
//
// Like meal creation, registering without a session mints one; the new
// user's records live under that token until a login replaces it.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	token, isNew := h.sessions.EnsureToken(middleware.SessionToken(r.Context()))

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, token)
	if err != nil {
		writeError(w, err)
		return
	}

	if isNew {
		setSessionCookie(w, token, h.secureCookie)
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleProfile returns the session's user together with the adherence
// statistics over the session's meals.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.RequireToken(middleware.SessionToken(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.FindBySessionToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.meals.Summary(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Summary: summary,
		User:    toUserResponse(user),
	})
}

// HandleLogin authenticates and rotates the session token.
//
// HTTP: PUT /api/users/login
//
// The service returns the newly minted token explicitly; setting it as
// the cookie is this layer's whole contribution. Requests still using the
// old token afterwards find nothing.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.users.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.SessionToken, h.secureCookie)

	writeJSON(w, http.StatusOK, toUserResponse(result.User))
}

// HandleDelete removes a user by id.
//
// HTTP: DELETE /api/users/{id}
//
// No ownership check at this layer; the user's meals are left behind,
// unreachable once no session owns their token.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
