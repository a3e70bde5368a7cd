package handler_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/daily-diet/internal/auth"
	"github.com/sakif/daily-diet/internal/handler"
	"github.com/sakif/daily-diet/internal/middleware"
	sqliteRepo "github.com/sakif/daily-diet/internal/repository/sqlite"
	"github.com/sakif/daily-diet/internal/service"
	"github.com/sakif/daily-diet/internal/session"
)

// newTestRouter assembles the real stack (chi, in-memory sqlite, services,
// handlers) the same way internal/server does, minus the HTTP listener.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	sessions := session.NewManager(db, logger)
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)

	mealService := service.NewMealService(db, logger)
	userService := service.NewUserService(db, passwords, sessions, logger)

	mealHandler := handler.NewMealHandler(mealService, sessions, logger, false)
	userHandler := handler.NewUserHandler(userService, mealService, sessions, logger, false)

	r := chi.NewRouter()
	r.Use(middleware.Session)
	r.Route("/api", func(r chi.Router) {
		r.Route("/meals", func(r chi.Router) {
			r.Post("/", mealHandler.HandleCreate)
			r.Get("/", mealHandler.HandleList)
			r.Get("/{id}", mealHandler.HandleGetByID)
			r.Put("/{id}", mealHandler.HandleUpdate)
			r.Delete("/{id}", mealHandler.HandleDelete)
		})
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleRegister)
			r.Get("/", userHandler.HandleProfile)
			r.Put("/login", userHandler.HandleLogin)
			r.Delete("/{id}", userHandler.HandleDelete)
		})
	})
	return r
}

// do sends a request, optionally with a session cookie, and returns the
// recorder.
func do(t *testing.T, router http.Handler, method, path, sessionToken, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: sessionToken})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// sessionCookie extracts the session token set by a response, or "".
func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

const mealBody = `{"name":"breakfast","description":"oats and fruit","inDiet":true,"date":"2024-05-01T08:00:00Z"}`

func createMeal(t *testing.T, router http.Handler, token string, inDiet bool) (mealID, sessionToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"a meal","description":"something tasty","inDiet":%v}`, inDiet)
	rec := do(t, router, http.MethodPost, "/api/meals", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var meal struct {
		ID string `json:"id"`
	}
	decode(t, rec, &meal)

	if minted := sessionCookie(rec); minted != "" {
		return meal.ID, minted
	}
	return meal.ID, token
}

func TestCreateMeal_MintsSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/meals", "", mealBody)
	assert.Equal(t, http.StatusCreated, rec.Code)

	token := sessionCookie(rec)
	assert.NotEmpty(t, token, "first create should set a session cookie")

	var meal struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		InDiet bool   `json:"inDiet"`
	}
	decode(t, rec, &meal)
	assert.NotEmpty(t, meal.ID)
	assert.Equal(t, "breakfast", meal.Name)
	assert.True(t, meal.InDiet)
}

func TestCreateMeal_KeepsExistingSession(t *testing.T) {
	router := newTestRouter(t)
	_, token := createMeal(t, router, "", true)

	rec := do(t, router, http.MethodPost, "/api/meals", token, mealBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, sessionCookie(rec), "no new cookie when a session is presented")
}

func TestCreateMeal_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/meals", "",
		`{"name":"ab","description":"too short name","inDiet":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp handler.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "validation_error", errResp.Error)
	assert.Equal(t, "name", errResp.Field)

	// A failed create must not hand out a session cookie.
	assert.Empty(t, sessionCookie(rec))
}

func TestListMeals_RequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/meals", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var errResp handler.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "unauthenticated", errResp.Error)
}

func TestListMeals_ScopedToSession(t *testing.T) {
	router := newTestRouter(t)

	_, tokenA := createMeal(t, router, "", true)
	createMeal(t, router, tokenA, false)
	_, tokenB := createMeal(t, router, "", true)

	rec := do(t, router, http.MethodGet, "/api/meals", tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Total int `json:"total"`
		Meals []struct {
			ID string `json:"id"`
		} `json:"meals"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Total)

	rec = do(t, router, http.MethodGet, "/api/meals", tokenB, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Total)
}

func TestGetMeal_ForeignMealIs404(t *testing.T) {
	router := newTestRouter(t)

	mealID, _ := createMeal(t, router, "", true)
	_, tokenB := createMeal(t, router, "", true)

	rec := do(t, router, http.MethodGet, "/api/meals/"+mealID, tokenB, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMeal_FullReplace(t *testing.T) {
	router := newTestRouter(t)
	mealID, token := createMeal(t, router, "", true)

	rec := do(t, router, http.MethodPut, "/api/meals/"+mealID, token,
		`{"name":"late dinner","description":"pizza, regrettably","inDiet":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var meal struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		InDiet bool   `json:"inDiet"`
	}
	decode(t, rec, &meal)
	assert.Equal(t, mealID, meal.ID)
	assert.Equal(t, "late dinner", meal.Name)
	assert.False(t, meal.InDiet)
}

func TestDeleteMeal_ThenGone(t *testing.T) {
	router := newTestRouter(t)
	mealID, token := createMeal(t, router, "", true)

	rec := do(t, router, http.MethodDelete, "/api/meals/"+mealID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/meals/"+mealID, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

const registerBody = `{"username":"alice","email":"alice@example.com","password":"supersecret","confirmPassword":"supersecret"}`

func TestRegister_MintsSessionAndReturnsUser(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, sessionCookie(rec))

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	decode(t, rec, &user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestRegister_DuplicateUsernameConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/users", "",
		`{"username":"ALICE","email":"other@example.com","password":"supersecret","confirmPassword":"supersecret"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProfile_ReturnsUserAndSummary(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := sessionCookie(rec)

	for _, inDiet := range []bool{true, true, false, true} {
		createMeal(t, router, token, inDiet)
	}

	rec = do(t, router, http.MethodGet, "/api/users", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		Total        int `json:"total"`
		TotalInDiet  int `json:"totalInDiet"`
		TotalOutDiet int `json:"totalOutDiet"`
		BestSequence int `json:"bestSequence"`
		User         struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decode(t, rec, &profile)
	assert.Equal(t, 4, profile.Total)
	assert.Equal(t, 3, profile.TotalInDiet)
	assert.Equal(t, 1, profile.TotalOutDiet)
	assert.Equal(t, 2, profile.BestSequence)
	assert.Equal(t, "alice", profile.User.Username)
}

// The full ownership-transfer path: meals logged before login follow the
// user onto the new token, and the old token goes dark.
func TestLogin_TransfersOwnership(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	oldToken := sessionCookie(rec)

	createMeal(t, router, oldToken, true)
	createMeal(t, router, oldToken, false)

	rec = do(t, router, http.MethodPut, "/api/users/login", oldToken,
		`{"username":"alice","password":"supersecret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	newToken := sessionCookie(rec)
	require.NotEmpty(t, newToken, "login must set the rotated session cookie")
	require.NotEqual(t, oldToken, newToken)

	var list struct {
		Total int `json:"total"`
	}

	rec = do(t, router, http.MethodGet, "/api/meals", newToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Total, "meals must follow the user onto the new token")

	rec = do(t, router, http.MethodGet, "/api/meals", oldToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	assert.Equal(t, 0, list.Total, "the old token must retrieve nothing")

	rec = do(t, router, http.MethodGet, "/api/users", oldToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "the old token must not resolve the user")
}

func TestLogin_WrongPassword(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/users/login", "",
		`{"username":"alice","password":"wrongsecret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var errResp handler.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "unauthorized", errResp.Error)
}

func TestDeleteUser(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", "", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user struct {
		ID string `json:"id"`
	}
	decode(t, rec, &user)

	rec = do(t, router, http.MethodDelete, "/api/users/"+user.ID, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/users/"+user.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
