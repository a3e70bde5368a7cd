// Package server wires the dependency graph and the HTTP routes.
//
// main.go stays minimal: it reads configuration and calls New/Start. All
// construction happens here, in one place: sqlite.DB at the bottom, then
// the session manager and services on top of it, then the handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/daily-diet/internal/auth"
	"github.com/sakif/daily-diet/internal/handler"
	"github.com/sakif/daily-diet/internal/middleware"
	sqliteRepo "github.com/sakif/daily-diet/internal/repository/sqlite"
	"github.com/sakif/daily-diet/internal/service"
	"github.com/sakif/daily-diet/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port         int
	DBPath       string
	SecureCookie bool // Secure flag on the session cookie; off for local HTTP
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency chain assembled.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and routes.
//
//	POST   /api/meals         create meal (mints a session when absent)
//	GET    /api/meals         list meals for the session
//	GET    /api/meals/{id}    get one meal
//	PUT    /api/meals/{id}    replace a meal's fields
//	DELETE /api/meals/{id}    delete a meal
//	POST   /api/users         register (mints a session when absent)
//	GET    /api/users         profile + adherence summary
//	PUT    /api/users/login   login, rotates the session token
//	DELETE /api/users/{id}    delete a user
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Session)

	sessions := session.NewManager(s.db, s.logger)
	passwords := auth.NewPasswordService()

	mealService := service.NewMealService(s.db, s.logger)
	userService := service.NewUserService(s.db, passwords, sessions, s.logger)

	mealHandler := handler.NewMealHandler(mealService, sessions, s.logger, s.config.SecureCookie)
	userHandler := handler.NewUserHandler(userService, mealService, sessions, s.logger, s.config.SecureCookie)

	s.router.Route("/api", func(r chi.Router) {
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
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
