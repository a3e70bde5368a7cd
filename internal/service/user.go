package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sakif/daily-diet/internal/apperror"
	"github.com/sakif/daily-diet/internal/auth"
	"github.com/sakif/daily-diet/internal/model"
	"github.com/sakif/daily-diet/internal/repository"
	"github.com/sakif/daily-diet/internal/session"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// usernamePattern allows letters and dashes only. The match is done on
// the raw input; storage is lower-cased afterwards.
var usernamePattern = regexp.MustCompile(`^[A-Za-z-]+$`)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginInput carries login credentials. Exactly one of Username or Email
// identifies the account; when both are present, Username wins.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult bundles the authenticated user with the newly minted session
// token. The token is returned explicitly so the transport layer can set
// the cookie; nothing below the handlers touches cookies.
type LoginResult struct {
	User         *model.User
	SessionToken string
}

// UserService handles registration, login, and account removal.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	sessions  *session.Manager
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	sessions *session.Manager,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register validates the input, hashes the password, and creates a user
// bound to token. Validation here is independent of whatever the client
// already checked.
//
// The username is lower-cased before storage; the store enforces
// uniqueness case-insensitively, so "Alice" and "alice" conflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("a session is required")
	}

	username := strings.TrimSpace(in.Username)
	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username",
			"username must contain only letters and dashes")
	}
	username = strings.ToLower(username)

	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email must be a valid address")
	}

	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.ValidationFailed("confirmPassword", "passwords do not match")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		SessionToken: token,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// FindBySessionToken returns the user currently owning token.
func (s *UserService) FindBySessionToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("a session is required")
	}
	return s.users.GetUserBySessionToken(ctx, token)
}

// Login authenticates by username or email and, on success, mints a new
// session token and atomically moves the user's records to it. The old
// token denotes nothing afterwards.
//
// All credential failures surface as Unauthorized without distinguishing
// "no such account" from "wrong password". A failed reassign aborts the
// whole login; the old token stays valid.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)

	if username == "" && email == "" {
		return nil, apperror.Unauthorized("username or email is required")
	}
	if in.Password == "" {
		return nil, apperror.Unauthorized("password is required")
	}

	var (
		user *model.User
		err  error
	)
	if username != "" {
		user, err = s.users.GetUserByUsername(ctx, username)
	} else {
		user, err = s.users.GetUserByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	newToken, err := s.sessions.Reassign(ctx, user.SessionToken)
	if err != nil {
		s.logger.Error("login reassign failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("reassigning session: %w", err)
	}
	user.SessionToken = newToken

	s.logger.Info("user logged in",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{
		User:         user,
		SessionToken: newToken,
	}, nil
}

// Delete removes a user by id, unconditionally: no token check happens at
// this layer. Meals owned by the user's token are not cascaded; with the
// user row gone they become permanently unreachable.
func (s *UserService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return nil
}
