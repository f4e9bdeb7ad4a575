// Package service contains the business logic layer of the blog.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses forms, renders views, redirects
//	Service (Business layer) → validates, checks credentials, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and return domain errors (apperror). They know
// nothing about cookies, status codes or templates, so the same rules apply
// no matter which handler calls them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/markdown-blog/internal/apperror"
	"github.com/sakif/markdown-blog/internal/auth"
	"github.com/sakif/markdown-blog/internal/model"
	"github.com/sakif/markdown-blog/internal/repository"
)

// Messages shown back on the signup and login forms.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgUsernameTaken       = "Username taken"
	MsgUnknownUser         = "Non existent user"
	MsgIncorrectPassword   = "Incorrect password"
)

// AuthService handles account creation and credential checks.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users   repository.UserRepository → read/write user records
//   - hasher  *auth.PasswordHasher      → salt generation and PBKDF2 hashing
//   - logger  *slog.Logger              → structured logging
type AuthService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Signup creates a new account with a freshly salted password hash.
//
// Username uniqueness is checked twice: once up front so the common case
// never pays for hashing, and again by the UNIQUE constraint, which is the
// one that actually holds when two signups for the same name race.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", MsgCredentialsRequired)
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, usernameTaken()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("looking up username: %w", err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	hash, err := s.hasher.Hash(password, salt)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, usernameTaken()
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user signed up",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks username and password and returns the matching user.
//
// The two failure messages are distinct ("Non existent user" vs
// "Incorrect password"), so the form reveals whether a username exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", MsgCredentialsRequired)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("username", MsgUnknownUser)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.Salt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password for user %d: %w", user.ID, err)
	}
	if !ok {
		s.logger.Debug("login rejected", slog.Int64("user_id", user.ID))
		return nil, apperror.Unauthenticated("password", MsgIncorrectPassword)
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return user, nil
}

// UserByID resolves the user behind a session.
func (s *AuthService) UserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting user %s: %w", strconv.FormatInt(id, 10), err)
	}
	return user, nil
}

func usernameTaken() *apperror.AppError {
	return &apperror.AppError{
		Err:     apperror.ErrConflict,
		Message: MsgUsernameTaken,
		Field:   "username",
	}
}
