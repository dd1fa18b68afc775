package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/librarylab/library-backend/internal/apperr"
	"github.com/librarylab/library-backend/internal/auth"
	"github.com/librarylab/library-backend/internal/models"
	repo "github.com/librarylab/library-backend/internal/repository"
)

type UserService struct {
	r  repo.Users
	tm *auth.TokenManager
}

func NewUserService(r repo.Users, tm *auth.TokenManager) *UserService {
	return &UserService{r: r, tm: tm}
}

// Register stores a new user with a bcrypt hash and returns the user plus a
// signed token, so registration doubles as a first login.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, string, error) {
	username = strings.TrimSpace(username)
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, "", err
	}
	u, err := s.r.Create(ctx, username, hash)
	if err != nil {
		return models.User{}, "", err
	}
	token, _, err := s.tm.Issue(u.ID, u.Username)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

// Login reports the same failure for an unknown username and a wrong
// password.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, string, error) {
	u, err := s.r.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil || auth.VerifyPassword(password, u.PasswordHash) != nil {
		return models.User{}, "", apperr.Unauthorized("invalid username or password")
	}
	token, _, err := s.tm.Issue(u.ID, u.Username)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

// EnsureAdmin creates the bootstrap account named in configuration when it
// does not exist yet. A no-op when the knobs are unset.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.r.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if _, _, err := s.Register(ctx, username, password); err != nil {
		return err
	}
	slog.Info("bootstrap admin created", "username", username)
	return nil
}
