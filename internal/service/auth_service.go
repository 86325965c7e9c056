package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bankcards/internal/auth"
	"bankcards/internal/models"
	"bankcards/internal/repository"
	"bankcards/internal/utils"
)

// AuthService verifies credentials and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}

type authService struct {
	db       repository.DBExecutor
	userRepo repository.UserRepository
	tokens   *auth.TokenProvider
	log      *logrus.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(db repository.DBExecutor, userRepo repository.UserRepository, tokens *auth.TokenProvider, log *logrus.Logger) AuthService {
	return &authService{db: db, userRepo: userRepo, tokens: tokens, log: log}
}

// Login authenticates a user and returns a signed token. Unknown
// usernames, disabled accounts and wrong passwords are indistinguishable
// to the caller.
func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, s.db, username)
	if err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return "", nil, utils.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: failed to look up user: %w", err)
	}
	if !user.Enabled {
		return "", nil, utils.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("login: failed to issue token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return token, user, nil
}
