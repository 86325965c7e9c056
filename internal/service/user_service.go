package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bankcards/internal/models"
	"bankcards/internal/repository"
	"bankcards/internal/utils"
)

// UserService provides admin-only identity management. Users never
// self-register; every account is created by an administrator.
type UserService interface {
	Create(ctx context.Context, actor *models.User, username, password string, role models.Role) (*models.User, error)
	FindAll(ctx context.Context, actor *models.User) ([]models.User, error)
	FindByID(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	// EnsureAdmin creates the bootstrap admin account unless the
	// username is already taken.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type userService struct {
	db       repository.DBExecutor
	userRepo repository.UserRepository
	cardRepo repository.CardRepository
	log      *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(db repository.DBExecutor, userRepo repository.UserRepository, cardRepo repository.CardRepository, log *logrus.Logger) UserService {
	return &userService{db: db, userRepo: userRepo, cardRepo: cardRepo, log: log}
}

// Create registers a new user with a hashed password.
func (s *userService) Create(ctx context.Context, actor *models.User, username, password string, role models.Role) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, utils.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
		Enabled:      true,
	}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		return nil, err
	}

	s.log.Infof("User created: %s (%s)", user.Username, user.Role)
	return user, nil
}

// FindAll lists every user.
func (s *userService) FindAll(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.userRepo.FindAll(ctx, s.db)
}

// FindByID retrieves one user.
func (s *userService) FindByID(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, s.db, id)
	if err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Deletion is refused while the user still owns
// cards; cards must be deleted or reassigned first.
func (s *userService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	owned, err := s.cardRepo.CountByOwner(ctx, s.db, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return fmt.Errorf("user %d still owns %d cards: %w", id, owned, utils.ErrInvalidInput)
	}
	if err := s.userRepo.Delete(ctx, s.db, id); err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return fmt.Errorf("user not found: %d: %w", id, utils.ErrNotFound)
		}
		return err
	}
	s.log.Infof("User deleted: %d", id)
	return nil
}

// EnsureAdmin seeds the initial admin account on startup.
func (s *userService) EnsureAdmin(ctx context.Context, username, password string) error {
	exists, err := s.userRepo.ExistsByUsername(ctx, s.db, username)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
		Enabled:      true,
	}
	if err := s.userRepo.Create(ctx, s.db, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	s.log.Infof("Bootstrap admin created: %s", username)
	return nil
}

func requireAdmin(actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return fmt.Errorf("admin role required: %w", utils.ErrForbidden)
	}
	return nil
}
