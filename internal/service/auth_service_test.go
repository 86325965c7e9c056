package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bankcards/internal/auth"
	"bankcards/internal/models"
	"bankcards/internal/utils"
)

func newAuthServiceForTest(userRepo *MockUserRepository, tokens *auth.TokenProvider) AuthService {
	return NewAuthService(&stubTx{}, userRepo, tokens, testLogger())
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := auth.NewTokenProvider([]byte("test-secret"), 5*time.Minute)
	svc := newAuthServiceForTest(userRepo, tokens)

	user := &models.User{
		ID:           10,
		Username:     "alice",
		PasswordHash: hashOf(t, "s3cret-pass"),
		Role:         models.RoleUser,
		Enabled:      true,
	}
	userRepo.On("FindByUsername", mock.Anything, mock.Anything, "alice").Return(user, nil)

	token, loggedIn, err := svc.Login(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", loggedIn.Username)

	// The issued token verifies and carries the stored role.
	assert.True(t, tokens.Verify(token))
	assert.Equal(t, "alice", tokens.SubjectOf(token))
	assert.Equal(t, "USER", tokens.RoleOf(token))
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthServiceForTest(userRepo, auth.NewTokenProvider([]byte("test-secret"), 5*time.Minute))

	user := &models.User{
		Username:     "alice",
		PasswordHash: hashOf(t, "s3cret-pass"),
		Role:         models.RoleUser,
		Enabled:      true,
	}
	userRepo.On("FindByUsername", mock.Anything, mock.Anything, "alice").Return(user, nil)

	_, _, err := svc.Login(context.Background(), "alice", "wrong")
	assert.True(t, utils.IsError(err, utils.ErrInvalidCredentials))
}

func TestLogin_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthServiceForTest(userRepo, auth.NewTokenProvider([]byte("test-secret"), 5*time.Minute))

	userRepo.On("FindByUsername", mock.Anything, mock.Anything, "ghost").Return(nil, utils.ErrNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	// Unknown users and wrong passwords are indistinguishable.
	assert.True(t, utils.IsError(err, utils.ErrInvalidCredentials))
}

func TestLogin_DisabledUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthServiceForTest(userRepo, auth.NewTokenProvider([]byte("test-secret"), 5*time.Minute))

	user := &models.User{
		Username:     "alice",
		PasswordHash: hashOf(t, "s3cret-pass"),
		Role:         models.RoleUser,
		Enabled:      false,
	}
	userRepo.On("FindByUsername", mock.Anything, mock.Anything, "alice").Return(user, nil)

	_, _, err := svc.Login(context.Background(), "alice", "s3cret-pass")
	assert.True(t, utils.IsError(err, utils.ErrInvalidCredentials))
}
