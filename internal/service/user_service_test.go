package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bankcards/internal/models"
	"bankcards/internal/utils"
)

func newUserServiceForTest(userRepo *MockUserRepository, cardRepo *MockCardRepository) UserService {
	return NewUserService(&stubTx{}, userRepo, cardRepo, testLogger())
}

func TestUserCreate_HashesPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newUserServiceForTest(userRepo, new(MockCardRepository))

	var stored *models.User
	userRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).(*models.User)
			stored.ID = 3
		}).Return(nil)

	user, err := svc.Create(context.Background(), admin(), "bob", "s3cret-pass", models.RoleUser)
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
	assert.True(t, stored.Enabled)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, int64(3), user.ID)
}

func TestUserCreate_InvalidRoleRejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newUserServiceForTest(userRepo, new(MockCardRepository))

	_, err := svc.Create(context.Background(), admin(), "bob", "s3cret-pass", models.Role("SUPERUSER"))
	assert.True(t, utils.IsError(err, utils.ErrInvalidInput))
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserCreate_NonAdminForbidden(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newUserServiceForTest(userRepo, new(MockCardRepository))

	_, err := svc.Create(context.Background(), owner(), "bob", "s3cret-pass", models.RoleUser)
	assert.True(t, utils.IsError(err, utils.ErrForbidden))
}

func TestUserDelete_RefusedWhileOwningCards(t *testing.T) {
	userRepo := new(MockUserRepository)
	cardRepo := new(MockCardRepository)
	svc := newUserServiceForTest(userRepo, cardRepo)

	cardRepo.On("CountByOwner", mock.Anything, mock.Anything, int64(10)).Return(int64(2), nil)

	err := svc.Delete(context.Background(), admin(), 10)
	assert.True(t, utils.IsError(err, utils.ErrInvalidInput))
	userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserDelete_CardlessUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	cardRepo := new(MockCardRepository)
	svc := newUserServiceForTest(userRepo, cardRepo)

	cardRepo.On("CountByOwner", mock.Anything, mock.Anything, int64(10)).Return(int64(0), nil)
	userRepo.On("Delete", mock.Anything, mock.Anything, int64(10)).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), admin(), 10))
}

func TestUserFindByID_NotFound(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newUserServiceForTest(userRepo, new(MockCardRepository))

	userRepo.On("FindByID", mock.Anything, mock.Anything, int64(404)).Return(nil, utils.ErrNotFound)

	_, err := svc.FindByID(context.Background(), admin(), 404)
	assert.True(t, utils.IsError(err, utils.ErrNotFound))
}

func TestEnsureAdmin_SkipsExistingAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newUserServiceForTest(userRepo, new(MockCardRepository))

	userRepo.On("ExistsByUsername", mock.Anything, mock.Anything, "admin").Return(true, nil)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "admin123"))
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureAdmin_CreatesAdminRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newUserServiceForTest(userRepo, new(MockCardRepository))

	userRepo.On("ExistsByUsername", mock.Anything, mock.Anything, "admin").Return(false, nil)

	var stored *models.User
	userRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).(*models.User)
		}).Return(nil)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "admin123"))
	require.NotNil(t, stored)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.True(t, stored.Enabled)
}
