package service

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bankcards/internal/models"
	"bankcards/internal/repository"
	"bankcards/internal/utils"
	"bankcards/pkg/db"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, q repository.DBExecutor, user *models.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, q repository.DBExecutor, id int64) (*models.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, q repository.DBExecutor, username string) (*models.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, q repository.DBExecutor, username string) (bool, error) {
	args := m.Called(ctx, q, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, q repository.DBExecutor) ([]models.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockCardRepository is a mock implementation of repository.CardRepository.
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, q repository.DBExecutor, card *models.Card) error {
	args := m.Called(ctx, q, card)
	return args.Error(0)
}

func (m *MockCardRepository) FindByID(ctx context.Context, q repository.DBExecutor, id int64) (*models.Card, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) FindByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*models.Card, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) FindByIDAndOwner(ctx context.Context, q repository.DBExecutor, id, ownerID int64) (*models.Card, error) {
	args := m.Called(ctx, q, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) FindAllByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64, page models.PageRequest) ([]models.Card, int64, error) {
	args := m.Called(ctx, q, ownerID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Card), args.Get(1).(int64), args.Error(2)
}

func (m *MockCardRepository) FindAll(ctx context.Context, q repository.DBExecutor, page models.PageRequest) ([]models.Card, int64, error) {
	args := m.Called(ctx, q, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Card), args.Get(1).(int64), args.Error(2)
}

func (m *MockCardRepository) Update(ctx context.Context, q repository.DBExecutor, card *models.Card) error {
	args := m.Called(ctx, q, card)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockCardRepository) CountByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) (int64, error) {
	args := m.Called(ctx, q, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// stubTx stands in for *sqlx.Tx: it satisfies both db.TxController and
// repository.DBExecutor, recording the transaction outcome.
type stubTx struct {
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit() error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *stubTx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (t *stubTx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (t *stubTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *stubTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func stubBeginTx(tx *stubTx) db.BeginTxFunc {
	return func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		return tx, nil
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testCodec(t *testing.T) *utils.CryptoCodec {
	t.Helper()
	codec, err := utils.NewCryptoCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return codec
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
