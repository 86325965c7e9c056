package repository

import (
	"context"
	"database/sql"

	"bankcards/internal/models"
)

// DBExecutor is the common set of database operations repositories need.
// Both *sqlx.DB and *sqlx.Tx satisfy it, so the same repository method
// runs inside or outside a transaction depending on what it is handed.
type DBExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// UserRepository provides identity lookup and administration.
type UserRepository interface {
	Create(ctx context.Context, q DBExecutor, user *models.User) error
	FindByID(ctx context.Context, q DBExecutor, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, q DBExecutor, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, q DBExecutor, username string) (bool, error)
	FindAll(ctx context.Context, q DBExecutor) ([]models.User, error)
	Delete(ctx context.Context, q DBExecutor, id int64) error
}

// CardRepository is the card store.
type CardRepository interface {
	Create(ctx context.Context, q DBExecutor, card *models.Card) error
	FindByID(ctx context.Context, q DBExecutor, id int64) (*models.Card, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*models.Card, error)
	FindByIDAndOwner(ctx context.Context, q DBExecutor, id, ownerID int64) (*models.Card, error)
	FindAllByOwner(ctx context.Context, q DBExecutor, ownerID int64, page models.PageRequest) ([]models.Card, int64, error)
	FindAll(ctx context.Context, q DBExecutor, page models.PageRequest) ([]models.Card, int64, error)
	// Update persists the card's mutable fields (status and balance).
	Update(ctx context.Context, q DBExecutor, card *models.Card) error
	Delete(ctx context.Context, q DBExecutor, id int64) error
	CountByOwner(ctx context.Context, q DBExecutor, ownerID int64) (int64, error)
}
