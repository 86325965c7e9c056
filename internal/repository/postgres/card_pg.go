package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bankcards/internal/models"
	"bankcards/internal/repository"
	"bankcards/internal/utils"
)

const cardColumns = `id, encrypted_card_number, owner_id, expiration_date, status, balance`

// CardRepository implements repository.CardRepository for PostgreSQL.
type CardRepository struct{}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db *sqlx.DB) repository.CardRepository {
	return &CardRepository{}
}

// Create inserts a new card. The unique constraint on
// encrypted_card_number surfaces as ErrDuplicateEntry.
func (r *CardRepository) Create(ctx context.Context, q repository.DBExecutor, card *models.Card) error {
	query := `INSERT INTO cards (encrypted_card_number, owner_id, expiration_date, status, balance)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		card.EncryptedNumber, card.OwnerID, card.ExpirationDate, card.Status, card.Balance).Scan(&card.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("card number already stored: %w", utils.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// FindByID retrieves a card by ID.
func (r *CardRepository) FindByID(ctx context.Context, q repository.DBExecutor, id int64) (*models.Card, error) {
	return r.getCard(ctx, q, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves a card by ID and locks its row for the
// duration of the surrounding transaction.
func (r *CardRepository) FindByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*models.Card, error) {
	return r.getCard(ctx, q, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
}

// FindByIDAndOwner retrieves a card only if it belongs to the owner.
func (r *CardRepository) FindByIDAndOwner(ctx context.Context, q repository.DBExecutor, id, ownerID int64) (*models.Card, error) {
	return r.getCard(ctx, q, `SELECT `+cardColumns+` FROM cards WHERE id = $1 AND owner_id = $2`, id, ownerID)
}

func (r *CardRepository) getCard(ctx context.Context, q repository.DBExecutor, query string, args ...interface{}) (*models.Card, error) {
	var card models.Card
	if err := q.GetContext(ctx, &card, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// FindAllByOwner retrieves a page of the owner's cards and the total count.
func (r *CardRepository) FindAllByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64, page models.PageRequest) ([]models.Card, int64, error) {
	cards := []models.Card{}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &cards, query, ownerID, page.Limit(), page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list cards for owner %d: %w", ownerID, err)
	}
	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM cards WHERE owner_id = $1`, ownerID); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards for owner %d: %w", ownerID, err)
	}
	return cards, total, nil
}

// FindAll retrieves a page of all cards and the total count.
func (r *CardRepository) FindAll(ctx context.Context, q repository.DBExecutor, page models.PageRequest) ([]models.Card, int64, error) {
	cards := []models.Card{}
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY id LIMIT $1 OFFSET $2`
	if err := q.SelectContext(ctx, &cards, query, page.Limit(), page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM cards`); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return cards, total, nil
}

// Update persists the card's mutable fields.
func (r *CardRepository) Update(ctx context.Context, q repository.DBExecutor, card *models.Card) error {
	result, err := q.ExecContext(ctx,
		`UPDATE cards SET status = $1, balance = $2 WHERE id = $3`,
		card.Status, card.Balance, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", card.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating card %d: %w", card.ID, err)
	}
	if affected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// Delete removes a card by ID.
func (r *CardRepository) Delete(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected deleting card %d: %w", id, err)
	}
	if affected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// CountByOwner returns how many cards the owner holds.
func (r *CardRepository) CountByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) (int64, error) {
	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM cards WHERE owner_id = $1`, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count cards for owner %d: %w", ownerID, err)
	}
	return total, nil
}
