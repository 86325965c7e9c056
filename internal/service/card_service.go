package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/models"
	"bankcards/internal/repository"
	"bankcards/internal/utils"
	"bankcards/pkg/db"
)

// CardService manages the card lifecycle and executes transfers.
// Every method takes the acting user explicitly; there is no ambient
// request identity.
type CardService interface {
	// User-facing operations, constrained to cards the actor owns.
	GetOwn(ctx context.Context, actor *models.User, id int64) (*models.CardView, error)
	ListOwn(ctx context.Context, actor *models.User, page models.PageRequest) (*models.Page[models.CardView], error)
	GetBalance(ctx context.Context, actor *models.User, id int64) (decimal.Decimal, error)
	Transfer(ctx context.Context, actor *models.User, fromCardID, toCardID int64, amount decimal.Decimal) error

	// Admin operations.
	CreateForUser(ctx context.Context, actor *models.User, ownerID int64, cardNumber string, expiration models.Date) (*models.CardView, error)
	Activate(ctx context.Context, actor *models.User, id int64) (*models.CardView, error)
	Block(ctx context.Context, actor *models.User, id int64) (*models.CardView, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	ListAll(ctx context.Context, actor *models.User, page models.PageRequest) (*models.Page[models.CardView], error)
}

type cardService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	cardRepo   repository.CardRepository
	codec      *utils.CryptoCodec
	log        *logrus.Logger
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewCardService creates a new CardService.
func NewCardService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	cardRepo repository.CardRepository,
	codec *utils.CryptoCodec,
	log *logrus.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) CardService {
	return &cardService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		cardRepo:   cardRepo,
		codec:      codec,
		log:        log,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// GetOwn retrieves one of the actor's cards. A card owned by somebody
// else is indistinguishable from a card that does not exist.
func (s *cardService) GetOwn(ctx context.Context, actor *models.User, id int64) (*models.CardView, error) {
	card, err := s.cardRepo.FindByIDAndOwner(ctx, s.dbExecutor, id, actor.ID)
	if err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("card not found: %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return s.toView(card), nil
}

// ListOwn retrieves a page of the actor's cards.
func (s *cardService) ListOwn(ctx context.Context, actor *models.User, page models.PageRequest) (*models.Page[models.CardView], error) {
	cards, total, err := s.cardRepo.FindAllByOwner(ctx, s.dbExecutor, actor.ID, page)
	if err != nil {
		return nil, err
	}
	return s.toPage(cards, total, page), nil
}

// GetBalance returns the balance of a card the actor owns.
func (s *cardService) GetBalance(ctx context.Context, actor *models.User, id int64) (decimal.Decimal, error) {
	card, err := s.getOwnedCard(ctx, s.dbExecutor, actor, id)
	if err != nil {
		return decimal.Zero, err
	}
	return card.Balance, nil
}

// Transfer moves money between two cards owned by the actor. Both
// balance updates commit as one transaction; row locks are taken in
// ascending card-id order so concurrent transfers over the same pair
// cannot deadlock.
func (s *cardService) Transfer(ctx context.Context, actor *models.User, fromCardID, toCardID int64, amount decimal.Decimal) error {
	if fromCardID == toCardID {
		return fmt.Errorf("source and destination cards must differ: %w", utils.ErrInvalidInput)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive: %w", utils.ErrInvalidInput)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	// Locks are acquired in ascending card-id order to prevent deadlock,
	// but outcomes are evaluated source-first: the caller learns about
	// the source card before the destination is ever considered.
	locked := make(map[int64]*models.Card, 2)
	lockErr := make(map[int64]error, 2)
	for _, id := range lockOrder(fromCardID, toCardID) {
		card, err := s.cardRepo.FindByIDForUpdate(ctx, txExecutor, id)
		if err != nil {
			lockErr[id] = err
			continue
		}
		locked[id] = card
	}
	for _, id := range []int64{fromCardID, toCardID} {
		if err := lockErr[id]; err != nil {
			if utils.IsError(err, utils.ErrNotFound) {
				return fmt.Errorf("card not found: %d: %w", id, utils.ErrNotFound)
			}
			return fmt.Errorf("transfer: failed to lock card %d: %w", id, err)
		}
		if locked[id].OwnerID != actor.ID {
			return fmt.Errorf("card %d does not belong to you: %w", id, utils.ErrForbidden)
		}
	}

	from, to := locked[fromCardID], locked[toCardID]
	// Combined check so the error does not reveal which side is inactive.
	if from.Status != models.CardStatusActive || to.Status != models.CardStatusActive {
		return fmt.Errorf("both cards must be active: %w", utils.ErrInvalidInput)
	}
	if from.Balance.LessThan(amount) {
		return fmt.Errorf("insufficient funds: %w", utils.ErrInsufficientFunds)
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	if err := s.cardRepo.Update(ctx, txExecutor, from); err != nil {
		return fmt.Errorf("transfer: failed to update source card: %w", err)
	}
	if err := s.cardRepo.Update(ctx, txExecutor, to); err != nil {
		return fmt.Errorf("transfer: failed to update destination card: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	s.log.Infof("Transfer completed: %s from card %d to card %d", amount, fromCardID, toCardID)
	return nil
}

// CreateForUser creates a card for the given owner. New cards start
// BLOCKED with a zero balance and must be activated explicitly.
func (s *cardService) CreateForUser(ctx context.Context, actor *models.User, ownerID int64, cardNumber string, expiration models.Date) (*models.CardView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	owner, err := s.userRepo.FindByID(ctx, s.dbExecutor, ownerID)
	if err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %d: %w", ownerID, utils.ErrNotFound)
		}
		return nil, err
	}

	encrypted, err := s.codec.Encrypt(cardNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt card number: %w", err)
	}

	card := &models.Card{
		EncryptedNumber: encrypted,
		OwnerID:         owner.ID,
		ExpirationDate:  expiration,
		Status:          models.CardStatusBlocked,
		Balance:         decimal.Zero,
	}
	if err := s.cardRepo.Create(ctx, s.dbExecutor, card); err != nil {
		return nil, err
	}

	s.log.Infof("Card created for user %d", owner.ID)
	return s.toView(card), nil
}

// Activate sets the card status to ACTIVE. Activating an already active
// card succeeds without effect.
func (s *cardService) Activate(ctx context.Context, actor *models.User, id int64) (*models.CardView, error) {
	return s.setStatus(ctx, actor, id, models.CardStatusActive)
}

// Block sets the card status to BLOCKED. Blocking an already blocked
// card succeeds without effect.
func (s *cardService) Block(ctx context.Context, actor *models.User, id int64) (*models.CardView, error) {
	return s.setStatus(ctx, actor, id, models.CardStatusBlocked)
}

func (s *cardService) setStatus(ctx context.Context, actor *models.User, id int64, status models.CardStatus) (*models.CardView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	card, err := s.cardRepo.FindByID(ctx, s.dbExecutor, id)
	if err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("card not found: %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	card.Status = status
	if err := s.cardRepo.Update(ctx, s.dbExecutor, card); err != nil {
		return nil, err
	}
	s.log.Infof("Card %d status set to %s", id, status)
	return s.toView(card), nil
}

// Delete removes a card unconditionally.
func (s *cardService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.cardRepo.Delete(ctx, s.dbExecutor, id); err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return fmt.Errorf("card not found: %d: %w", id, utils.ErrNotFound)
		}
		return err
	}
	s.log.Infof("Card deleted: %d", id)
	return nil
}

// ListAll retrieves a page of every card in the system.
func (s *cardService) ListAll(ctx context.Context, actor *models.User, page models.PageRequest) (*models.Page[models.CardView], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	cards, total, err := s.cardRepo.FindAll(ctx, s.dbExecutor, page)
	if err != nil {
		return nil, err
	}
	return s.toPage(cards, total, page), nil
}

// getOwnedCard resolves a card and verifies ownership. Unlike GetOwn it
// distinguishes a missing card from a foreign one.
func (s *cardService) getOwnedCard(ctx context.Context, q repository.DBExecutor, actor *models.User, id int64) (*models.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, q, id)
	if err != nil {
		if utils.IsError(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("card not found: %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	if card.OwnerID != actor.ID {
		return nil, fmt.Errorf("card %d does not belong to you: %w", id, utils.ErrForbidden)
	}
	return card, nil
}

// toView decrypts and immediately masks the card number. The plaintext
// exists only inside this conversion.
func (s *cardService) toView(card *models.Card) *models.CardView {
	number := s.codec.Decrypt(card.EncryptedNumber)
	return &models.CardView{
		ID:               card.ID,
		MaskedCardNumber: utils.MaskCardNumber(number),
		ExpirationDate:   card.ExpirationDate,
		Status:           card.Status,
		Balance:          card.Balance,
	}
}

func (s *cardService) toPage(cards []models.Card, total int64, page models.PageRequest) *models.Page[models.CardView] {
	views := make([]models.CardView, 0, len(cards))
	for i := range cards {
		views = append(views, *s.toView(&cards[i]))
	}
	return &models.Page[models.CardView]{
		Content:       views,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
	}
}

func lockOrder(a, b int64) [2]int64 {
	if b < a {
		a, b = b, a
	}
	return [2]int64{a, b}
}
