package models

import "github.com/shopspring/decimal"

// CardStatus is the lifecycle state of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	// CardStatusExpired is stored but never set by any operation; rows
	// carrying it can only originate from direct data manipulation.
	CardStatusExpired CardStatus = "EXPIRED"
)

// Valid reports whether s is one of the known statuses.
func (s CardStatus) Valid() bool {
	return s == CardStatusActive || s == CardStatusBlocked || s == CardStatusExpired
}

// Card represents a bank card
type Card struct {
	ID              int64           `db:"id"`
	EncryptedNumber string          `db:"encrypted_card_number"`
	OwnerID         int64           `db:"owner_id"`
	ExpirationDate  Date            `db:"expiration_date"`
	Status          CardStatus      `db:"status"`
	Balance         decimal.Decimal `db:"balance"`
}

// CardView is the external projection of a Card. The card number is
// decrypted and masked during conversion; plaintext never leaves it.
type CardView struct {
	ID               int64           `json:"id"`
	MaskedCardNumber string          `json:"masked_card_number"`
	ExpirationDate   Date            `json:"expiration_date"`
	Status           CardStatus      `json:"status"`
	Balance          decimal.Decimal `json:"balance"`
}
