package domain

import (
	"time"

	"github.com/google/uuid"

	"card-ledger/internal/money"
)

type Account struct {
	ID           uuid.UUID   `json:"account_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	CardNumber   string      `json:"card_number"`
	Balance      money.Money `json:"balance"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type AccountRepository interface {
	CreateAccount(account *Account) error
	GetAccount(id uuid.UUID) (*Account, error)
	GetAccountByEmail(email string) (*Account, error)
	GetAccountByCard(cardNumber string) (*Account, error)
	// GetAccountForUpdate locks the account row until the enclosing
	// transaction ends.
	GetAccountForUpdate(id uuid.UUID) (*Account, error)
	GetAccountByCardForUpdate(cardNumber string) (*Account, error)
	UpdateAccountBalance(id uuid.UUID, newBalance money.Money) error
	UpdateAccountCard(id uuid.UUID, cardNumber string) error
	UpdateAccountPassword(id uuid.UUID, passwordHash string) error
	CardInUse(cardNumber string) (bool, error)
}
