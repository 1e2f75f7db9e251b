package service

// In-memory domain.Store used by the service tests. WithTransaction
// snapshots all state before running fn and restores it on error, so the
// services' atomicity contract is exercised without a database.

import (
	"github.com/google/uuid"

	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/money"
)

type memStore struct {
	accounts map[uuid.UUID]*domain.Account
	entries  []domain.Entry
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[uuid.UUID]*domain.Account)}
}

var _ domain.Store = (*memStore)(nil)

func (m *memStore) Accounts() domain.AccountRepository { return m }
func (m *memStore) Entries() domain.EntryRepository    { return m }

func (m *memStore) WithTransaction(fn func(domain.Store) error) error {
	snapshot := m.clone()
	if err := fn(m); err != nil {
		m.accounts = snapshot.accounts
		m.entries = snapshot.entries
		return err
	}
	return nil
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for id, account := range m.accounts {
		cp := *account
		c.accounts[id] = &cp
	}
	c.entries = append([]domain.Entry(nil), m.entries...)
	return c
}

func (m *memStore) CreateAccount(account *domain.Account) error {
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return errors.ErrDuplicateAccount
		}
		if existing.CardNumber == account.CardNumber {
			return errors.ErrDuplicateCard
		}
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *memStore) GetAccount(id uuid.UUID) (*domain.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *memStore) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	return m.GetAccount(id)
}

func (m *memStore) GetAccountByEmail(email string) (*domain.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			cp := *account
			return &cp, nil
		}
	}
	return nil, errors.ErrAccountNotFound
}

func (m *memStore) GetAccountByCard(cardNumber string) (*domain.Account, error) {
	for _, account := range m.accounts {
		if account.CardNumber == cardNumber {
			cp := *account
			return &cp, nil
		}
	}
	return nil, errors.ErrAccountNotFound
}

func (m *memStore) GetAccountByCardForUpdate(cardNumber string) (*domain.Account, error) {
	return m.GetAccountByCard(cardNumber)
}

func (m *memStore) UpdateAccountBalance(id uuid.UUID, newBalance money.Money) error {
	account, ok := m.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.Balance = newBalance
	return nil
}

func (m *memStore) UpdateAccountCard(id uuid.UUID, cardNumber string) error {
	for otherID, other := range m.accounts {
		if otherID != id && other.CardNumber == cardNumber {
			return errors.ErrDuplicateCard
		}
	}
	account, ok := m.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.CardNumber = cardNumber
	return nil
}

func (m *memStore) UpdateAccountPassword(id uuid.UUID, passwordHash string) error {
	account, ok := m.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

func (m *memStore) CardInUse(cardNumber string) (bool, error) {
	for _, account := range m.accounts {
		if account.CardNumber == cardNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateEntry(entry *domain.Entry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memStore) EntriesForAccount(accountID uuid.UUID) ([]domain.Entry, error) {
	var out []domain.Entry
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			out = append(out, entry)
		}
	}
	return out, nil
}
