package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"card-ledger/internal/card"
	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/money"
)

// Counterparty labels for externally sourced funds. ATM operations log a
// single entry; inter-account transfers always log a pair.
const (
	depositLabel  = "ATM Deposit"
	withdrawLabel = "ATM Withdraw"
)

// LedgerService owns every balance mutation. Each operation runs inside
// one store transaction, so the balance change and its ledger entries
// commit together or not at all.
type LedgerService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewLedgerService(store domain.Store, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		logger: logger,
	}
}

// ATMOperation is the shared shape of Deposit and Withdraw, used by the
// API layer to route both through one code path.
type ATMOperation = func(uuid.UUID, money.Money) (*domain.Account, *domain.Entry, error)

// TransferResult reports both sides of a completed transfer. The two
// entries carry exactly negated amounts and share one timestamp.
type TransferResult struct {
	Payer      *domain.Account
	Payee      *domain.Account
	PayerEntry *domain.Entry
	PayeeEntry *domain.Entry
}

// Deposit credits the account and appends one entry labeled as an
// external deposit.
func (s *LedgerService) Deposit(accountID uuid.UUID, amount money.Money) (*domain.Account, *domain.Entry, error) {
	if !amount.IsPositive() {
		return nil, nil, errors.ErrInvalidAmount
	}

	var account *domain.Account
	var entry *domain.Entry

	err := s.store.WithTransaction(func(store domain.Store) error {
		var err error
		account, err = store.Accounts().GetAccountForUpdate(accountID)
		if err != nil {
			return err
		}

		account.Balance = account.Balance.Add(amount)
		if err := store.Accounts().UpdateAccountBalance(account.ID, account.Balance); err != nil {
			return err
		}

		entry, err = appendEntry(store, account, amount, depositLabel, time.Now().UTC())
		return err
	})

	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Deposit completed", "account_id", accountID, "amount", amount, "balance", account.Balance)
	return account, entry, nil
}

// Withdraw debits the account, failing if the amount exceeds the current
// balance. The single entry carries the negated amount.
func (s *LedgerService) Withdraw(accountID uuid.UUID, amount money.Money) (*domain.Account, *domain.Entry, error) {
	if !amount.IsPositive() {
		return nil, nil, errors.ErrInvalidAmount
	}

	var account *domain.Account
	var entry *domain.Entry

	err := s.store.WithTransaction(func(store domain.Store) error {
		var err error
		account, err = store.Accounts().GetAccountForUpdate(accountID)
		if err != nil {
			return err
		}

		if account.Balance.LessThan(amount) {
			return errors.ErrInsufficientBalance
		}

		account.Balance = account.Balance.Sub(amount)
		if err := store.Accounts().UpdateAccountBalance(account.ID, account.Balance); err != nil {
			return err
		}

		entry, err = appendEntry(store, account, amount.Neg(), withdrawLabel, time.Now().UTC())
		return err
	})

	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Withdrawal completed", "account_id", accountID, "amount", amount, "balance", account.Balance)
	return account, entry, nil
}

// Charge pulls funds from the account holding payerCard into the payee's
// account. Check order: amount sign, payer card lookup, payer balance.
func (s *LedgerService) Charge(payeeID uuid.UUID, amount money.Money, payerCard string) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	var result *TransferResult
	err := s.store.WithTransaction(func(store domain.Store) error {
		// Resolve the card before anything else so a missing payer is
		// reported ahead of balance problems.
		payer, err := store.Accounts().GetAccountByCard(payerCard)
		if err != nil {
			return err
		}
		if payer.ID == payeeID {
			return errors.NewAppError(errors.InvalidInput, "cannot transfer to the same account")
		}

		payer, payee, err := lockPair(store, payer.ID, payeeID)
		if err != nil {
			return err
		}

		if payer.Balance.LessThan(amount) {
			return errors.ErrInsufficientBalance
		}

		result, err = transfer(store, payer, payee, amount)
		return err
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Charge completed",
		"payer_id", result.Payer.ID,
		"payee_id", result.Payee.ID,
		"amount", amount)
	return result, nil
}

// Send pushes funds from the sender's account to the account holding
// payeeCard. Unlike Charge, the sender's balance is checked before the
// recipient lookup.
func (s *LedgerService) Send(senderID uuid.UUID, amount money.Money, payeeCard string) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	var result *TransferResult
	err := s.store.WithTransaction(func(store domain.Store) error {
		// Resolve the card up front so both rows can be locked in a
		// stable order, but report a missing recipient only after the
		// sender's balance has been checked.
		var sender, payee *domain.Account
		resolved, lookupErr := store.Accounts().GetAccountByCard(payeeCard)
		switch {
		case lookupErr == nil:
			var err error
			sender, payee, err = lockPair(store, senderID, resolved.ID)
			if err != nil {
				return err
			}
		case isNotFound(lookupErr):
			var err error
			sender, err = store.Accounts().GetAccountForUpdate(senderID)
			if err != nil {
				return err
			}
		default:
			return lookupErr
		}

		if sender.Balance.LessThan(amount) {
			return errors.ErrInsufficientBalance
		}
		if lookupErr != nil {
			return lookupErr
		}
		if payee.ID == sender.ID {
			return errors.NewAppError(errors.InvalidInput, "cannot transfer to the same account")
		}

		var err error
		result, err = transfer(store, sender, payee, amount)
		return err
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Send completed",
		"payer_id", result.Payer.ID,
		"payee_id", result.Payee.ID,
		"amount", amount)
	return result, nil
}

// UpdateCard replaces the account's card identifier. The new number must
// carry a valid Luhn check digit and not belong to another account. No
// balance effect and no ledger entry.
func (s *LedgerService) UpdateCard(accountID uuid.UUID, newCard string) (*domain.Account, error) {
	if !card.Validate(newCard) {
		return nil, errors.NewAppError(errors.InvalidInput, "card number fails checksum validation")
	}

	var account *domain.Account
	err := s.store.WithTransaction(func(store domain.Store) error {
		var err error
		account, err = store.Accounts().GetAccountForUpdate(accountID)
		if err != nil {
			return err
		}
		if account.CardNumber == newCard {
			return nil
		}
		if err := store.Accounts().UpdateAccountCard(account.ID, newCard); err != nil {
			return err
		}
		account.CardNumber = newCard
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Card number updated", "account_id", accountID)
	return account, nil
}

// EntriesFor returns the account's full ledger, oldest first.
func (s *LedgerService) EntriesFor(accountID uuid.UUID) ([]domain.Entry, error) {
	if _, err := s.store.Accounts().GetAccount(accountID); err != nil {
		return nil, err
	}
	return s.store.Entries().EntriesForAccount(accountID)
}

// transfer moves amount from payer to payee and writes the entry pair.
// Callers have already locked both rows and checked the payer's balance.
func transfer(store domain.Store, payer, payee *domain.Account, amount money.Money) (*TransferResult, error) {
	payer.Balance = payer.Balance.Sub(amount)
	payee.Balance = payee.Balance.Add(amount)

	if err := store.Accounts().UpdateAccountBalance(payer.ID, payer.Balance); err != nil {
		return nil, err
	}
	if err := store.Accounts().UpdateAccountBalance(payee.ID, payee.Balance); err != nil {
		return nil, err
	}

	// Both entries share one logical timestamp.
	now := time.Now().UTC()
	payerEntry, err := appendEntry(store, payer, amount.Neg(), payee.Name, now)
	if err != nil {
		return nil, err
	}
	payeeEntry, err := appendEntry(store, payee, amount, payer.Name, now)
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		Payer:      payer,
		Payee:      payee,
		PayerEntry: payerEntry,
		PayeeEntry: payeeEntry,
	}, nil
}

func isNotFound(err error) bool {
	appErr, ok := err.(*errors.AppError)
	return ok && appErr.Code == errors.AccountNotFound
}

// lockPair locks two account rows in a stable order so concurrent
// transfers touching the same pair cannot deadlock.
func lockPair(store domain.Store, aID, bID uuid.UUID) (*domain.Account, *domain.Account, error) {
	firstID, secondID := aID, bID
	if bID.String() < aID.String() {
		firstID, secondID = bID, aID
	}

	first, err := store.Accounts().GetAccountForUpdate(firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := store.Accounts().GetAccountForUpdate(secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == aID {
		return first, second, nil
	}
	return second, first, nil
}

// appendEntry records one signed balance change for the account. The
// account's Balance field must already hold the post-change value; it is
// snapshotted into the entry as the resulting balance.
func appendEntry(store domain.Store, account *domain.Account, amount money.Money, counterparty string, at time.Time) (*domain.Entry, error) {
	entry := &domain.Entry{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Amount:           amount,
		Counterparty:     counterparty,
		ResultingBalance: account.Balance,
		CreatedAt:        at,
	}
	if err := store.Entries().CreateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}
