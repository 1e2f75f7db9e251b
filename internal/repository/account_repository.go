package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/money"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = `id, name, email, password_hash, card_number, balance, created_at, updated_at`

func (r *accountRepository) CreateAccount(account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, card_number, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(
		query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.CardNumber,
		account.Balance.String(),
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				if pqErr.Constraint == "accounts_card_number_key" {
					r.logger.Warn("Card number already assigned", "card_number", account.CardNumber)
					return errors.ErrDuplicateCard
				}
				r.logger.Warn("Duplicate account creation attempt", "email", account.Email)
				return errors.ErrDuplicateAccount
			}
		}
		r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID)
	return nil
}

func (r *accountRepository) GetAccount(id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	return r.scanAccount(query, id)
}

func (r *accountRepository) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	return r.scanAccount(query, id)
}

func (r *accountRepository) GetAccountByEmail(email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	return r.scanAccount(query, email)
}

func (r *accountRepository) GetAccountByCard(cardNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE card_number = $1`

	return r.scanAccount(query, cardNumber)
}

func (r *accountRepository) GetAccountByCardForUpdate(cardNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE card_number = $1 FOR UPDATE`

	return r.scanAccount(query, cardNumber)
}

func (r *accountRepository) scanAccount(query string, arg interface{}) (*domain.Account, error) {
	var account domain.Account
	var balanceStr string

	err := r.db.QueryRow(query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.CardNumber,
		&balanceStr,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account not found", "arg", arg)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "arg", arg, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	balance, err := money.FromString(balanceStr)
	if err != nil {
		r.logger.Error("Failed to parse balance", "account_id", account.ID, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	account.Balance = balance
	return &account, nil
}

func (r *accountRepository) UpdateAccountBalance(id uuid.UUID, newBalance money.Money) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, newBalance.String(), time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update account balance", "account_id", id, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update account balance").WithDetails(err.Error())
	}

	return r.requireRow(result, id)
}

func (r *accountRepository) UpdateAccountCard(id uuid.UUID, cardNumber string) error {
	query := `
		UPDATE accounts
		SET card_number = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, cardNumber, time.Now().UTC(), id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.logger.Warn("Card number already assigned", "card_number", cardNumber)
			return errors.ErrDuplicateCard
		}
		r.logger.Error("Failed to update card number", "account_id", id, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update card number").WithDetails(err.Error())
	}

	return r.requireRow(result, id)
}

func (r *accountRepository) UpdateAccountPassword(id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update password hash", "account_id", id, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update password hash").WithDetails(err.Error())
	}

	return r.requireRow(result, id)
}

func (r *accountRepository) CardInUse(cardNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE card_number = $1)`

	var inUse bool
	if err := r.db.QueryRow(query, cardNumber).Scan(&inUse); err != nil {
		r.logger.Error("Failed to check card number", "card_number", cardNumber, "error", err)
		return false, errors.NewAppError(errors.InternalError, "failed to check card number").WithDetails(err.Error())
	}
	return inUse, nil
}

func (r *accountRepository) requireRow(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_id", id)
		return errors.ErrAccountNotFound
	}
	return nil
}
