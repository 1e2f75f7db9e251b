package repository

import (
	"log/slog"

	"github.com/google/uuid"

	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/money"
)

type entryRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewEntryRepository(db SQLExecutor, logger *slog.Logger) domain.EntryRepository {
	return &entryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *entryRepository) CreateEntry(entry *domain.Entry) error {
	query := `
		INSERT INTO entries
		(id, account_id, amount, counterparty, resulting_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		entry.ID,
		entry.AccountID,
		entry.Amount.String(),
		entry.Counterparty,
		entry.ResultingBalance.String(),
		entry.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create ledger entry",
			"account_id", entry.AccountID,
			"amount", entry.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to create ledger entry").WithDetails(err.Error())
	}

	r.logger.Info("Ledger entry created", "entry_id", entry.ID, "account_id", entry.AccountID)
	return nil
}

func (r *entryRepository) EntriesForAccount(accountID uuid.UUID) ([]domain.Entry, error) {
	query := `
		SELECT id, account_id, amount, counterparty, resulting_balance, created_at
		FROM entries WHERE account_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list ledger entries").WithDetails(err.Error())
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		var amountStr, balanceStr string

		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&amountStr,
			&entry.Counterparty,
			&balanceStr,
			&entry.CreatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan ledger entry").WithDetails(err.Error())
		}

		if entry.Amount, err = money.FromString(amountStr); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse entry amount").WithDetails(err.Error())
		}
		if entry.ResultingBalance, err = money.FromString(balanceStr); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse resulting balance").WithDetails(err.Error())
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to read ledger entries").WithDetails(err.Error())
	}

	return entries, nil
}
