package repository

import (
	"database/sql"
	"log/slog"

	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
)

// Store is the Postgres-backed unit of work: it hands out repositories
// bound to the current executor and scopes multi-statement mutations to a
// single database transaction.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

var _ domain.Store = (*Store)(nil)

// Accounts returns an AccountRepository using the current executor
func (s *Store) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

// Entries returns an EntryRepository using the current executor
func (s *Store) Entries() domain.EntryRepository {
	return NewEntryRepository(s.executor, s.logger)
}

// WithTransaction executes a function within a database transaction.
// The transaction is rolled back if fn errors or panics, so a failed
// operation leaves no partial balance or entry state behind.
func (s *Store) WithTransaction(fn func(domain.Store) error) error {
	// Only sql.DB can begin transactions
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	txStore := &Store{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
