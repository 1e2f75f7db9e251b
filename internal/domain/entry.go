package domain

import (
	"time"

	"github.com/google/uuid"

	"card-ledger/internal/money"
)

// Entry is one immutable, append-only record of a balance change.
// Amount is signed from the owning account's perspective: positive is a
// credit, negative a debit. ResultingBalance is a point-in-time snapshot
// taken when the entry was written, never recomputed.
type Entry struct {
	ID               uuid.UUID   `json:"id"`
	AccountID        uuid.UUID   `json:"account_id"`
	Amount           money.Money `json:"amount"`
	Counterparty     string      `json:"counterparty"`
	ResultingBalance money.Money `json:"resulting_balance"`
	CreatedAt        time.Time   `json:"created_at"`
}

type EntryRepository interface {
	CreateEntry(entry *Entry) error
	// EntriesForAccount returns the account's full log, oldest first.
	EntriesForAccount(accountID uuid.UUID) ([]Entry, error)
}
