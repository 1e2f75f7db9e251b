package domain

// Store bundles the repositories behind one transaction boundary.
// WithTransaction runs fn against a Store whose repositories share a
// single database transaction: if fn returns an error the transaction is
// rolled back and nothing fn did is observable.
type Store interface {
	Accounts() AccountRepository
	Entries() EntryRepository
	WithTransaction(fn func(Store) error) error
}
