package repository

import (
	"database/sql"
)

// SQLExecutor is the query surface shared by sql.DB and sql.Tx, so the
// same repository code runs inside and outside a transaction.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DB is an executor that can also open transactions.
type DB interface {
	SQLExecutor
	Begin() (*sql.Tx, error)
}

var (
	_ DB          = (*sql.DB)(nil)
	_ SQLExecutor = (*sql.Tx)(nil)
)
