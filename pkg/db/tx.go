package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// TxController controls the outcome of a database transaction.
// *sqlx.Tx implements it.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner begins transactions. *sqlx.DB implements it.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Function types so services can take transaction control as injected
// dependencies and tests can substitute them.
type (
	BeginTxFunc    func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// BeginTx starts a new database transaction.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. Rolling back an already
// committed transaction is a no-op.
func RollbackTx(tx TxController) {
	_ = tx.Rollback()
}
