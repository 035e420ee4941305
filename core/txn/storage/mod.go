// Package storage defines the store of the signed transactions. The
// verification only needs the read side, the write side is used to feed the
// store.
package storage

import (
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// ErrNotFound is returned when a transaction is missing from a store.
var ErrNotFound = xerrors.New("transaction not found")

// Reader is the read side of a transaction store.
type Reader interface {
	// GetTransaction returns the transaction with the identifier. It returns
	// an error wrapping ErrNotFound if the store does not know it.
	GetTransaction(id crypto.Digest) (txn.SignedTransaction, error)
}

// Storage is a transaction store.
type Storage interface {
	Reader

	// AddTransactions stores the transactions. Storing a transaction twice is
	// not an error.
	AddTransactions(txs ...txn.SignedTransaction) error
}

// NewNotFoundError returns an error wrapping ErrNotFound for the transaction.
func NewNotFoundError(id crypto.Digest) error {
	return xerrors.Errorf("transaction %v: %w", id, ErrNotFound)
}

// IsNotFound returns true if the error is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return xerrors.Is(err, ErrNotFound)
}
