// Package mem implements an in-memory transaction store.
package mem

import (
	"sync"

	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/core/txn/storage"
	"go.dedis.ch/ledgerkit/crypto"
)

// Storage is an in-memory transaction store. It is safe for concurrent use.
//
// - implements storage.Storage
type Storage struct {
	sync.RWMutex
	txs map[crypto.Digest]txn.SignedTransaction
}

// NewStorage returns an empty store populated with the transactions.
func NewStorage(txs ...txn.SignedTransaction) *Storage {
	s := &Storage{
		txs: make(map[crypto.Digest]txn.SignedTransaction),
	}

	s.AddTransactions(txs...)

	return s
}

// GetTransaction implements storage.Reader.
func (s *Storage) GetTransaction(id crypto.Digest) (txn.SignedTransaction, error) {
	s.RLock()
	defer s.RUnlock()

	stx, found := s.txs[id]
	if !found {
		return txn.SignedTransaction{}, storage.NewNotFoundError(id)
	}

	return stx, nil
}

// AddTransactions implements storage.Storage. It never returns an error.
func (s *Storage) AddTransactions(txs ...txn.SignedTransaction) error {
	s.Lock()
	for _, stx := range txs {
		s.txs[stx.GetID()] = stx
	}
	s.Unlock()

	return nil
}

// Len returns the number of transactions in the store.
func (s *Storage) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.txs)
}
