// Package kv implements a transaction store persisted in a key/value database.
//
// Transactions are stored in their serialized form under their identifier, so
// that the canonical bytes of the wire transaction the signatures cover are
// kept untouched.
package kv

import (
	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/store/kv"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/core/txn/storage"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

var bucketName = []byte("transactions")

// Storage is a transaction store backed by a key/value database.
//
// - implements storage.Storage
type Storage struct {
	db      kv.DB
	ctx     serde.Context
	factory txn.SignedFactory
}

// NewStorage returns a store using the database. The transactions are
// serialized with the context and deserialized with the factory.
func NewStorage(db kv.DB, ctx serde.Context, f txn.SignedFactory) Storage {
	return Storage{
		db:      db,
		ctx:     ctx,
		factory: f,
	}
}

// GetTransaction implements storage.Reader.
func (s Storage) GetTransaction(id crypto.Digest) (txn.SignedTransaction, error) {
	var data []byte

	err := s.db.View(bucketName, func(b kv.Bucket) error {
		data = b.Get(id[:])
		return nil
	})

	if err != nil && !xerrors.Is(err, kv.ErrBucketNotFound) {
		return txn.SignedTransaction{}, xerrors.Errorf("failed to read db: %v", err)
	}

	if data == nil {
		return txn.SignedTransaction{}, storage.NewNotFoundError(id)
	}

	stx, err := s.factory.SignedTransactionOf(s.ctx, data)
	if err != nil {
		return txn.SignedTransaction{}, xerrors.Errorf("corrupted transaction %v: %v", id, err)
	}

	if stx.GetID() != id {
		return txn.SignedTransaction{}, xerrors.Errorf("corrupted transaction %v: identifier is %v",
			id, stx.GetID())
	}

	return stx, nil
}

// AddTransactions implements storage.Storage. The transactions are written in
// a single database transaction.
func (s Storage) AddTransactions(txs ...txn.SignedTransaction) error {
	values := make([][]byte, len(txs))

	for i, stx := range txs {
		data, err := stx.Serialize(s.ctx)
		if err != nil {
			return xerrors.Errorf("couldn't serialize %v: %v", stx.GetID(), err)
		}

		values[i] = data
	}

	err := s.db.Update(bucketName, func(b kv.Bucket) error {
		for i, stx := range txs {
			id := stx.GetID()

			err := b.Set(id[:], values[i])
			if err != nil {
				return xerrors.Errorf("%v: %v", id, err)
			}
		}

		return nil
	})
	if err != nil {
		return xerrors.Errorf("failed to write db: %v", err)
	}

	ledgerkit.Logger.Trace().Int("count", len(txs)).Msg("transactions stored")

	return nil
}
