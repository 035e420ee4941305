// Package kv implements an attachment storage persisted in a key/value
// database.
package kv

import (
	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/store/kv"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

var bucketName = []byte("attachments")

// Storage is an attachment storage backed by a key/value database. Archives are
// stored as-is under their digest.
//
// - implements attachment.Storage
type Storage struct {
	db          kv.DB
	hashFactory crypto.HashFactory
}

// NewStorage returns a storage using the database.
func NewStorage(db kv.DB, f crypto.HashFactory) Storage {
	return Storage{
		db:          db,
		hashFactory: f,
	}
}

// OpenAttachment implements attachment.Storage.
func (s Storage) OpenAttachment(id crypto.Digest) (attachment.Attachment, error) {
	var data []byte

	err := s.db.View(bucketName, func(b kv.Bucket) error {
		data = b.Get(id[:])
		return nil
	})

	if err != nil && !xerrors.Is(err, kv.ErrBucketNotFound) {
		return nil, xerrors.Errorf("failed to read db: %v", err)
	}

	if data == nil {
		return nil, attachment.NotFoundError{ID: id}
	}

	a, err := attachment.NewAttachment(s.hashFactory, data)
	if err != nil {
		return nil, xerrors.Errorf("corrupted attachment %v: %v", id, err)
	}

	if a.GetID() != id {
		return nil, xerrors.Errorf("corrupted attachment %v: digest is %v", id, a.GetID())
	}

	return a, nil
}

// ImportAttachment implements attachment.Storage.
func (s Storage) ImportAttachment(data []byte) (crypto.Digest, error) {
	a, err := attachment.NewAttachment(s.hashFactory, data)
	if err != nil {
		return crypto.Digest{}, xerrors.Errorf("couldn't create attachment: %v", err)
	}

	id := a.GetID()

	err = s.db.Update(bucketName, func(b kv.Bucket) error {
		return b.Set(id[:], data)
	})
	if err != nil {
		return crypto.Digest{}, xerrors.Errorf("failed to write db: %v", err)
	}

	ledgerkit.Logger.Trace().Stringer("attachment", id).Int("size", len(data)).Msg("attachment stored")

	return id, nil
}
