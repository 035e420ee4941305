// Package mem implements an in-memory attachment storage.
package mem

import (
	"sync"

	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// Storage is an in-memory attachment storage. It is safe for concurrent use.
//
// - implements attachment.Storage
type Storage struct {
	sync.RWMutex
	hashFactory crypto.HashFactory
	attachments map[crypto.Digest]attachment.Attachment
}

// NewStorage returns a new empty storage.
func NewStorage(f crypto.HashFactory) *Storage {
	return &Storage{
		hashFactory: f,
		attachments: make(map[crypto.Digest]attachment.Attachment),
	}
}

// OpenAttachment implements attachment.Storage.
func (s *Storage) OpenAttachment(id crypto.Digest) (attachment.Attachment, error) {
	s.RLock()
	defer s.RUnlock()

	a, found := s.attachments[id]
	if !found {
		return nil, attachment.NotFoundError{ID: id}
	}

	return a, nil
}

// ImportAttachment implements attachment.Storage.
func (s *Storage) ImportAttachment(data []byte) (crypto.Digest, error) {
	a, err := attachment.NewAttachment(s.hashFactory, data)
	if err != nil {
		return crypto.Digest{}, xerrors.Errorf("couldn't create attachment: %v", err)
	}

	s.Lock()
	s.attachments[a.GetID()] = a
	s.Unlock()

	ledgerkit.Logger.Trace().Stringer("attachment", a.GetID()).Msg("attachment imported")

	return a.GetID(), nil
}
