// Package mem implements an in-memory identity service.
package mem

import (
	"strings"
	"sync"

	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
)

// Service is an identity service that keeps the parties in memory. It is safe
// for concurrent use.
//
// - implements identity.Service
type Service struct {
	sync.RWMutex
	byKey  map[string]identity.Party
	byName map[string]identity.Party
}

// NewService returns a new service populated with the parties.
func NewService(parties ...identity.Party) *Service {
	srvc := &Service{
		byKey:  make(map[string]identity.Party),
		byName: make(map[string]identity.Party),
	}

	for _, party := range parties {
		srvc.Register(party)
	}

	return srvc
}

// Register adds the party to the service. It overrides any party previously
// registered with the same key or the same name.
func (s *Service) Register(party identity.Party) {
	s.Lock()
	defer s.Unlock()

	s.byKey[crypto.KeyOf(party.OwningKey)] = party
	s.byName[strings.ToLower(party.Name)] = party
}

// PartyFromKey implements identity.Service.
func (s *Service) PartyFromKey(key crypto.PublicKey) (identity.Party, bool) {
	if key == nil {
		return identity.Party{}, false
	}

	s.RLock()
	defer s.RUnlock()

	party, found := s.byKey[crypto.KeyOf(key)]

	return party, found
}

// PartyFromName implements identity.Service. The lookup is case-insensitive.
func (s *Service) PartyFromName(name string) (identity.Party, bool) {
	s.RLock()
	defer s.RUnlock()

	party, found := s.byName[strings.ToLower(name)]

	return party, found
}
