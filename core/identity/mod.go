// Package identity defines the well-known identities of the ledger.
//
// A party is a named identity that owns a public key. Transactions only carry
// public keys: the identity service is used during resolution to look up the
// party behind a key, on a best-effort basis.
package identity

import (
	"bytes"
	"fmt"

	"go.dedis.ch/ledgerkit/crypto"
)

// Party is a well-known identity of the network.
type Party struct {
	Name      string
	OwningKey crypto.PublicKey
}

// NewParty returns a party with the given name and key.
func NewParty(name string, key crypto.PublicKey) Party {
	return Party{
		Name:      name,
		OwningKey: key,
	}
}

// Equal returns true when both the name and the key match.
func (p Party) Equal(other Party) bool {
	if p.OwningKey == nil || other.OwningKey == nil {
		return p.Name == other.Name && p.OwningKey == nil && other.OwningKey == nil
	}

	return p.Name == other.Name && p.OwningKey.Equal(other.OwningKey)
}

// Ref returns a reference to something owned by the party.
func (p Party) Ref(ref ...byte) PartyAndReference {
	return PartyAndReference{
		Party:     p,
		Reference: append([]byte{}, ref...),
	}
}

// String implements fmt.Stringer.
func (p Party) String() string {
	return p.Name
}

// PartyAndReference is a reference to something being stored or issued by a
// party, like a deposit reference.
type PartyAndReference struct {
	Party     Party
	Reference []byte
}

// Equal returns true when the party and the reference are the same.
func (r PartyAndReference) Equal(other PartyAndReference) bool {
	return r.Party.Equal(other.Party) && bytes.Equal(r.Reference, other.Reference)
}

// String implements fmt.Stringer.
func (r PartyAndReference) String() string {
	return fmt.Sprintf("%s%x", r.Party, r.Reference)
}

// Service is the lookup service of the well-known identities.
type Service interface {
	// PartyFromKey returns the party that owns the key if it is known.
	PartyFromKey(key crypto.PublicKey) (Party, bool)

	// PartyFromName returns the party with the given name if it is known.
	PartyFromName(name string) (Party, bool)
}
