package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
)

func TestService_PartyFromKey(t *testing.T) {
	alice := identity.NewParty("Alice", ed25519.NewSigner().GetPublicKey())

	srvc := NewService(alice)

	party, found := srvc.PartyFromKey(alice.OwningKey)
	require.True(t, found)
	require.True(t, party.Equal(alice))

	_, found = srvc.PartyFromKey(ed25519.NewSigner().GetPublicKey())
	require.False(t, found)

	_, found = srvc.PartyFromKey(nil)
	require.False(t, found)
}

func TestService_PartyFromName(t *testing.T) {
	alice := identity.NewParty("Alice", ed25519.NewSigner().GetPublicKey())

	srvc := NewService()
	srvc.Register(alice)

	party, found := srvc.PartyFromName("ALICE")
	require.True(t, found)
	require.True(t, party.Equal(alice))

	_, found = srvc.PartyFromName("bob")
	require.False(t, found)
}
