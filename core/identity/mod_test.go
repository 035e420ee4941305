package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
)

func TestParty_Equal(t *testing.T) {
	key := ed25519.NewSigner().GetPublicKey()

	party := NewParty("Alice", key)
	require.True(t, party.Equal(NewParty("Alice", key)))
	require.False(t, party.Equal(NewParty("Bob", key)))
	require.False(t, party.Equal(NewParty("Alice", ed25519.NewSigner().GetPublicKey())))
	require.False(t, party.Equal(Party{Name: "Alice"}))
	require.True(t, Party{Name: "A"}.Equal(Party{Name: "A"}))
	require.Equal(t, "Alice", party.String())
}

func TestPartyAndReference_Equal(t *testing.T) {
	party := NewParty("Bank", ed25519.NewSigner().GetPublicKey())

	ref := party.Ref(1, 2)
	require.True(t, ref.Equal(party.Ref(1, 2)))
	require.False(t, ref.Equal(party.Ref(1)))
	require.Equal(t, "Bank0102", ref.String())
}
