package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/contracts/dummy"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/txn"
	_ "go.dedis.ch/ledgerkit/core/txn/json"
	"go.dedis.ch/ledgerkit/core/txn/storage"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/bls"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
	sjson "go.dedis.ch/ledgerkit/serde/json"
)

func TestStorage_GetTransaction(t *testing.T) {
	first := makeSigned(t, 1)
	second := makeSigned(t, 2)

	store := NewStorage(first)
	require.Equal(t, 1, store.Len())

	stx, err := store.GetTransaction(first.GetID())
	require.NoError(t, err)
	require.Equal(t, first.GetID(), stx.GetID())

	_, err = store.GetTransaction(second.GetID())
	require.True(t, storage.IsNotFound(err))

	require.NoError(t, store.AddTransactions(second, first))
	require.Equal(t, 2, store.Len())

	_, err = store.GetTransaction(second.GetID())
	require.NoError(t, err)

	_, err = store.GetTransaction(crypto.Digest{})
	require.True(t, storage.IsNotFound(err))
}

// -----------------------------------------------------------------------------
// Utility functions

func makeSigned(t *testing.T, magic int) txn.SignedTransaction {
	signer := ed25519.NewSigner()
	notary := identity.NewParty("Notary", bls.NewSigner().GetPublicKey())

	b := txn.NewBuilder(sjson.NewContext(), txn.WithDefaultNotary(notary))

	_, err := b.AddOutputState(dummy.State{Magic: magic})
	require.NoError(t, err)
	require.NoError(t, b.AddCommand(dummy.Create{}, signer.GetPublicKey()))
	require.NoError(t, b.SignWith(signer))

	stx, err := b.ToSignedTransaction(true)
	require.NoError(t, err)

	return stx
}
