package dummy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/bls"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
	sjson "go.dedis.ch/ledgerkit/serde/json"
)

func TestContract_Verify(t *testing.T) {
	c := Contract{}

	require.NoError(t, c.Verify(contract.TransactionForContract{}))
	require.Equal(t, reference, c.LegalContractReference())
	require.NotEqual(t, crypto.Digest{}, c.LegalContractReference())
}

func TestState_Serialize(t *testing.T) {
	ctx := sjson.NewContext()

	data, err := State{Magic: 7}.Serialize(ctx)
	require.NoError(t, err)

	state, err := contract.DeserializeState(ctx, contract.TypeName(State{}), data)
	require.NoError(t, err)
	require.Equal(t, State{Magic: 7}, state)
	require.Empty(t, state.GetParticipants())
}

func TestOwnedState_Serialize(t *testing.T) {
	ctx := sjson.NewContext()

	owner := ed25519.NewSigner().GetPublicKey()
	state := OwnedState{Magic: 7, Owner: owner}

	data, err := state.Serialize(ctx)
	require.NoError(t, err)

	res, err := contract.DeserializeState(ctx, contract.TypeName(state), data)
	require.NoError(t, err)
	require.True(t, contract.StatesEqual(state, res))
	require.True(t, res.(OwnedState).Owner.Equal(owner))

	_, err = OwnedState{}.Serialize(ctx)
	require.EqualError(t, err, "owner: missing public key")

	_, err = contract.DeserializeState(ctx, contract.TypeName(state), []byte(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner: unknown algorithm ''")
}

func TestOwnedState_WithNewOwner(t *testing.T) {
	alice := ed25519.NewSigner().GetPublicKey()
	bob := ed25519.NewSigner().GetPublicKey()

	state := OwnedState{Magic: 1, Owner: alice}

	cmd, moved := state.WithNewOwner(bob)
	require.True(t, contract.SameCommand(Move{}, cmd))
	require.True(t, moved.GetOwner().Equal(bob))
	require.True(t, state.GetOwner().Equal(alice))
	require.False(t, contract.StatesEqual(state, moved))
	require.Len(t, moved.GetParticipants(), 1)
}

func TestOwnedState_Fingerprint(t *testing.T) {
	owner := ed25519.NewSigner().GetPublicKey()

	buf := new(bytes.Buffer)
	require.NoError(t, OwnedState{Magic: 1, Owner: owner}.Fingerprint(buf))
	require.Len(t, buf.Bytes(), 8+32)

	buf.Reset()
	require.NoError(t, OwnedState{Magic: 1}.Fingerprint(buf))
	require.Len(t, buf.Bytes(), 8)
}

func TestDeal_Serialize(t *testing.T) {
	ctx := sjson.NewContext()

	deal := Deal{
		Ref:    "deal-1",
		Thread: crypto.Digest{1},
		Parties: []identity.Party{
			identity.NewParty("Alice", ed25519.NewSigner().GetPublicKey()),
			identity.NewParty("Bank", bls.NewSigner().GetPublicKey()),
		},
	}

	data, err := deal.Serialize(ctx)
	require.NoError(t, err)

	res, err := contract.DeserializeState(ctx, contract.TypeName(deal), data)
	require.NoError(t, err)
	require.True(t, contract.StatesEqual(deal, res))

	decoded := res.(Deal)
	require.Equal(t, "deal-1", decoded.GetRef())
	require.Equal(t, crypto.Digest{1}, decoded.GetThread())
	require.Len(t, decoded.GetParties(), 2)
	require.True(t, decoded.GetParties()[1].Equal(deal.Parties[1]))

	_, err = Deal{Parties: []identity.Party{{Name: "Nobody"}}}.Serialize(ctx)
	require.EqualError(t, err, "party 0: missing public key")
}

func TestDeal_IsRelevant(t *testing.T) {
	alice := ed25519.NewSigner().GetPublicKey()
	bob := ed25519.NewSigner().GetPublicKey()

	deal := Deal{Parties: []identity.Party{identity.NewParty("Alice", alice)}}

	require.True(t, deal.IsRelevant(crypto.NewKeySet(alice, bob)))
	require.False(t, deal.IsRelevant(crypto.NewKeySet(bob)))
	require.Len(t, deal.GetParticipants(), 1)
}
