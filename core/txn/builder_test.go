package txn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/contracts/dummy"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/bls"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
	"golang.org/x/xerrors"
)

func TestBuilder_RoundTrip(t *testing.T) {
	env := newEnv()

	b := env.builder()

	_, err := b.AddOutputState(dummy.State{Magic: 7})
	require.NoError(t, err)
	require.NoError(t, b.AddCommand(dummy.Create{}, env.owner.OwningKey))

	require.NoError(t, b.SignWith(env.ownerSigner))

	stx, err := b.ToSignedTransaction(true)
	require.NoError(t, err)

	missing, err := stx.VerifySignatures(true)
	require.NoError(t, err)
	require.True(t, missing.IsEmpty())

	ltx, err := stx.VerifyToLedgerTransaction(env.identities, env.attachments)
	require.NoError(t, err)
	require.Equal(t, stx.GetID(), ltx.ID)
	require.Len(t, ltx.Commands, 1)
	require.Len(t, ltx.Commands[0].SigningParties, 1)
	require.True(t, ltx.Commands[0].SigningParties[0].Equal(env.owner))

	tfv, err := ltx.ToTransactionForVerification(nil)
	require.NoError(t, err)
	require.NoError(t, tfv.Verify())

	require.Len(t, tfv.Outputs, 1)
	require.True(t, tfv.Outputs[0].Equal(contract.NewTransactionState(dummy.State{Magic: 7}, env.notary)))
}

func TestBuilder_Freeze(t *testing.T) {
	env := newEnv()

	b := env.builder()

	_, err := b.AddOutputState(dummy.State{Magic: 1})
	require.NoError(t, err)
	require.NoError(t, b.AddCommand(dummy.Create{}, env.owner.OwningKey))

	require.NoError(t, b.SignWith(env.ownerSigner))

	err = b.SignWith(env.ownerSigner)
	require.EqualError(t, err, "transaction already signed by "+env.owner.OwningKey.String())

	_, err = b.AddOutputState(dummy.State{Magic: 2})
	require.ErrorIs(t, err, txn.ErrSigned)

	err = b.AddCommand(dummy.Create{}, env.owner.OwningKey)
	require.ErrorIs(t, err, txn.ErrSigned)

	err = b.AddInputRef(contract.NewStateRef(crypto.Digest{1}, 0), env.notary)
	require.ErrorIs(t, err, txn.ErrSigned)

	err = b.AddAttachment(crypto.Digest{1})
	require.ErrorIs(t, err, txn.ErrSigned)

	err = b.SetTime(time.Now(), env.notary, time.Second)
	require.ErrorIs(t, err, txn.ErrSigned)

	err = b.WithItems(dummy.State{Magic: 3})
	require.True(t, xerrors.Is(err, txn.ErrSigned))

	require.Len(t, b.OutputStates(), 1)
}

func TestBuilder_SignatureSufficiency(t *testing.T) {
	env := newEnv()

	other := ed25519.NewSigner()

	b := env.builder()

	_, err := b.AddOutputState(dummy.State{Magic: 1})
	require.NoError(t, err)
	require.NoError(t, b.AddCommand(dummy.Create{}, env.owner.OwningKey, other.GetPublicKey()))

	require.NoError(t, b.SignWith(env.ownerSigner))

	_, err = b.ToSignedTransaction(true)

	var missingErr txn.MissingSignaturesError
	require.True(t, xerrors.As(err, &missingErr))
	require.Len(t, missingErr.Missing, 1)
	require.True(t, missingErr.Missing[0].Equal(other.GetPublicKey()))
	require.Contains(t, err.Error(), "command go.dedis.ch/ledgerkit/contracts/dummy.Create")

	stx, err := b.ToSignedTransaction(false)
	require.NoError(t, err)

	missing, err := stx.VerifySignatures(false)
	require.NoError(t, err)
	require.Equal(t, 1, missing.Len())
	require.True(t, missing.Contains(other.GetPublicKey()))

	_, err = stx.VerifySignatures(true)
	require.True(t, xerrors.As(err, &missingErr))

	sig, err := crypto.Sign(other, stx.GetBytes())
	require.NoError(t, err)

	require.NoError(t, stx.WithAdditionalSignature(sig).Verify())
}

func TestBuilder_CheckSignature(t *testing.T) {
	env := newEnv()

	b := env.builder()

	_, err := b.AddOutputState(dummy.State{Magic: 1})
	require.NoError(t, err)
	require.NoError(t, b.AddCommand(dummy.Create{}, env.owner.OwningKey))

	wtx, err := b.ToWireTransaction()
	require.NoError(t, err)

	sig, err := crypto.Sign(env.ownerSigner, wtx.GetBytes())
	require.NoError(t, err)

	require.NoError(t, b.CheckAndAddSignature(sig))

	stx, err := b.ToSignedTransaction(true)
	require.NoError(t, err)
	require.Equal(t, wtx.GetID(), stx.GetID())

	err = b.CheckSignature(crypto.DigitalSignature{})
	require.EqualError(t, err, "signature has no key")

	stranger := ed25519.NewSigner()
	sig, err = crypto.Sign(stranger, wtx.GetBytes())
	require.NoError(t, err)

	err = b.CheckSignature(sig)
	require.EqualError(t, err, "signature key "+stranger.GetPublicKey().String()+
		" doesn't match any command or participant")

	sig, err = crypto.Sign(env.ownerSigner, []byte("something else"))
	require.NoError(t, err)

	err = b.CheckSignature(sig)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad signature: ")
}

func TestBuilder_SetTime(t *testing.T) {
	env := newEnv()

	b := env.builder()

	now := time.Now()

	require.NoError(t, b.AddCommand(dummy.Create{}, env.owner.OwningKey))
	require.NoError(t, b.SetTime(now, env.notary, time.Second))
	require.NoError(t, b.SetTime(now.Add(time.Hour), env.notary, time.Minute))

	require.Len(t, b.Commands(), 2)

	ts, found := b.Timestamp()
	require.True(t, found)
	require.True(t, ts.Contains(now.Add(time.Hour)))
	require.False(t, ts.Contains(now))

	require.Len(t, b.Signers(), 2)

	err := b.SetTime(now, identity.Party{Name: "Nobody"}, time.Second)
	require.EqualError(t, err, "timestamping authority has no key")
}

func TestBuilder_WithItems(t *testing.T) {
	env := newEnv()

	b := env.builder()

	input := contract.StateAndRef{
		State: contract.NewTransactionState(dummy.State{Magic: 1}, env.notary),
		Ref:   contract.NewStateRef(crypto.Digest{1}, 0),
	}

	err := b.WithItems(
		input,
		dummy.State{Magic: 2},
		contract.NewTransactionState(dummy.State{Magic: 3}, env.notary),
		contract.MustCommand(dummy.Create{}, env.owner.OwningKey),
	)
	require.NoError(t, err)

	require.Equal(t, []contract.StateRef{input.Ref}, b.InputStates())
	require.Len(t, b.OutputStates(), 2)
	require.Len(t, b.Commands(), 1)

	signers := b.Signers()
	require.Len(t, signers, 2)
	require.True(t, signers[0].Equal(env.notary.OwningKey))

	err = b.WithItems("abc")
	require.EqualError(t, err, "item: wrong argument type 'string'")

	err = b.WithItems(contract.Command{Value: dummy.Create{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "must have at least one signer")
}

func TestBuilder_Errors(t *testing.T) {
	env := newEnv()

	b := txn.NewBuilder(env.ctx)

	_, err := b.AddOutputState(dummy.State{})
	require.EqualError(t, err, "no notary given and no default notary configured")

	idx, err := b.AddOutputStateWithNotary(dummy.State{Magic: 4}, env.notary)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	_, err = b.AddTransactionState(contract.TransactionState{})
	require.EqualError(t, err, "missing state data")

	err = b.AddInputRef(contract.NewStateRef(crypto.Digest{1}, 2), identity.Party{})
	require.EqualError(t, err, "input "+contract.NewStateRef(crypto.Digest{1}, 2).String()+
		" has no notary key")

	err = b.AddCommand(nil, env.owner.OwningKey)
	require.EqualError(t, err, "invalid command: missing command data")

	err = b.AddCommand(dummy.Create{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signer 0 has no key")
	require.Empty(t, b.Commands())

	require.NoError(t, b.AddAttachment(crypto.Digest{2}))
	require.Equal(t, []crypto.Digest{{2}}, b.Attachments())

	_, found := b.Timestamp()
	require.False(t, found)

	_, err = b.ToSignedTransaction(false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no signature")
}

func TestBuilder_NotaryKeys(t *testing.T) {
	env := newEnv()

	other := identity.NewParty("Other notary", bls.NewSigner().GetPublicKey())

	b := env.builder()

	require.NoError(t, b.AddInputRef(contract.NewStateRef(crypto.Digest{1}, 0), env.notary))
	require.NoError(t, b.AddInputRef(contract.NewStateRef(crypto.Digest{1}, 1), other))
	require.NoError(t, b.AddCommand(dummy.Create{}, env.owner.OwningKey))

	wtx, err := b.ToWireTransaction()
	require.NoError(t, err)

	signers := wtx.GetSigners()
	require.Len(t, signers, 3)
	require.True(t, signers[0].Equal(env.notary.OwningKey))
	require.True(t, signers[1].Equal(other.OwningKey))
	require.True(t, signers[2].Equal(env.owner.OwningKey))
}

func TestBuilder_NotaryChangeParticipants(t *testing.T) {
	env := newEnv()

	newNotary := identity.NewParty("New notary", bls.NewSigner().GetPublicKey())

	input := env.input(dummy.OwnedState{Magic: 1, Owner: env.owner.OwningKey}, 0)

	b := txn.NewBuilder(env.ctx, txn.WithType(txn.NotaryChange))
	require.NoError(t, b.AddInputState(input))

	_, err := b.AddTransactionState(input.State.WithNewNotary(newNotary))
	require.NoError(t, err)

	signers := b.Signers()
	require.Len(t, signers, 2)
	require.True(t, signers[0].Equal(env.notary.OwningKey))
	require.True(t, signers[1].Equal(env.owner.OwningKey))

	wtx, err := b.ToWireTransaction()
	require.NoError(t, err)
	require.Len(t, wtx.GetSigners(), 2)
	require.True(t, wtx.GetSigners()[1].Equal(env.owner.OwningKey))

	sig, err := crypto.Sign(env.ownerSigner, wtx.GetBytes())
	require.NoError(t, err)
	require.NoError(t, b.CheckAndAddSignature(sig))

	_, err = b.ToSignedTransaction(true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "notary "+env.notary.OwningKey.String())

	err = b.AddInputState(env.input(dummy.OwnedState{Magic: 2, Owner: env.owner.OwningKey}, 1))
	require.ErrorIs(t, err, txn.ErrSigned)

	general := env.builder()
	require.NoError(t, general.AddInputState(input))
	require.Len(t, general.Signers(), 1)

	change := txn.NewBuilder(env.ctx, txn.WithType(txn.NotaryChange))
	err = change.AddInputState(env.input(dummy.OwnedState{Magic: 3}, 2))
	require.EqualError(t, err, "input "+contract.NewStateRef(crypto.Digest{0xee}, 2).String()+
		": participant 0 has no key")
	require.Empty(t, change.InputStates())
}

func TestBuilder_MissingInputNotary(t *testing.T) {
	env := newEnv()

	b := env.builder()

	require.NoError(t, b.AddInputState(env.input(dummy.State{Magic: 1}, 0)))
	require.NoError(t, b.AddCommand(dummy.Move{}, env.owner.OwningKey))
	require.NoError(t, b.SignWith(env.ownerSigner))

	_, err := b.ToSignedTransaction(true)

	var missingErr txn.MissingSignaturesError
	require.True(t, xerrors.As(err, &missingErr))
	require.Equal(t, []string{"notary " + env.notary.OwningKey.String()}, missingErr.Descriptions)
}
