package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/contracts/dummy"
	attmem "go.dedis.ch/ledgerkit/core/attachment/mem"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/identity/mem"
	"go.dedis.ch/ledgerkit/core/txn"
	_ "go.dedis.ch/ledgerkit/core/txn/json"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/bls"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
	"go.dedis.ch/ledgerkit/internal/testing/fake"
	sjson "go.dedis.ch/ledgerkit/serde/json"
	"golang.org/x/xerrors"
)

func TestGroup_Verify(t *testing.T) {
	root := makeTx(1)
	a := makeTx(2, contract.NewStateRef(root.ID, 0))
	b := makeTx(3, contract.NewStateRef(a.ID, 0))

	g, err := NewGroup([]txn.LedgerTransaction{a, b}, []txn.LedgerTransaction{root})
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())

	res, err := g.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, a.ID, res[0].ID)
	require.Equal(t, b.ID, res[1].ID)
	require.True(t, res[1].Inputs[0].State.Equal(a.Outputs[0]))

	g, err = NewGroup([]txn.LedgerTransaction{b, a}, []txn.LedgerTransaction{root}, WithWorkers(0))
	require.NoError(t, err)

	res, err = g.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
}

func TestGroup_DoubleSpend(t *testing.T) {
	root := makeTx(1)
	a := makeTx(2, contract.NewStateRef(root.ID, 0))
	b := makeTx(3, contract.NewStateRef(root.ID, 0))

	for _, order := range [][]txn.LedgerTransaction{{a, b}, {b, a}} {
		g, err := NewGroup(order, []txn.LedgerTransaction{root})
		require.NoError(t, err)

		_, err = g.Verify(context.Background())

		var conflict txn.ConflictError
		require.True(t, xerrors.As(err, &conflict))
		require.Equal(t, contract.NewStateRef(root.ID, 0), conflict.Ref)
		require.ElementsMatch(t, []crypto.Digest{a.ID, b.ID},
			[]crypto.Digest{conflict.First, conflict.Second})
	}
}

func TestGroup_Resolution(t *testing.T) {
	root := makeTx(1)

	missing := makeTx(2, contract.NewStateRef(crypto.Digest{9}, 0))

	g, err := NewGroup([]txn.LedgerTransaction{missing}, []txn.LedgerTransaction{root})
	require.NoError(t, err)

	_, err = g.Verify(context.Background())

	var resErr txn.ResolutionError
	require.True(t, xerrors.As(err, &resErr))
	require.Equal(t, missing.ID, resErr.TxID)
	require.False(t, resErr.OutOfRange)

	outOfRange := makeTx(3, contract.NewStateRef(root.ID, 5))

	g, err = NewGroup([]txn.LedgerTransaction{outOfRange}, []txn.LedgerTransaction{root})
	require.NoError(t, err)

	_, err = g.Verify(context.Background())
	require.True(t, xerrors.As(err, &resErr))
	require.True(t, resErr.OutOfRange)
	require.Equal(t, outOfRange.ID, resErr.TxID)
}

func TestGroup_Disjoint(t *testing.T) {
	root := makeTx(1)

	_, err := NewGroup([]txn.LedgerTransaction{root}, []txn.LedgerTransaction{root})
	require.EqualError(t, err, "transaction "+root.ID.String()+" is both a root and to be verified")
}

func TestGroup_VerificationFailure(t *testing.T) {
	root := makeTx(1)
	a := makeTx(2, contract.NewStateRef(root.ID, 0))
	a.Signers = a.Signers[1:]

	g, err := NewGroup([]txn.LedgerTransaction{a}, []txn.LedgerTransaction{root})
	require.NoError(t, err)

	_, err = g.Verify(context.Background())

	var verr txn.VerificationError
	require.True(t, xerrors.As(err, &verr))
	require.Equal(t, txn.SignersMissing, verr.Kind)
	require.Equal(t, a.ID, verr.Tx.ID)
}

func TestGroup_Canceled(t *testing.T) {
	root := makeTx(1)
	a := makeTx(2, contract.NewStateRef(root.ID, 0))

	g, err := NewGroup([]txn.LedgerTransaction{a}, []txn.LedgerTransaction{root})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Verify(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGroup_NotaryChange(t *testing.T) {
	aliceSigner := ed25519.NewSigner()
	notarySigner := bls.NewSigner()

	alice := identity.NewParty("Alice", aliceSigner.GetPublicKey())
	oldNotary := identity.NewParty("Old notary", notarySigner.GetPublicKey())
	newNotary := identity.NewParty("New notary", bls.NewSigner().GetPublicKey())

	identities := mem.NewService(alice, oldNotary, newNotary)
	attachments := attmem.NewStorage(crypto.NewSha256Factory())
	ctx := sjson.NewContext()

	issuer := txn.NewBuilder(ctx, txn.WithDefaultNotary(oldNotary))

	_, err := issuer.AddOutputState(dummy.OwnedState{Magic: 1, Owner: alice.OwningKey})
	require.NoError(t, err)
	require.NoError(t, issuer.AddCommand(dummy.Create{}, alice.OwningKey))
	require.NoError(t, issuer.SignWith(aliceSigner))

	issue, err := issuer.ToSignedTransaction(true)
	require.NoError(t, err)

	wtx, err := issue.GetWireTransaction()
	require.NoError(t, err)

	input, err := wtx.OutRef(0)
	require.NoError(t, err)

	changer := txn.NewBuilder(ctx, txn.WithType(txn.NotaryChange))
	require.NoError(t, changer.AddInputState(input))

	_, err = changer.AddTransactionState(input.State.WithNewNotary(newNotary))
	require.NoError(t, err)

	signers := changer.Signers()
	require.Len(t, signers, 2)
	require.True(t, signers[0].Equal(oldNotary.OwningKey))
	require.True(t, signers[1].Equal(alice.OwningKey))

	require.NoError(t, changer.SignWith(notarySigner))

	_, err = changer.ToSignedTransaction(true)

	var missingErr txn.MissingSignaturesError
	require.True(t, xerrors.As(err, &missingErr))
	require.Len(t, missingErr.Missing, 1)
	require.True(t, missingErr.Missing[0].Equal(alice.OwningKey))
	require.Contains(t, err.Error(), "participant "+alice.OwningKey.String())

	unconsented, err := changer.ToSignedTransaction(false)
	require.NoError(t, err)
	require.True(t, xerrors.As(unconsented.Verify(), &missingErr))

	require.NoError(t, changer.SignWith(aliceSigner))

	change, err := changer.ToSignedTransaction(true)
	require.NoError(t, err)

	toVerify := make([]txn.LedgerTransaction, 0, 2)
	for _, stx := range []txn.SignedTransaction{issue, change} {
		ltx, err := stx.VerifyToLedgerTransaction(identities, attachments)
		require.NoError(t, err)

		toVerify = append(toVerify, ltx)
	}

	g, err := NewGroup(toVerify, nil)
	require.NoError(t, err)

	res, err := g.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, txn.NotaryChange, res[1].Type)
	require.True(t, res[1].Inputs[0].State.Notary.Equal(oldNotary))
	require.True(t, res[1].Outputs[0].Notary.Equal(newNotary))


	_, err = unconsented.VerifyToLedgerTransaction(identities, attachments)
	require.True(t, xerrors.As(err, &missingErr))
}

// -----------------------------------------------------------------------------
// Utility functions

var (
	owner  = identity.NewParty("Owner", fake.NewPublicKey(1))
	notary = identity.NewParty("Notary", fake.NewPublicKey(2))
)

func makeTx(id byte, inputs ...contract.StateRef) txn.LedgerTransaction {
	cmd := contract.MustCommand(dummy.Create{}, owner.OwningKey)

	return txn.LedgerTransaction{
		Inputs: inputs,
		Outputs: []contract.TransactionState{
			contract.NewTransactionState(dummy.State{Magic: int(id)}, notary),
		},
		Commands: []contract.AuthenticatedObject{
			contract.Authenticate(cmd, mem.NewService(owner, notary)),
		},
		Signers: []crypto.PublicKey{notary.OwningKey, owner.OwningKey},
		Type:    txn.General,
		ID:      crypto.Digest{id},
	}
}
