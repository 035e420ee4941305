package txn

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/internal/testing/fake"
	"go.dedis.ch/ledgerkit/serde"
)

func init() {
	RegisterWireFormat(fake.GoodFormat, fake.Format{Msg: WireData{}})
	RegisterWireFormat(fake.BadFormat, fake.NewBadFormat())
	RegisterSignedFormat(fake.BadFormat, fake.NewBadFormat())
}

func TestType_String(t *testing.T) {
	require.Equal(t, "General", General.String())
	require.Equal(t, "NotaryChange", NotaryChange.String())
	require.Equal(t, "Unknown", Type(99).String())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("General")
	require.NoError(t, err)
	require.Equal(t, General, typ)

	typ, err = ParseType("NotaryChange")
	require.NoError(t, err)
	require.Equal(t, NotaryChange, typ)

	_, err = ParseType("Unknown")
	require.EqualError(t, err, "unknown transaction type 'Unknown'")
}

func TestTemplate_Options(t *testing.T) {
	notary := identity.NewParty("N", fake.NewPublicKey(1))

	tmpl := newTemplate(nil)
	require.Nil(t, tmpl.notary)
	require.Equal(t, General, tmpl.txType)
	require.NotNil(t, tmpl.hashFactory)

	tmpl = newTemplate([]Option{
		WithDefaultNotary(notary),
		WithType(NotaryChange),
		WithHashFactory(crypto.NewHashFactory(crypto.Sha3_256)),
	})
	require.True(t, tmpl.notary.Equal(notary))
	require.Equal(t, NotaryChange, tmpl.txType)
}

func TestNewWireTransaction_Errors(t *testing.T) {
	_, err := NewWireTransaction(fake.NewContextWithFormat(fake.BadFormat), WireData{})
	require.EqualError(t, err, fake.Err("couldn't serialize: failed to encode").Error())

	_, err = NewWireTransaction(fake.NewContext(), WireData{})
	require.EqualError(t, err,
		"couldn't serialize: failed to encode: format 'FAKE' is not implemented")

	_, err = NewWireTransaction(fake.NewContextWithFormat(fake.GoodFormat), WireData{},
		WithHashFactory(fake.NewHashFactory(fake.NewBadHash())))
	require.EqualError(t, err, fake.Err("couldn't compute id: couldn't write hash").Error())
}

func TestWireTransaction_Clone(t *testing.T) {
	data := WireData{Signers: []crypto.PublicKey{fake.NewPublicKey(1)}}

	wtx, err := NewWireTransaction(fake.NewContextWithFormat(fake.GoodFormat), data)
	require.NoError(t, err)
	require.Equal(t, []byte("fake format"), wtx.GetBytes())

	data.Signers[0] = fake.NewPublicKey(2)
	require.True(t, wtx.GetSigners()[0].Equal(fake.NewPublicKey(1)))

	require.NotNil(t, wtx.GetInputs())
	require.NotNil(t, wtx.GetCommands())
}

func TestWireFactory_Errors(t *testing.T) {
	f := NewWireFactory()

	_, err := f.WireTransactionOf(fake.NewContextWithFormat(fake.BadFormat), nil)
	require.EqualError(t, err, fake.Err("failed to decode").Error())

	ctx := serde.WithFactory(fake.NewContextWithFormat(fake.GoodFormat), WireKey{}, f)

	wtx, err := f.WireTransactionOf(ctx, []byte("abc"))
	require.NoError(t, err)

	id, err := crypto.NewDigest(crypto.NewSha256Factory(), []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, id, wtx.GetID())
}

func TestSignedFactory_Errors(t *testing.T) {
	f := NewSignedFactory()

	_, err := f.SignedTransactionOf(fake.NewContextWithFormat(fake.BadFormat), nil)
	require.EqualError(t, err, fake.Err("failed to decode").Error())

	_, err = SignedTransaction{}.Serialize(fake.NewContextWithFormat(fake.BadFormat))
	require.EqualError(t, err, fake.Err("failed to encode").Error())
}
