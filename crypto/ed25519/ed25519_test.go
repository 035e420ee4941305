package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/crypto"
)

func TestPublicKey_New(t *testing.T) {
	signer := NewSigner()

	data, err := signer.GetPublicKey().MarshalBinary()
	require.NoError(t, err)

	pk, err := NewPublicKey(data)
	require.NoError(t, err)
	require.True(t, pk.Equal(signer.GetPublicKey()))
	require.True(t, NewPublicKeyFromPoint(pk.GetPoint()).Equal(pk))

	_, err = NewPublicKey([]byte{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "couldn't unmarshal point: ")
}

func TestPublicKey_MarshalBinary(t *testing.T) {
	_, err := PublicKey{}.MarshalBinary()
	require.EqualError(t, err, "missing point")
}

func TestPublicKey_Verify(t *testing.T) {
	signer := NewSigner()

	sig, err := signer.Sign([]byte("deadbeef"))
	require.NoError(t, err)

	err = signer.GetPublicKey().Verify([]byte("deadbeef"), sig)
	require.NoError(t, err)

	err = signer.GetPublicKey().Verify([]byte("abc"), sig)
	require.Error(t, err)
	require.Contains(t, err.Error(), "schnorr verify failed: ")

	err = NewSigner().GetPublicKey().Verify([]byte("deadbeef"), sig)
	require.Error(t, err)

	err = signer.GetPublicKey().Verify(nil, fakeSignature{})
	require.EqualError(t, err, "invalid signature type 'ed25519.fakeSignature'")
}

func TestPublicKey_Equal(t *testing.T) {
	signer := NewSigner()

	require.True(t, signer.GetPublicKey().Equal(signer.GetPublicKey()))
	require.False(t, signer.GetPublicKey().Equal(NewSigner().GetPublicKey()))
	require.False(t, signer.GetPublicKey().Equal(PublicKey{}))
	require.False(t, signer.GetPublicKey().Equal(nil))
}

func TestPublicKey_String(t *testing.T) {
	pk := NewSigner().GetPublicKey()

	text, err := pk.MarshalText()
	require.NoError(t, err)
	require.Contains(t, string(text), "schnorr:")
	require.Len(t, pk.String(), 24)

	require.Equal(t, "schnorr:malformed_point", PublicKey{}.String())
	require.Equal(t, Algorithm, pk.GetAlgorithm())
}

func TestSignature_Equal(t *testing.T) {
	sig := NewSignature([]byte{1, 2, 3})

	require.True(t, sig.Equal(NewSignature([]byte{1, 2, 3})))
	require.False(t, sig.Equal(NewSignature([]byte{1, 2})))
	require.False(t, sig.Equal(fakeSignature{}))
}

func TestFactories_FromBytes(t *testing.T) {
	signer := NewSigner()

	data, err := signer.GetPublicKey().MarshalBinary()
	require.NoError(t, err)

	pk, err := NewPublicKeyFactory().FromBytes(data)
	require.NoError(t, err)
	require.True(t, pk.Equal(signer.GetPublicKey()))

	_, err = NewPublicKeyFactory().FromBytes(nil)
	require.Error(t, err)

	sig, err := NewSignatureFactory().FromBytes([]byte{0xaa})
	require.NoError(t, err)
	require.True(t, sig.Equal(NewSignature([]byte{0xaa})))

	_, err = NewSignatureFactory().FromBytes(nil)
	require.EqualError(t, err, "empty signature")
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeSignature struct {
	crypto.Signature
}
