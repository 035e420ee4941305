package common

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/crypto/bls"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
)

func TestPublicKeyFactory_PublicKeyOf(t *testing.T) {
	factory := NewPublicKeyFactory()

	edKey := ed25519.NewSigner().GetPublicKey()
	tagged, err := TagPublicKey(edKey)
	require.NoError(t, err)
	require.Equal(t, ed25519.Algorithm, tagged.Algorithm)

	pk, err := factory.PublicKeyOf(tagged)
	require.NoError(t, err)
	require.True(t, pk.Equal(edKey))

	blsKey := bls.NewSigner().GetPublicKey()
	tagged, err = TagPublicKey(blsKey)
	require.NoError(t, err)

	pk, err = factory.PublicKeyOf(tagged)
	require.NoError(t, err)
	require.True(t, pk.Equal(blsKey))

	_, err = factory.PublicKeyOf(TaggedData{Algorithm: "unknown"})
	require.EqualError(t, err, "unknown algorithm 'unknown'")

	_, err = factory.PublicKeyOf(TaggedData{Algorithm: ed25519.Algorithm})
	require.Error(t, err)
	require.Contains(t, err.Error(), "factory failed: ")

	_, err = TagPublicKey(nil)
	require.EqualError(t, err, "missing public key")

	_, err = TagPublicKey(ed25519.PublicKey{})
	require.EqualError(t, err, "couldn't marshal public key: missing point")
}

func TestSignatureFactory_SignatureOf(t *testing.T) {
	factory := NewSignatureFactory()

	signer := bls.NewSigner()
	sig, err := signer.Sign([]byte("ping"))
	require.NoError(t, err)

	tagged, err := TagSignature(signer.GetPublicKey(), sig)
	require.NoError(t, err)
	require.Equal(t, bls.Algorithm, tagged.Algorithm)

	res, err := factory.SignatureOf(tagged)
	require.NoError(t, err)
	require.True(t, res.Equal(sig))

	_, err = factory.SignatureOf(TaggedData{Algorithm: "unknown"})
	require.EqualError(t, err, "missing factory for 'unknown' algorithm")

	_, err = factory.SignatureOf(TaggedData{Algorithm: bls.Algorithm})
	require.EqualError(t, err, "factory failed: empty signature")

	_, err = TagSignature(nil, sig)
	require.EqualError(t, err, "incomplete signature")
}
