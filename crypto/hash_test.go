package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFactory_New(t *testing.T) {
	for _, name := range []string{"sha256", "sha3-256", "blake2b-256"} {
		algo, err := ParseHashAlgorithm(name)
		require.NoError(t, err)

		h := NewHashFactory(algo).New()
		require.Equal(t, DigestSize, h.Size())
	}

	_, err := ParseHashAlgorithm("md5")
	require.EqualError(t, err, "unknown hash algorithm 'md5'")
}

func TestHashFactory_Distinct(t *testing.T) {
	d1, err := NewDigest(NewHashFactory(Sha256), []byte("abc"))
	require.NoError(t, err)

	d2, err := NewDigest(NewHashFactory(Sha3_256), []byte("abc"))
	require.NoError(t, err)

	d3, err := NewDigest(NewHashFactory(Blake2b256), []byte("abc"))
	require.NoError(t, err)

	require.NotEqual(t, d1, d2)
	require.NotEqual(t, d2, d3)
	require.NotEqual(t, d1, d3)
}
