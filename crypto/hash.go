package crypto

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"golang.org/x/xerrors"
)

// HashAlgorithm is the enumeration of the supported digest algorithms. Every
// one of them produces a digest of DigestSize bytes.
type HashAlgorithm int

const (
	Sha256 HashAlgorithm = iota
	Sha3_256
	Blake2b256
)

var algorithmNames = map[string]HashAlgorithm{
	"sha256":      Sha256,
	"sha3-256":    Sha3_256,
	"blake2b-256": Blake2b256,
}

// ParseHashAlgorithm returns the algorithm associated with the name.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	algo, found := algorithmNames[name]
	if !found {
		return 0, xerrors.Errorf("unknown hash algorithm '%s'", name)
	}

	return algo, nil
}

// hashFactory is a hash factory that is using one of the supported
// algorithms.
//
// - implements crypto.HashFactory
type hashFactory struct {
	hashType HashAlgorithm
}

// NewSha256Factory returns a new instance of the factory for SHA-256.
func NewSha256Factory() HashFactory {
	return hashFactory{Sha256}
}

// NewHashFactory returns a new instance of the factory.
func NewHashFactory(a HashAlgorithm) HashFactory {
	return hashFactory{a}
}

// New implements crypto.HashFactory. It returns a new Hash instance.
func (f hashFactory) New() hash.Hash {
	switch f.hashType {
	case Sha256:
		return sha256.New()
	case Sha3_256:
		return sha3.New256()
	case Blake2b256:
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}

		return h
	default:
		panic("unknown hash type")
	}
}
