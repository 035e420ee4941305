// Package common implements factories that support multiple algorithms. Keys
// and signatures are tagged with the name of their algorithm so that a
// serialized transaction is self-describing. The supported algorithms are the
// followings:
// - Ed25519 (Schnorr)
// - BN256 (BLS)
package common

import (
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/bls"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
	"golang.org/x/xerrors"
)

// TaggedData is the representation of a public key or a signature with the
// name of its algorithm.
type TaggedData struct {
	Algorithm string
	Data      []byte
}

// PublicKeyFactory is a public key factory for commonly known algorithms.
type PublicKeyFactory struct {
	factories map[string]crypto.PublicKeyFactory
}

// NewPublicKeyFactory returns a new instance of the common public key factory.
func NewPublicKeyFactory() PublicKeyFactory {
	factory := PublicKeyFactory{
		factories: make(map[string]crypto.PublicKeyFactory),
	}

	factory.RegisterAlgorithm(ed25519.Algorithm, ed25519.NewPublicKeyFactory())
	factory.RegisterAlgorithm(bls.Algorithm, bls.NewPublicKeyFactory())

	return factory
}

// RegisterAlgorithm registers the factory for the algorithm.
func (f PublicKeyFactory) RegisterAlgorithm(algo string, factory crypto.PublicKeyFactory) {
	f.factories[algo] = factory
}

// PublicKeyOf returns the public key of the tagged data if the algorithm is
// known, otherwise it returns an error.
func (f PublicKeyFactory) PublicKeyOf(in TaggedData) (crypto.PublicKey, error) {
	factory := f.factories[in.Algorithm]
	if factory == nil {
		return nil, xerrors.Errorf("unknown algorithm '%s'", in.Algorithm)
	}

	pk, err := factory.FromBytes(in.Data)
	if err != nil {
		return nil, xerrors.Errorf("factory failed: %v", err)
	}

	return pk, nil
}

// SignatureFactory is a signature factory for commonly known algorithms.
type SignatureFactory struct {
	factories map[string]crypto.SignatureFactory
}

// NewSignatureFactory returns a new instance of the common signature factory.
func NewSignatureFactory() SignatureFactory {
	factory := SignatureFactory{
		factories: make(map[string]crypto.SignatureFactory),
	}

	factory.RegisterAlgorithm(ed25519.Algorithm, ed25519.NewSignatureFactory())
	factory.RegisterAlgorithm(bls.Algorithm, bls.NewSignatureFactory())

	return factory
}

// RegisterAlgorithm registers the factory for the algorithm.
func (f SignatureFactory) RegisterAlgorithm(algo string, factory crypto.SignatureFactory) {
	f.factories[algo] = factory
}

// SignatureOf returns the signature of the tagged data if the algorithm is
// known, otherwise it returns an error.
func (f SignatureFactory) SignatureOf(in TaggedData) (crypto.Signature, error) {
	factory := f.factories[in.Algorithm]
	if factory == nil {
		return nil, xerrors.Errorf("missing factory for '%s' algorithm", in.Algorithm)
	}

	sig, err := factory.FromBytes(in.Data)
	if err != nil {
		return nil, xerrors.Errorf("factory failed: %v", err)
	}

	return sig, nil
}

// TagPublicKey returns the tagged data of the public key.
func TagPublicKey(pk crypto.PublicKey) (TaggedData, error) {
	if pk == nil {
		return TaggedData{}, xerrors.New("missing public key")
	}

	data, err := pk.MarshalBinary()
	if err != nil {
		return TaggedData{}, xerrors.Errorf("couldn't marshal public key: %v", err)
	}

	return TaggedData{Algorithm: pk.GetAlgorithm(), Data: data}, nil
}

// TagSignature returns the tagged data of a signature created by the given
// public key. The signature inherits the algorithm of the key.
func TagSignature(by crypto.PublicKey, sig crypto.Signature) (TaggedData, error) {
	if by == nil || sig == nil {
		return TaggedData{}, xerrors.New("incomplete signature")
	}

	data, err := sig.MarshalBinary()
	if err != nil {
		return TaggedData{}, xerrors.Errorf("couldn't marshal signature: %v", err)
	}

	return TaggedData{Algorithm: by.GetAlgorithm(), Data: data}, nil
}
