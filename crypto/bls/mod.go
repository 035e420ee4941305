// Package bls implements the cryptographic primitives of the BLS signature
// scheme over the BN256 pairing curve.
//
// Notaries and timestamping authorities can use it to sign transactions. The
// keys are interchangeable with the Ed25519 ones from the point of view of a
// transaction as both implement the same abstraction.
package bls

import (
	"bytes"
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

const (
	// Algorithm is the name of the curve used for the BLS signature.
	Algorithm = "CURVE-BN256"
)

var suite = pairing.NewSuiteBn256()

// PublicKey can be provided to verify a BLS signature.
//
// - implements crypto.PublicKey
type PublicKey struct {
	point kyber.Point
}

// NewPublicKey returns a public key from its binary representation.
func NewPublicKey(data []byte) (PublicKey, error) {
	point := suite.G2().Point()
	err := point.UnmarshalBinary(data)
	if err != nil {
		return PublicKey{}, xerrors.Errorf("couldn't unmarshal point: %v", err)
	}

	return PublicKey{point: point}, nil
}

// GetAlgorithm implements crypto.PublicKey. It returns the name of the curve.
func (pk PublicKey) GetAlgorithm() string {
	return Algorithm
}

// MarshalBinary implements encoding.BinaryMarshaler. It produces a slice of
// bytes representing the public key.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	if pk.point == nil {
		return nil, xerrors.New("missing point")
	}

	return pk.point.MarshalBinary()
}

// Verify implements crypto.PublicKey. It returns nil if the signature matches
// the message with this public key.
func (pk PublicKey) Verify(msg []byte, sig crypto.Signature) error {
	signature, ok := sig.(Signature)
	if !ok {
		return xerrors.Errorf("invalid signature type '%T'", sig)
	}

	err := bls.Verify(suite, pk.point, msg, signature.data)
	if err != nil {
		return xerrors.Errorf("bls verify failed: %v", err)
	}

	return nil
}

// Equal implements crypto.PublicKey. It returns true if the other public key
// is the same.
func (pk PublicKey) Equal(other interface{}) bool {
	pubkey, ok := other.(PublicKey)
	if !ok || pk.point == nil || pubkey.point == nil {
		return false
	}

	return pubkey.point.Equal(pk.point)
}

// MarshalText implements encoding.TextMarshaler. It returns a text
// representation of the public key.
func (pk PublicKey) MarshalText() ([]byte, error) {
	buffer, err := pk.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return []byte(fmt.Sprintf("bls:%x", buffer)), nil
}

// String implements fmt.Stringer. It returns a string representation of the
// point.
func (pk PublicKey) String() string {
	buffer, err := pk.MarshalText()
	if err != nil {
		return "bls:malformed_point"
	}

	// Output only the prefix and 16 characters of the buffer in hexadecimal.
	return string(buffer)[:4+16]
}

// Signature is a proof of the integrity of a single message associated with a
// unique public key.
//
// - implements crypto.Signature
type Signature struct {
	data []byte
}

// NewSignature returns a new signature from the data.
func NewSignature(data []byte) Signature {
	return Signature{data: data}
}

// MarshalBinary implements encoding.BinaryMarshaler. It returns a slice of
// bytes of the signature.
func (sig Signature) MarshalBinary() ([]byte, error) {
	return sig.data, nil
}

// Equal implements crypto.Signature. It returns true when both signatures are
// the same.
func (sig Signature) Equal(other crypto.Signature) bool {
	otherSig, ok := other.(Signature)
	if !ok {
		return false
	}

	return bytes.Equal(sig.data, otherSig.data)
}

// publicKeyFactory creates BLS public keys.
//
// - implements crypto.PublicKeyFactory
type publicKeyFactory struct{}

// NewPublicKeyFactory returns a new instance of the factory.
func NewPublicKeyFactory() crypto.PublicKeyFactory {
	return publicKeyFactory{}
}

// FromBytes implements crypto.PublicKeyFactory. It returns the public key
// unmarshaled from the bytes.
func (f publicKeyFactory) FromBytes(data []byte) (crypto.PublicKey, error) {
	pubkey, err := NewPublicKey(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal the key: %v", err)
	}

	return pubkey, nil
}

// signatureFactory creates BLS signatures.
//
// - implements crypto.SignatureFactory
type signatureFactory struct{}

// NewSignatureFactory returns a new instance of the factory.
func NewSignatureFactory() crypto.SignatureFactory {
	return signatureFactory{}
}

// FromBytes implements crypto.SignatureFactory.
func (f signatureFactory) FromBytes(data []byte) (crypto.Signature, error) {
	if len(data) == 0 {
		return nil, xerrors.New("empty signature")
	}

	return NewSignature(append([]byte{}, data...)), nil
}

// Signer creates BLS signatures with its private key.
//
// - implements crypto.Signer
type Signer struct {
	private kyber.Scalar
	public  kyber.Point
}

// NewSigner returns a new random BLS signer.
func NewSigner() Signer {
	private, public := bls.NewKeyPair(suite, suite.RandomStream())

	return Signer{
		private: private,
		public:  public,
	}
}

// GetPublicKey implements crypto.Signer. It returns the public key of the
// signer that can be used to verify signatures.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return PublicKey{point: s.public}
}

// Sign implements crypto.Signer. It signs the message in parameter and returns
// the signature, or an error if it cannot sign.
func (s Signer) Sign(msg []byte) (crypto.Signature, error) {
	sig, err := bls.Sign(suite, s.private, msg)
	if err != nil {
		return nil, xerrors.Errorf("couldn't make bls signature: %v", err)
	}

	return Signature{data: sig}, nil
}
