// Package crypto defines the cryptographic primitives used to identify and
// authenticate transactions.
//
// A public key is the identity of a signer, and a signature is only ever
// verified by this module: producing one is delegated to a Signer which can be
// backed by a local key pair, an HSM or a remote notary service.
package crypto

import (
	"encoding"
	"fmt"
	"hash"
)

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}

// PublicKey is a public identity that can be used to verify a signature.
type PublicKey interface {
	encoding.BinaryMarshaler
	encoding.TextMarshaler
	fmt.Stringer

	// GetAlgorithm returns the name of the signature scheme of the key.
	GetAlgorithm() string

	// Verify returns nil if the signature matches the message for this key.
	Verify(msg []byte, sig Signature) error

	// Equal returns true when the other key is the same.
	Equal(other interface{}) bool
}

// Signature is a verifiable element for a unique message.
type Signature interface {
	encoding.BinaryMarshaler

	Equal(other Signature) bool
}

// PublicKeyFactory is a factory to create public keys from their binary
// representation.
type PublicKeyFactory interface {
	FromBytes(data []byte) (PublicKey, error)
}

// SignatureFactory is a factory to create signatures from their binary
// representation.
type SignatureFactory interface {
	FromBytes(data []byte) (Signature, error)
}

// Signer provides the primitives to sign a message. The private material never
// leaves the implementation.
type Signer interface {
	GetPublicKey() PublicKey

	Sign(msg []byte) (Signature, error)
}
