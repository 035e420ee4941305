package crypto

import (
	"bytes"
	"encoding/hex"

	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"
)

// DigestSize is the size in bytes of a digest.
const DigestSize = 32

// Digest is the content hash used both as an identity and as a lookup key for
// transactions and attachments.
type Digest [DigestSize]byte

// ZeroDigest is the digest with every byte set to zero.
var ZeroDigest Digest

// NewDigest returns the digest of the data using the hash factory.
func NewDigest(f HashFactory, data []byte) (Digest, error) {
	h := f.New()

	_, err := h.Write(data)
	if err != nil {
		return Digest{}, xerrors.Errorf("couldn't write hash: %v", err)
	}

	return DigestFromBytes(h.Sum(nil))
}

// DigestFromBytes copies the bytes into a digest. It returns an error if the
// length does not match.
func DigestFromBytes(data []byte) (Digest, error) {
	d := Digest{}
	if len(data) != DigestSize {
		return d, xerrors.Errorf("invalid digest length %d", len(data))
	}

	copy(d[:], data)

	return d, nil
}

// DigestFromBase58 parses the text representation of a digest.
func DigestFromBase58(text string) (Digest, error) {
	data, err := base58.Decode(text)
	if err != nil {
		return Digest{}, xerrors.Errorf("couldn't decode base58: %v", err)
	}

	return DigestFromBytes(data)
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	return append([]byte{}, d[:]...)
}

// Base58 returns the base58 encoded version of the digest.
func (d Digest) Base58() string {
	return base58.Encode(d[:])
}

// Hex returns the hexadecimal encoded version of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Prefix returns the first characters of the base58 text, which is enough to
// recognize a digest in a log.
func (d Digest) Prefix() string {
	text := d.Base58()
	if len(text) > 8 {
		return text[:8]
	}

	return text
}

// Compare returns an integer comparing the two digests lexicographically.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Base58()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	digest, err := DigestFromBase58(string(text))
	if err != nil {
		return err
	}

	*d = digest

	return nil
}

// String implements fmt.Stringer. It returns the base58 representation.
func (d Digest) String() string {
	return d.Base58()
}
