package crypto

import "golang.org/x/xerrors"

// DigitalSignature is a signature bundled with the public key that produced
// it.
type DigitalSignature struct {
	By        PublicKey
	Signature Signature
}

// Sign uses the signer to produce a signature of the message attributed to the
// signer's public key.
func Sign(signer Signer, msg []byte) (DigitalSignature, error) {
	sig, err := signer.Sign(msg)
	if err != nil {
		return DigitalSignature{}, xerrors.Errorf("signer: %v", err)
	}

	ds := DigitalSignature{
		By:        signer.GetPublicKey(),
		Signature: sig,
	}

	return ds, nil
}

// Verify returns nil if the signature is valid for the message and the key.
func (s DigitalSignature) Verify(msg []byte) error {
	if s.By == nil || s.Signature == nil {
		return xerrors.New("incomplete signature")
	}

	err := s.By.Verify(msg, s.Signature)
	if err != nil {
		return xerrors.Errorf("signature by %v is invalid: %v", s.By, err)
	}

	return nil
}

// Equal returns true when both the key and the signature are the same.
func (s DigitalSignature) Equal(other DigitalSignature) bool {
	if s.By == nil || other.By == nil || s.Signature == nil || other.Signature == nil {
		return false
	}

	return s.By.Equal(other.By) && s.Signature.Equal(other.Signature)
}
