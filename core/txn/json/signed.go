package json

import (
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/common"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// SignatureJSON is the JSON message of a signature and its key.
type SignatureJSON struct {
	By        common.TaggedData
	Signature common.TaggedData
}

// SignedJSON is the JSON message of a signed transaction. The wire transaction
// is kept as the exact bytes that were signed.
type SignedJSON struct {
	Wire       []byte
	Signatures []SignatureJSON
}

// signedFormat is the engine to encode and decode signed transactions in JSON
// format.
//
// - implements serde.FormatEngine
type signedFormat struct {
	pubkeyFac common.PublicKeyFactory
	sigFac    common.SignatureFactory
}

func newSignedFormat() signedFormat {
	return signedFormat{
		pubkeyFac: common.NewPublicKeyFactory(),
		sigFac:    common.NewSignatureFactory(),
	}
}

// Encode implements serde.FormatEngine. It returns the JSON data of the signed
// transaction if appropriate, otherwise it returns an error.
func (f signedFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	stx, ok := msg.(txn.SignedTransaction)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	sigs := stx.GetSignatures()

	m := SignedJSON{
		Wire:       stx.GetBytes(),
		Signatures: make([]SignatureJSON, len(sigs)),
	}

	for i, sig := range sigs {
		by, err := common.TagPublicKey(sig.By)
		if err != nil {
			return nil, xerrors.Errorf("signature %d: %v", i, err)
		}

		tagged, err := common.TagSignature(sig.By, sig.Signature)
		if err != nil {
			return nil, xerrors.Errorf("signature %d: %v", i, err)
		}

		m.Signatures[i] = SignatureJSON{By: by, Signature: tagged}
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the signed transaction of
// the JSON data if appropriate, otherwise it returns an error. The wire
// transaction is decoded lazily.
func (f signedFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := SignedJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	factory, err := serde.FactoryOf[txn.WireFactory](ctx, txn.WireKey{})
	if err != nil {
		return nil, xerrors.Errorf("wire: %v", err)
	}

	sigs := make([]crypto.DigitalSignature, len(m.Signatures))

	for i, sig := range m.Signatures {
		by, err := f.pubkeyFac.PublicKeyOf(sig.By)
		if err != nil {
			return nil, xerrors.Errorf("signature %d: %v", i, err)
		}

		s, err := f.sigFac.SignatureOf(sig.Signature)
		if err != nil {
			return nil, xerrors.Errorf("signature %d: %v", i, err)
		}

		sigs[i] = crypto.DigitalSignature{By: by, Signature: s}
	}

	stx, err := txn.NewSignedTransactionFromBytes(ctx, factory, m.Wire, sigs)
	if err != nil {
		return nil, xerrors.Errorf("couldn't create signed transaction: %v", err)
	}

	return stx, nil
}
