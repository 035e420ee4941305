package txn

import (
	"sync"

	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// lazyWire decodes the wire transaction the first time it is needed. It is
// shared by the copies of a signed transaction.
type lazyWire struct {
	once   sync.Once
	decode func() (WireTransaction, error)
	wtx    WireTransaction
	err    error
}

func (l *lazyWire) get() (WireTransaction, error) {
	l.once.Do(func() {
		l.wtx, l.err = l.decode()
	})

	return l.wtx, l.err
}

// SignedTransaction is the canonical bytes of a wire transaction with the
// signatures collected for it. Adding a signature never changes the
// identifier.
//
// - implements serde.Message
type SignedTransaction struct {
	bits []byte
	sigs []crypto.DigitalSignature
	id   crypto.Digest
	wire *lazyWire
}

// NewSignedTransaction returns a signed transaction of the wire transaction.
// It returns an error if there is no signature.
func NewSignedTransaction(wtx WireTransaction, sigs ...crypto.DigitalSignature) (SignedTransaction, error) {
	if len(sigs) == 0 {
		return SignedTransaction{}, xerrors.Errorf("transaction %v: no signature", wtx.id)
	}

	stx := SignedTransaction{
		bits: wtx.bits,
		sigs: append([]crypto.DigitalSignature{}, sigs...),
		id:   wtx.id,
		wire: &lazyWire{decode: func() (WireTransaction, error) { return wtx, nil }},
	}

	return stx, nil
}

// NewSignedTransactionFromBytes returns a signed transaction of the canonical
// bytes of a wire transaction. The bytes are only decoded when the content of
// the transaction is needed, which happens after the signatures are verified.
func NewSignedTransactionFromBytes(ctx serde.Context, f WireFactory, bits []byte,
	sigs []crypto.DigitalSignature) (SignedTransaction, error) {

	id, err := crypto.NewDigest(f.hashFactory, bits)
	if err != nil {
		return SignedTransaction{}, xerrors.Errorf("couldn't compute id: %v", err)
	}

	if len(sigs) == 0 {
		return SignedTransaction{}, xerrors.Errorf("transaction %v: no signature", id)
	}

	bits = append([]byte{}, bits...)

	stx := SignedTransaction{
		bits: bits,
		sigs: append([]crypto.DigitalSignature{}, sigs...),
		id:   id,
		wire: &lazyWire{decode: func() (WireTransaction, error) {
			return f.WireTransactionOf(ctx, bits)
		}},
	}

	return stx, nil
}

// GetID returns the identifier of the wire transaction.
func (stx SignedTransaction) GetID() crypto.Digest {
	return stx.id
}

// GetBytes returns a copy of the bytes of the wire transaction.
func (stx SignedTransaction) GetBytes() []byte {
	return append([]byte{}, stx.bits...)
}

// GetSignatures returns the signatures of the transaction.
func (stx SignedTransaction) GetSignatures() []crypto.DigitalSignature {
	return append([]crypto.DigitalSignature{}, stx.sigs...)
}

// GetWireTransaction returns the decoded wire transaction. The signatures are
// not verified.
func (stx SignedTransaction) GetWireTransaction() (WireTransaction, error) {
	wtx, err := stx.wire.get()
	if err != nil {
		return WireTransaction{}, xerrors.Errorf("transaction %v: %v", stx.id, err)
	}

	return wtx, nil
}

// WithAdditionalSignature returns a copy of the transaction with the
// signature appended. It is not verified.
func (stx SignedTransaction) WithAdditionalSignature(sig crypto.DigitalSignature) SignedTransaction {
	return stx.WithAdditionalSignatures(sig)
}

// WithAdditionalSignatures returns a copy of the transaction with the
// signatures appended. They are not verified.
func (stx SignedTransaction) WithAdditionalSignatures(sigs ...crypto.DigitalSignature) SignedTransaction {
	res := stx
	res.sigs = make([]crypto.DigitalSignature, 0, len(stx.sigs)+len(sigs))
	res.sigs = append(res.sigs, stx.sigs...)
	res.sigs = append(res.sigs, sigs...)

	return res
}

// VerifySignatures verifies every signature against the bytes of the wire
// transaction before it is decoded. It then returns the required signers that
// did not sign. When throwIfMissing is true, missing signers are reported as a
// MissingSignaturesError.
func (stx SignedTransaction) VerifySignatures(throwIfMissing bool) (crypto.KeySet, error) {
	signed := crypto.NewKeySet()

	for i, sig := range stx.sigs {
		err := sig.Verify(stx.bits)
		if err != nil {
			return crypto.NewKeySet(), xerrors.Errorf("transaction %v: signature %d: %v", stx.id, i, err)
		}

		signed.Add(sig.By)
	}

	wtx, err := stx.GetWireTransaction()
	if err != nil {
		return crypto.NewKeySet(), err
	}

	missing := crypto.NewKeySet(wtx.data.Signers...).Minus(signed)
	if missing.IsEmpty() || !throwIfMissing {
		return missing, nil
	}

	return missing, MissingSignaturesError{
		TxID:         stx.id,
		Missing:      missing.Slice(),
		Descriptions: describeMissing(wtx.data, missing, crypto.NewKeySet(), crypto.NewKeySet()),
	}
}

// Verify returns nil if every signature is valid and no required signer is
// missing.
func (stx SignedTransaction) Verify() error {
	_, err := stx.VerifySignatures(true)
	return err
}

// VerifyToLedgerTransaction verifies the signatures and then resolves the
// transaction.
func (stx SignedTransaction) VerifyToLedgerTransaction(identities identity.Service,
	attachments attachment.Storage) (LedgerTransaction, error) {

	err := stx.Verify()
	if err != nil {
		return LedgerTransaction{}, xerrors.Errorf("verification failed: %w", err)
	}

	wtx, err := stx.GetWireTransaction()
	if err != nil {
		return LedgerTransaction{}, err
	}

	return wtx.ToLedgerTransaction(identities, attachments)
}

// Serialize implements serde.Message.
func (stx SignedTransaction) Serialize(ctx serde.Context) ([]byte, error) {
	format := signedFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, stx)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %v", err)
	}

	return data, nil
}

// SignedFactory is a factory to deserialize signed transactions.
//
// - implements serde.Factory
type SignedFactory struct {
	wireFactory WireFactory
}

// NewSignedFactory returns a new factory.
func NewSignedFactory(opts ...Option) SignedFactory {
	return SignedFactory{
		wireFactory: NewWireFactory(opts...),
	}
}

// Deserialize implements serde.Factory.
func (f SignedFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.SignedTransactionOf(ctx, data)
}

// SignedTransactionOf returns the signed transaction of the data.
func (f SignedFactory) SignedTransactionOf(ctx serde.Context, data []byte) (SignedTransaction, error) {
	format := signedFormats.Get(ctx.GetFormat())

	ctx = serde.WithFactory(ctx, WireKey{}, f.wireFactory)

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return SignedTransaction{}, xerrors.Errorf("failed to decode: %v", err)
	}

	stx, ok := msg.(SignedTransaction)
	if !ok {
		return SignedTransaction{}, xerrors.Errorf("invalid message of type '%T'", msg)
	}

	return stx, nil
}

// describeMissing attributes each missing key to the commands that require it,
// to a notary or to a participant. The notaries of the outputs are always
// known, the others only to the builder of the transaction.
func describeMissing(data WireData, missing, notaries, participants crypto.KeySet) []string {
	outputNotaries := crypto.NewKeySet()
	for _, output := range data.Outputs {
		if output.Notary.OwningKey != nil {
			outputNotaries.Add(output.Notary.OwningKey)
		}
	}

	notaries = notaries.Union(outputNotaries)

	descs := make([]string, 0, missing.Len())

	for _, key := range missing.Slice() {
		desc := ""

		for _, cmd := range data.Commands {
			if crypto.NewKeySet(cmd.Signers...).Contains(key) {
				desc = "command " + serde.KeyOf(cmd.Value)
				break
			}
		}

		if desc == "" && notaries.Contains(key) {
			desc = "notary"
		}

		if desc == "" && participants.Contains(key) {
			desc = "participant"
		}

		if desc == "" {
			desc = "signer"
		}

		descs = append(descs, desc+" "+key.String())
	}

	return descs
}
