package txn

import (
	"fmt"
	"strings"

	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// WireData is the content of a wire transaction.
//
// - implements serde.Message
type WireData struct {
	Inputs      []contract.StateRef
	Attachments []crypto.Digest
	Outputs     []contract.TransactionState
	Commands    []contract.Command
	Signers     []crypto.PublicKey
	Type        Type
}

// Serialize implements serde.Message. It encodes the content with the engine of
// the context format.
func (d WireData) Serialize(ctx serde.Context) ([]byte, error) {
	format := wireFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, d)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %v", err)
	}

	return data, nil
}

func (d WireData) clone() WireData {
	commands := make([]contract.Command, len(d.Commands))
	for i, cmd := range d.Commands {
		commands[i] = contract.Command{
			Value:   cmd.Value,
			Signers: append([]crypto.PublicKey{}, cmd.Signers...),
		}
	}

	return WireData{
		Inputs:      append([]contract.StateRef{}, d.Inputs...),
		Attachments: append([]crypto.Digest{}, d.Attachments...),
		Outputs:     append([]contract.TransactionState{}, d.Outputs...),
		Commands:    commands,
		Signers:     append([]crypto.PublicKey{}, d.Signers...),
		Type:        d.Type,
	}
}

// WireTransaction is a transaction ready to be signed. Its identifier is the
// digest of its canonical bytes, which are computed once with it so that they
// never disagree.
//
// - implements serde.Message
type WireTransaction struct {
	data WireData
	bits []byte
	id   crypto.Digest
}

// NewWireTransaction serializes the content in the format of the context and
// returns the transaction identified by the digest of those bytes.
func NewWireTransaction(ctx serde.Context, data WireData, opts ...Option) (WireTransaction, error) {
	tmpl := newTemplate(opts)

	data = data.clone()

	bits, err := data.Serialize(ctx)
	if err != nil {
		return WireTransaction{}, xerrors.Errorf("couldn't serialize: %v", err)
	}

	return newWireFromBits(data, bits, tmpl.hashFactory)
}

func newWireFromBits(data WireData, bits []byte, f crypto.HashFactory) (WireTransaction, error) {
	id, err := crypto.NewDigest(f, bits)
	if err != nil {
		return WireTransaction{}, xerrors.Errorf("couldn't compute id: %v", err)
	}

	wtx := WireTransaction{
		data: data,
		bits: append([]byte{}, bits...),
		id:   id,
	}

	return wtx, nil
}

// GetID returns the identifier of the transaction.
func (wtx WireTransaction) GetID() crypto.Digest {
	return wtx.id
}

// GetBytes returns a copy of the canonical bytes of the transaction.
func (wtx WireTransaction) GetBytes() []byte {
	return append([]byte{}, wtx.bits...)
}

// GetData returns a copy of the content of the transaction.
func (wtx WireTransaction) GetData() WireData {
	return wtx.data.clone()
}

// GetInputs returns the references of the states consumed by the transaction.
func (wtx WireTransaction) GetInputs() []contract.StateRef {
	return append([]contract.StateRef{}, wtx.data.Inputs...)
}

// GetAttachments returns the digests of the attachments.
func (wtx WireTransaction) GetAttachments() []crypto.Digest {
	return append([]crypto.Digest{}, wtx.data.Attachments...)
}

// GetOutputs returns the states produced by the transaction.
func (wtx WireTransaction) GetOutputs() []contract.TransactionState {
	return append([]contract.TransactionState{}, wtx.data.Outputs...)
}

// GetCommands returns the commands of the transaction.
func (wtx WireTransaction) GetCommands() []contract.Command {
	return wtx.data.clone().Commands
}

// GetSigners returns the keys that must sign the transaction.
func (wtx WireTransaction) GetSigners() []crypto.PublicKey {
	return append([]crypto.PublicKey{}, wtx.data.Signers...)
}

// GetType returns the type of the transaction.
func (wtx WireTransaction) GetType() Type {
	return wtx.data.Type
}

// Timestamp returns the first timestamp command of the transaction.
func (wtx WireTransaction) Timestamp() (contract.TimestampCommand, bool) {
	for _, cmd := range wtx.data.Commands {
		ts, ok := cmd.Value.(contract.TimestampCommand)
		if ok {
			return ts, true
		}
	}

	return contract.TimestampCommand{}, false
}

// OutRef returns the output at the index with its reference.
func (wtx WireTransaction) OutRef(index int) (contract.StateAndRef, error) {
	if index < 0 || index >= len(wtx.data.Outputs) {
		return contract.StateAndRef{}, xerrors.Errorf("index %d out of range [0:%d]",
			index, len(wtx.data.Outputs))
	}

	ref := contract.StateAndRef{
		State: wtx.data.Outputs[index],
		Ref:   contract.NewStateRef(wtx.id, index),
	}

	return ref, nil
}

// OutRefOf returns the first output equal to the state with its reference.
func (wtx WireTransaction) OutRefOf(state contract.ContractState) (contract.StateAndRef, error) {
	for i, output := range wtx.data.Outputs {
		if contract.StatesEqual(output.Data, state) {
			return wtx.OutRef(i)
		}
	}

	return contract.StateAndRef{}, xerrors.Errorf("state %T not found in the outputs", state)
}

// ToLedgerTransaction resolves the signers of the commands to the known
// parties, and fetches the attachments. A missing party is ignored but a
// missing attachment is an error.
func (wtx WireTransaction) ToLedgerTransaction(identities identity.Service,
	attachments attachment.Storage) (LedgerTransaction, error) {

	commands := make([]contract.AuthenticatedObject, len(wtx.data.Commands))
	for i, cmd := range wtx.data.Commands {
		commands[i] = contract.Authenticate(cmd, identities)
	}

	atts := make([]attachment.Attachment, len(wtx.data.Attachments))
	for i, id := range wtx.data.Attachments {
		a, err := attachments.OpenAttachment(id)
		if err != nil {
			return LedgerTransaction{}, xerrors.Errorf("transaction %v: %w", wtx.id, err)
		}

		atts[i] = a
	}

	ltx := LedgerTransaction{
		Inputs:      wtx.GetInputs(),
		Outputs:     wtx.GetOutputs(),
		Commands:    commands,
		Attachments: atts,
		Signers:     wtx.GetSigners(),
		Type:        wtx.data.Type,
		ID:          wtx.id,
	}

	return ltx, nil
}

// Serialize implements serde.Message. It returns the canonical bytes the
// identifier was computed from, whatever the format of the context.
func (wtx WireTransaction) Serialize(serde.Context) ([]byte, error) {
	return wtx.GetBytes(), nil
}

// String implements fmt.Stringer.
func (wtx WireTransaction) String() string {
	buf := new(strings.Builder)

	fmt.Fprintf(buf, "%v transaction %v:\n", wtx.data.Type, wtx.id)

	for _, input := range wtx.data.Inputs {
		fmt.Fprintf(buf, "  INPUT:      %v\n", input)
	}
	for _, output := range wtx.data.Outputs {
		fmt.Fprintf(buf, "  OUTPUT:     %v\n", output)
	}
	for _, cmd := range wtx.data.Commands {
		fmt.Fprintf(buf, "  COMMAND:    %v\n", cmd)
	}
	for _, att := range wtx.data.Attachments {
		fmt.Fprintf(buf, "  ATTACHMENT: %v\n", att)
	}

	return buf.String()
}

// WireKey is the key of the wire transaction factory in a serialization
// context.
type WireKey struct{}

// WireFactory is a factory to deserialize wire transactions.
//
// - implements serde.Factory
type WireFactory struct {
	hashFactory crypto.HashFactory
}

// NewWireFactory returns a new factory. The hash factory must be the one the
// transactions were created with.
func NewWireFactory(opts ...Option) WireFactory {
	tmpl := newTemplate(opts)

	return WireFactory{
		hashFactory: tmpl.hashFactory,
	}
}

// Deserialize implements serde.Factory.
func (f WireFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.WireTransactionOf(ctx, data)
}

// WireTransactionOf returns the wire transaction of the data. The identifier is
// the digest of the data as received.
func (f WireFactory) WireTransactionOf(ctx serde.Context, data []byte) (WireTransaction, error) {
	format := wireFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return WireTransaction{}, xerrors.Errorf("failed to decode: %v", err)
	}

	content, ok := msg.(WireData)
	if !ok {
		return WireTransaction{}, xerrors.Errorf("invalid message of type '%T'", msg)
	}

	return newWireFromBits(content, data, f.hashFactory)
}
