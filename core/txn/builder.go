package txn

import (
	"time"

	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// Builder accumulates the content of a transaction until it is signed. The
// first signature freezes the content: any later modification fails with
// ErrSigned. A builder is not safe for concurrent use.
type Builder struct {
	ctx  serde.Context
	tmpl template

	inputs        []contract.StateRef
	inputNotaries []crypto.PublicKey
	participants  []crypto.PublicKey
	attachments   []crypto.Digest
	outputs       []contract.TransactionState
	commands      []contract.Command
	sigs          []crypto.DigitalSignature
}

// NewBuilder returns an empty builder that serializes the transaction with the
// context.
func NewBuilder(ctx serde.Context, opts ...Option) *Builder {
	return &Builder{
		ctx:  ctx,
		tmpl: newTemplate(opts),
	}
}

// WithItems adds each item according to its type: a StateAndRef is an input, a
// TransactionState or a ContractState is an output and a Command is a command.
func (b *Builder) WithItems(items ...interface{}) error {
	for _, item := range items {
		var err error

		switch v := item.(type) {
		case contract.StateAndRef:
			err = b.AddInputState(v)
		case contract.TransactionState:
			_, err = b.AddTransactionState(v)
		case contract.ContractState:
			_, err = b.AddOutputState(v)
		case contract.Command:
			err = b.AddCommand(v.Value, v.Signers...)
		default:
			err = xerrors.Errorf("wrong argument type '%T'", item)
		}

		if err != nil {
			return xerrors.Errorf("item: %w", err)
		}
	}

	return nil
}

// AddInputState adds the state as an input. Its notary must sign the
// transaction and, for a notary change, its participants as well.
func (b *Builder) AddInputState(input contract.StateAndRef) error {
	var participants []crypto.PublicKey

	if b.tmpl.txType == NotaryChange && input.State.Data != nil {
		participants = input.State.Data.GetParticipants()

		for i, key := range participants {
			if key == nil {
				return xerrors.Errorf("input %v: participant %d has no key", input.Ref, i)
			}
		}
	}

	err := b.AddInputRef(input.Ref, input.State.Notary)
	if err != nil {
		return err
	}

	b.participants = append(b.participants, participants...)

	return nil
}

// AddInputRef adds the reference as an input governed by the notary.
func (b *Builder) AddInputRef(ref contract.StateRef, notary identity.Party) error {
	if b.isSigned() {
		return ErrSigned
	}

	if notary.OwningKey == nil {
		return xerrors.Errorf("input %v has no notary key", ref)
	}

	b.inputs = append(b.inputs, ref)
	b.inputNotaries = append(b.inputNotaries, notary.OwningKey)

	return nil
}

// AddOutputState adds the state as an output governed by the default notary.
// It returns the index of the output.
func (b *Builder) AddOutputState(state contract.ContractState) (int, error) {
	if b.tmpl.notary == nil {
		return -1, xerrors.New("no notary given and no default notary configured")
	}

	return b.AddTransactionState(contract.NewTransactionState(state, *b.tmpl.notary))
}

// AddOutputStateWithNotary adds the state as an output governed by the notary.
// It returns the index of the output.
func (b *Builder) AddOutputStateWithNotary(state contract.ContractState, notary identity.Party) (int, error) {
	return b.AddTransactionState(contract.NewTransactionState(state, notary))
}

// AddTransactionState adds the output. It returns the index of the output.
func (b *Builder) AddTransactionState(state contract.TransactionState) (int, error) {
	if b.isSigned() {
		return -1, ErrSigned
	}

	if state.Data == nil {
		return -1, xerrors.New("missing state data")
	}

	b.outputs = append(b.outputs, state)

	return len(b.outputs) - 1, nil
}

// AddCommand adds a command that must be signed by the keys.
func (b *Builder) AddCommand(data contract.CommandData, keys ...crypto.PublicKey) error {
	if b.isSigned() {
		return ErrSigned
	}

	cmd, err := contract.NewCommand(data, keys...)
	if err != nil {
		return xerrors.Errorf("invalid command: %v", err)
	}

	b.commands = append(b.commands, cmd)

	return nil
}

// AddAttachment adds the digest of an attachment.
func (b *Builder) AddAttachment(id crypto.Digest) error {
	if b.isSigned() {
		return ErrSigned
	}

	b.attachments = append(b.attachments, id)

	return nil
}

// SetTime replaces any timestamp with one centered on the instant, that must be
// signed by the authority.
func (b *Builder) SetTime(t time.Time, authority identity.Party, tolerance time.Duration) error {
	if b.isSigned() {
		return ErrSigned
	}

	if authority.OwningKey == nil {
		return xerrors.New("timestamping authority has no key")
	}

	commands := b.commands[:0:0]
	for _, cmd := range b.commands {
		_, isTimestamp := cmd.Value.(contract.TimestampCommand)
		if !isTimestamp {
			commands = append(commands, cmd)
		}
	}

	b.commands = commands

	return b.AddCommand(contract.NewTimestampAround(t, tolerance), authority.OwningKey)
}

// SignWith signs the current wire transaction with the signer.
func (b *Builder) SignWith(signer crypto.Signer) error {
	key := signer.GetPublicKey()

	for _, sig := range b.sigs {
		if sig.By.Equal(key) {
			return xerrors.Errorf("transaction already signed by %v", key)
		}
	}

	wtx, err := b.ToWireTransaction()
	if err != nil {
		return err
	}

	sig, err := crypto.Sign(signer, wtx.bits)
	if err != nil {
		return xerrors.Errorf("couldn't sign: %v", err)
	}

	b.sigs = append(b.sigs, sig)

	ledgerkit.Logger.Trace().
		Stringer("tx", wtx.id).
		Stringer("by", key).
		Msg("transaction signed")

	return nil
}

// CheckSignature returns nil if the signature is by the signer of a command or
// by a participant of a notary change, and if it is valid for the current wire
// transaction.
func (b *Builder) CheckSignature(sig crypto.DigitalSignature) error {
	if sig.By == nil {
		return xerrors.New("signature has no key")
	}

	found := crypto.NewKeySet(b.participants...).Contains(sig.By)
	for _, cmd := range b.commands {
		if found {
			break
		}

		found = crypto.NewKeySet(cmd.Signers...).Contains(sig.By)
	}

	if !found {
		return xerrors.Errorf("signature key %v doesn't match any command or participant", sig.By)
	}

	wtx, err := b.ToWireTransaction()
	if err != nil {
		return err
	}

	err = sig.Verify(wtx.bits)
	if err != nil {
		return xerrors.Errorf("bad signature: %v", err)
	}

	return nil
}

// CheckAndAddSignature adds the signature once it is checked.
func (b *Builder) CheckAndAddSignature(sig crypto.DigitalSignature) error {
	err := b.CheckSignature(sig)
	if err != nil {
		return err
	}

	b.sigs = append(b.sigs, sig)

	return nil
}

// ToWireTransaction returns the wire transaction of the current content. The
// signers are the notaries of the inputs, followed by the participants of a
// notary change and the signers of the commands.
func (b *Builder) ToWireTransaction() (WireTransaction, error) {
	data := WireData{
		Inputs:      b.inputs,
		Attachments: b.attachments,
		Outputs:     b.outputs,
		Commands:    b.commands,
		Signers:     b.signers().Slice(),
		Type:        b.tmpl.txType,
	}

	wtx, err := NewWireTransaction(b.ctx, data, WithHashFactory(b.tmpl.hashFactory))
	if err != nil {
		return WireTransaction{}, xerrors.Errorf("couldn't create wire transaction: %v", err)
	}

	return wtx, nil
}

// ToSignedTransaction returns the signed transaction with the signatures
// collected so far. When checkSufficientSignatures is true, it returns a
// MissingSignaturesError if a signer did not sign.
func (b *Builder) ToSignedTransaction(checkSufficientSignatures bool) (SignedTransaction, error) {
	wtx, err := b.ToWireTransaction()
	if err != nil {
		return SignedTransaction{}, err
	}

	if checkSufficientSignatures {
		got := crypto.NewKeySet()
		for _, sig := range b.sigs {
			got.Add(sig.By)
		}

		missing := crypto.NewKeySet(wtx.data.Signers...).Minus(got)
		if !missing.IsEmpty() {
			return SignedTransaction{}, MissingSignaturesError{
				TxID:         wtx.id,
				Missing:      missing.Slice(),
				Descriptions: describeMissing(wtx.data, missing,
					crypto.NewKeySet(b.inputNotaries...), crypto.NewKeySet(b.participants...)),
			}
		}
	}

	return NewSignedTransaction(wtx, b.sigs...)
}

// InputStates returns a copy of the inputs.
func (b *Builder) InputStates() []contract.StateRef {
	return append([]contract.StateRef{}, b.inputs...)
}

// OutputStates returns a copy of the outputs.
func (b *Builder) OutputStates() []contract.TransactionState {
	return append([]contract.TransactionState{}, b.outputs...)
}

// Commands returns a copy of the commands.
func (b *Builder) Commands() []contract.Command {
	return WireData{Commands: b.commands}.clone().Commands
}

// Attachments returns a copy of the digests of the attachments.
func (b *Builder) Attachments() []crypto.Digest {
	return append([]crypto.Digest{}, b.attachments...)
}

// Signers returns the keys that must sign the transaction.
func (b *Builder) Signers() []crypto.PublicKey {
	return b.signers().Slice()
}

// Timestamp returns the timestamp command, if any.
func (b *Builder) Timestamp() (contract.TimestampCommand, bool) {
	for _, cmd := range b.commands {
		ts, ok := cmd.Value.(contract.TimestampCommand)
		if ok {
			return ts, true
		}
	}

	return contract.TimestampCommand{}, false
}

func (b *Builder) signers() crypto.KeySet {
	keys := crypto.NewKeySet(b.inputNotaries...)
	keys.Add(b.participants...)

	for _, cmd := range b.commands {
		keys.Add(cmd.Signers...)
	}

	return keys
}

func (b *Builder) isSigned() bool {
	return len(b.sigs) > 0
}
