package txn

import (
	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// TransactionForVerification is a transaction whose inputs are dereferenced.
// It is verified in two stages: the signers, and then the rules of its type.
type TransactionForVerification struct {
	Inputs      []contract.StateAndRef
	Outputs     []contract.TransactionState
	Attachments []attachment.Attachment
	Commands    []contract.AuthenticatedObject
	Signers     []crypto.PublicKey
	Type        Type
	ID          crypto.Digest
}

// Verify checks the signers and then the rules of the type of the transaction.
// It returns a VerificationError describing the first broken rule.
func (tx TransactionForVerification) Verify() error {
	err := tx.VerifySigners()
	if err != nil {
		return err
	}

	switch tx.Type {
	case General:
		return tx.verifyGeneral()
	case NotaryChange:
		return tx.verifyNotaryChange()
	default:
		return xerrors.Errorf("transaction %v: unknown type %d", tx.ID, tx.Type)
	}
}

// VerifySigners checks that the signers of the transaction include the keys
// required by its type and the key of its notary. The notary is the one of the
// inputs, or the signer of the timestamp, and there must be only one.
func (tx TransactionForVerification) VerifySigners() error {
	notaries := tx.notaryKeys()
	if notaries.Len() > 1 {
		return VerificationError{
			Tx:   tx,
			Kind: MoreThanOneNotary,
			Keys: notaries.Slice(),
		}
	}

	required := tx.requiredSigners().Union(notaries)

	missing := required.Minus(crypto.NewKeySet(tx.Signers...))
	if !missing.IsEmpty() {
		return VerificationError{
			Tx:   tx,
			Kind: SignersMissing,
			Keys: missing.Slice(),
		}
	}

	return nil
}

// ToTransactionForContract returns the view of the transaction given to the
// contracts.
func (tx TransactionForVerification) ToTransactionForContract() contract.TransactionForContract {
	inputs := make([]contract.ContractState, len(tx.Inputs))
	for i, input := range tx.Inputs {
		inputs[i] = input.State.Data
	}

	outputs := make([]contract.ContractState, len(tx.Outputs))
	for i, output := range tx.Outputs {
		outputs[i] = output.Data
	}

	view := contract.TransactionForContract{
		Inputs:      inputs,
		Outputs:     outputs,
		Attachments: tx.Attachments,
		Commands:    tx.Commands,
		OrigHash:    tx.ID,
	}

	if len(tx.Inputs) > 0 {
		notary := tx.Inputs[0].State.Notary
		view.InputNotary = &notary
	}

	timestamps := contract.Select[contract.TimestampCommand](tx.Commands)
	if len(timestamps) == 1 {
		ts := timestamps[0].Value.(contract.TimestampCommand)
		view.Timestamp = &ts
	}

	return view
}

func (tx TransactionForVerification) notaryKeys() crypto.KeySet {
	keys := crypto.NewKeySet()

	for _, input := range tx.Inputs {
		if input.State.Notary.OwningKey != nil {
			keys.Add(input.State.Notary.OwningKey)
		}
	}

	for _, cmd := range contract.Select[contract.TimestampCommand](tx.Commands) {
		keys.Add(cmd.Signers...)
	}

	return keys
}

func (tx TransactionForVerification) requiredSigners() crypto.KeySet {
	keys := crypto.NewKeySet()

	switch tx.Type {
	case NotaryChange:
		for _, input := range tx.Inputs {
			keys.Add(input.State.Data.GetParticipants()...)
		}
	default:
		for _, cmd := range tx.Commands {
			keys.Add(cmd.Signers...)
		}
	}

	return keys
}

// verifyGeneral checks that the outputs keep the notary of the inputs, and
// then runs every distinct contract of the states once.
func (tx TransactionForVerification) verifyGeneral() error {
	if len(tx.Inputs) > 0 {
		notary := tx.Inputs[0].State.Notary

		for i := range tx.Outputs {
			if !tx.Outputs[i].Notary.Equal(notary) {
				return VerificationError{
					Tx:     tx,
					Kind:   NotaryChangeInWrongTransactionType,
					Output: &tx.Outputs[i],
				}
			}
		}
	}

	if len(contract.Select[contract.TimestampCommand](tx.Commands)) > 1 {
		return VerificationError{
			Tx:    tx,
			Kind:  InvalidTimestamp,
			Cause: xerrors.New("more than one timestamp command"),
		}
	}

	view := tx.ToTransactionForContract()

	for _, c := range distinctContracts(view) {
		err := c.Verify(view)
		if err != nil {
			return VerificationError{
				Tx:       tx,
				Kind:     ContractRejection,
				Contract: c,
				Cause:    err,
			}
		}
	}

	return nil
}

// verifyNotaryChange checks that the outputs are the inputs assigned to a
// different notary, and that there is no command.
func (tx TransactionForVerification) verifyNotaryChange() error {
	fail := func(format string, args ...interface{}) error {
		return VerificationError{
			Tx:    tx,
			Kind:  InvalidNotaryChange,
			Cause: xerrors.Errorf(format, args...),
		}
	}

	if len(tx.Inputs) != len(tx.Outputs) {
		return fail("%d inputs for %d outputs", len(tx.Inputs), len(tx.Outputs))
	}

	for i, input := range tx.Inputs {
		output := tx.Outputs[i]

		if !contract.StatesEqual(input.State.Data, output.Data) {
			return fail("output %d changes the state data", i)
		}

		if input.State.Notary.Equal(output.Notary) {
			return fail("output %d keeps the notary %v", i, output.Notary)
		}
	}

	if len(tx.Commands) > 0 {
		return fail("%d commands found", len(tx.Commands))
	}

	return nil
}

// distinctContracts returns the contracts of the inputs and the outputs,
// deduplicated by legal reference, in order of first appearance.
func distinctContracts(view contract.TransactionForContract) []contract.Contract {
	seen := make(map[crypto.Digest]struct{})
	contracts := []contract.Contract{}

	states := append(append([]contract.ContractState{}, view.Inputs...), view.Outputs...)

	for _, state := range states {
		c := state.GetContract()
		if c == nil {
			continue
		}

		ref := c.LegalContractReference()

		_, found := seen[ref]
		if found {
			continue
		}

		seen[ref] = struct{}{}
		contracts = append(contracts, c)
	}

	return contracts
}
