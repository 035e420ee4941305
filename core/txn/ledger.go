package txn

import (
	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// LedgerTransaction is a wire transaction whose command signers were resolved
// to parties and whose attachments were fetched. The inputs are still
// references: they are dereferenced against the transactions that produced
// them during the verification of a group.
type LedgerTransaction struct {
	Inputs      []contract.StateRef
	Outputs     []contract.TransactionState
	Commands    []contract.AuthenticatedObject
	Attachments []attachment.Attachment

	// Signers are the keys the transaction declares as required to sign.
	Signers []crypto.PublicKey

	Type Type
	ID   crypto.Digest
}

// OutRef returns the output at the index with its reference.
func (ltx LedgerTransaction) OutRef(index int) (contract.StateAndRef, error) {
	if index < 0 || index >= len(ltx.Outputs) {
		return contract.StateAndRef{}, ResolutionError{
			TxID:       ltx.ID,
			Ref:        contract.NewStateRef(ltx.ID, index),
			OutOfRange: true,
		}
	}

	ref := contract.StateAndRef{
		State: ltx.Outputs[index],
		Ref:   contract.NewStateRef(ltx.ID, index),
	}

	return ref, nil
}

// ToTransactionForVerification returns the view of the transaction with the
// inputs dereferenced. The inputs must be given in the order of the
// references.
func (ltx LedgerTransaction) ToTransactionForVerification(inputs []contract.StateAndRef) (
	TransactionForVerification, error) {

	if len(inputs) != len(ltx.Inputs) {
		return TransactionForVerification{}, xerrors.Errorf("transaction %v: %d inputs resolved out of %d",
			ltx.ID, len(inputs), len(ltx.Inputs))
	}

	for i, input := range inputs {
		if input.Ref != ltx.Inputs[i] {
			return TransactionForVerification{}, xerrors.Errorf("transaction %v: input %d is %v but %v was resolved",
				ltx.ID, i, ltx.Inputs[i], input.Ref)
		}
	}

	tx := TransactionForVerification{
		Inputs:      append([]contract.StateAndRef{}, inputs...),
		Outputs:     ltx.Outputs,
		Attachments: ltx.Attachments,
		Commands:    ltx.Commands,
		Signers:     ltx.Signers,
		Type:        ltx.Type,
		ID:          ltx.ID,
	}

	return tx, nil
}
