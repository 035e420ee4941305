package contract

import (
	"bytes"
	"fmt"

	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
)

// StateRef points to an output of a transaction.
type StateRef struct {
	TxID  crypto.Digest
	Index int
}

// NewStateRef returns a reference to the output at the index of the
// transaction.
func NewStateRef(id crypto.Digest, index int) StateRef {
	return StateRef{
		TxID:  id,
		Index: index,
	}
}

// String implements fmt.Stringer.
func (ref StateRef) String() string {
	return fmt.Sprintf("%s(%d)", ref.TxID.Prefix(), ref.Index)
}

// TransactionState is the state data bundled with the notary responsible for
// its uniqueness.
type TransactionState struct {
	Data   ContractState
	Notary identity.Party
}

// NewTransactionState returns a state governed by the notary.
func NewTransactionState(data ContractState, notary identity.Party) TransactionState {
	return TransactionState{
		Data:   data,
		Notary: notary,
	}
}

// WithNewNotary returns a copy of the state assigned to the new notary.
func (s TransactionState) WithNewNotary(notary identity.Party) TransactionState {
	return TransactionState{
		Data:   s.Data,
		Notary: notary,
	}
}

// Equal returns true when both the data and the notary are the same.
func (s TransactionState) Equal(other TransactionState) bool {
	return StatesEqual(s.Data, other.Data) && s.Notary.Equal(other.Notary)
}

// String implements fmt.Stringer.
func (s TransactionState) String() string {
	return fmt.Sprintf("%s@%s", serde.KeyOf(s.Data), s.Notary)
}

// StateAndRef is a state together with the reference of the output that
// produced it.
type StateAndRef struct {
	State TransactionState
	Ref   StateRef
}

// StatesEqual returns true if the two states have the same type and the same
// fingerprint.
func StatesEqual(a, b ContractState) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if serde.KeyOf(a) != serde.KeyOf(b) {
		return false
	}

	bufA := new(bytes.Buffer)
	bufB := new(bytes.Buffer)

	if a.Fingerprint(bufA) != nil || b.Fingerprint(bufB) != nil {
		return false
	}

	return bytes.Equal(bufA.Bytes(), bufB.Bytes())
}
