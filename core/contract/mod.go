// Package contract defines the model of the states and the commands of the
// ledger, and the view of a transaction that a contract verifies.
//
// A contract is the program governing a kind of state. It is given a view of
// the transaction that only contains the state data, the authenticated
// commands and the attachments, and it decides whether the transition from the
// inputs to the outputs is valid.
//
// States and commands are polymorphic: the concrete types are registered with
// RegisterState and RegisterCommand so that a transaction can be deserialized
// back into the exact same values.
package contract

import (
	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
)

// Contract is the verification program of a kind of state.
type Contract interface {
	// Verify returns nil if the transaction is valid according to the rules
	// of the contract. It is called once per transaction even when several
	// states refer to the contract.
	Verify(tx TransactionForContract) error

	// LegalContractReference returns the digest of the legal prose the
	// contract implements. Two contracts with the same reference are
	// considered to be the same contract.
	LegalContractReference() crypto.Digest
}

// ContractState is the data of a state governed by a contract.
type ContractState interface {
	serde.Message
	serde.Fingerprinter

	// GetContract returns the contract that verifies transactions consuming
	// or producing the state.
	GetContract() Contract

	// GetParticipants returns the keys entitled to be informed of, or to
	// consent to, changes of the state.
	GetParticipants() []crypto.PublicKey
}

// OwnableState is a state that has a single owner.
type OwnableState interface {
	ContractState

	// GetOwner returns the key of the owner.
	GetOwner() crypto.PublicKey

	// WithNewOwner returns the command to move the state and a copy of the
	// state owned by the new owner.
	WithNewOwner(owner crypto.PublicKey) (CommandData, OwnableState)
}

// LinearState is a state that evolves over time along a thread of
// transactions.
type LinearState interface {
	ContractState

	// GetThread returns the identifier shared by every version of the state.
	GetThread() crypto.Digest

	// IsRelevant returns true if one of the keys is concerned by the state.
	IsRelevant(keys crypto.KeySet) bool
}

// DealState is a linear state that represents an agreement between parties.
type DealState interface {
	LinearState

	// GetRef returns a human readable reference of the deal.
	GetRef() string

	// GetParties returns the parties of the deal.
	GetParties() []identity.Party
}

// TransactionForContract is the view of a transaction given to the contracts.
// It only exposes the data of the states.
type TransactionForContract struct {
	Inputs      []ContractState
	Outputs     []ContractState
	Attachments []attachment.Attachment
	Commands    []AuthenticatedObject
	OrigHash    crypto.Digest

	// InputNotary is the notary of the inputs, or nil if there are none.
	InputNotary *identity.Party

	// Timestamp is the timestamp command of the transaction, if any.
	Timestamp *TimestampCommand
}
